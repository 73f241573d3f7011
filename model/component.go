// Package model - Component and Vulnerability define the records tracked by the monitor.
package model

import "time"

// ComponentType distinguishes a packaged library from a standalone product.
type ComponentType string

// Component types accepted by the API.
const (
	ComponentTypeLibrary ComponentType = "library"
	ComponentTypeProduct ComponentType = "product"
)

// Ecosystem names the package registry a library is published to.
type Ecosystem string

// Supported library ecosystems.
const (
	EcosystemNpm    Ecosystem = "npm"
	EcosystemPyPI   Ecosystem = "pypi"
	EcosystemMaven  Ecosystem = "maven"
	EcosystemNuGet  Ecosystem = "nuget"
	EcosystemGo     Ecosystem = "go"
	EcosystemCrates Ecosystem = "crates.io"
)

// Ecosystems lists every ecosystem in a stable order.
var Ecosystems = []Ecosystem{EcosystemNpm, EcosystemPyPI, EcosystemMaven, EcosystemNuGet, EcosystemGo, EcosystemCrates}

// Valid reports whether e is one of the supported ecosystems.
func (e Ecosystem) Valid() bool {
	for _, known := range Ecosystems {
		if e == known {
			return true
		}
	}
	return false
}

// Component is a tracked library or product together with its known vulnerabilities.
//
// The natural key is (Name, Version, Type, Ecosystem); Ecosystem is empty for products.
type Component struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	Type            ComponentType   `json:"type"`
	Ecosystem       Ecosystem       `json:"ecosystem"`
	Identifier      *string         `json:"identifier"`
	LastUpdated     time.Time       `json:"last_updated"`
	Notes           *string         `json:"notes"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// NewComponent carries the columns needed to create a Component.
type NewComponent struct {
	Name        string
	Version     string
	Type        ComponentType
	Ecosystem   Ecosystem
	Identifier  *string
	Notes       *string
	LastUpdated time.Time
}

// NaturalKey returns the uniqueness tuple as a single string, used for logging and event keys.
func (c NewComponent) NaturalKey() string {
	return string(c.Type) + ":" + string(c.Ecosystem) + ":" + c.Name + "@" + c.Version
}

// Description rebuilds the analysis input for a stored component.
// The stored identifier is used as the override so a refresh queries the same upstream record.
func (c Component) Description() Description {
	override := ""
	if c.Identifier != nil {
		override = *c.Identifier
	}
	if c.Type == ComponentTypeProduct {
		return ProductDescription{Name: c.Name, Version: c.Version, IdentifierOverride: override, Notes: c.Notes}
	}
	return LibraryDescription{Name: c.Name, Version: c.Version, Ecosystem: c.Ecosystem, IdentifierOverride: override, Notes: c.Notes}
}

// MaxTime returns the later of two instants. last_updated never moves backwards.
func MaxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
