package model

import "strings"

// ComponentRequest is the wire form of a component description used by the REST API,
// the CLI and manifest import.
type ComponentRequest struct {
	Type               string  `json:"type" yaml:"type" toml:"type"`
	Name               string  `json:"name" yaml:"name" toml:"name"`
	Version            string  `json:"version" yaml:"version" toml:"version"`
	Ecosystem          string  `json:"ecosystem,omitempty" yaml:"ecosystem,omitempty" toml:"ecosystem,omitempty"`
	IdentifierOverride string  `json:"identifier_override,omitempty" yaml:"identifier_override,omitempty" toml:"identifier_override,omitempty"`
	Notes              *string `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
}

// Description is a validated component description. The only implementations are
// LibraryDescription and ProductDescription.
type Description interface {
	ComponentName() string
	ComponentVersion() string
	Kind() ComponentType
	Override() string
	isDescription()
}

// LibraryDescription describes a package published to an ecosystem.
type LibraryDescription struct {
	Name               string
	Version            string
	Ecosystem          Ecosystem
	IdentifierOverride string
	Notes              *string
}

// ProductDescription describes a standalone product tracked through the CPE catalog.
type ProductDescription struct {
	Name               string
	Version            string
	IdentifierOverride string
	Notes              *string
}

func (d LibraryDescription) ComponentName() string    { return d.Name }
func (d LibraryDescription) ComponentVersion() string { return d.Version }
func (d LibraryDescription) Kind() ComponentType      { return ComponentTypeLibrary }
func (d LibraryDescription) Override() string         { return d.IdentifierOverride }
func (LibraryDescription) isDescription()             {}

func (d ProductDescription) ComponentName() string    { return d.Name }
func (d ProductDescription) ComponentVersion() string { return d.Version }
func (d ProductDescription) Kind() ComponentType      { return ComponentTypeProduct }
func (d ProductDescription) Override() string         { return d.IdentifierOverride }
func (ProductDescription) isDescription()             {}

// Describe validates the request and converts it into its tagged variant.
//
// A library without an ecosystem is still a valid description; the resolver decides whether
// an override makes up for it.
func (r ComponentRequest) Describe() (Description, error) {
	name := strings.TrimSpace(r.Name)
	version := strings.TrimSpace(r.Version)
	if name == "" {
		return nil, Validationf("name is required")
	}
	if version == "" {
		return nil, Validationf("version is required")
	}

	switch ComponentType(strings.ToLower(strings.TrimSpace(r.Type))) {
	case ComponentTypeLibrary:
		eco := Ecosystem(strings.TrimSpace(r.Ecosystem))
		if eco != "" && !eco.Valid() {
			return nil, Validationf("unsupported ecosystem %q", r.Ecosystem)
		}
		return LibraryDescription{
			Name:               name,
			Version:            version,
			Ecosystem:          eco,
			IdentifierOverride: r.IdentifierOverride,
			Notes:              r.Notes,
		}, nil
	case ComponentTypeProduct:
		return ProductDescription{
			Name:               name,
			Version:            version,
			IdentifierOverride: r.IdentifierOverride,
			Notes:              r.Notes,
		}, nil
	default:
		return nil, Validationf("unknown component type %q", r.Type)
	}
}

// NewComponentFrom builds the storage columns for a described component.
// Persisted libraries must carry an ecosystem so the natural key is complete.
func NewComponentFrom(d Description, identifier string) (NewComponent, error) {
	nc := NewComponent{
		Name:    d.ComponentName(),
		Version: d.ComponentVersion(),
		Type:    d.Kind(),
	}
	if identifier != "" {
		id := identifier
		nc.Identifier = &id
	}

	switch v := d.(type) {
	case LibraryDescription:
		if v.Ecosystem == "" {
			return NewComponent{}, Validationf("ecosystem is required for libraries")
		}
		nc.Ecosystem = v.Ecosystem
		nc.Notes = v.Notes
	case ProductDescription:
		nc.Notes = v.Notes
	default:
		return NewComponent{}, Validationf("unknown component type")
	}
	return nc, nil
}
