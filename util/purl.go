package util

import (
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/ortelius/component-monitor/model"
)

var osvEcosystems = map[model.Ecosystem]string{
	model.EcosystemNpm:    "npm",
	model.EcosystemPyPI:   "PyPI",
	model.EcosystemMaven:  "Maven",
	model.EcosystemNuGet:  "NuGet",
	model.EcosystemGo:     "Go",
	model.EcosystemCrates: "crates.io",
}

// OSVEcosystem translates an ecosystem into the name OSV expects in queries.
func OSVEcosystem(eco model.Ecosystem) (string, bool) {
	name, ok := osvEcosystems[eco]
	return name, ok
}

// BuildPURL returns the package URL of a library exactly as pkg:<ecosystem>/<name>@<version>.
func BuildPURL(eco model.Ecosystem, name, version string) string {
	return fmt.Sprintf("pkg:%s/%s@%s", eco, name, version)
}

// ParsePURL parses a PURL string into a PackageURL struct
func ParsePURL(purlStr string) (*packageurl.PackageURL, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

var purlTypeEcosystems = map[string]model.Ecosystem{
	packageurl.TypeNPM:    model.EcosystemNpm,
	packageurl.TypePyPi:   model.EcosystemPyPI,
	packageurl.TypeMaven:  model.EcosystemMaven,
	packageurl.TypeNuget:  model.EcosystemNuGet,
	packageurl.TypeGolang: model.EcosystemGo,
	"go":                  model.EcosystemGo,
	packageurl.TypeCargo:  model.EcosystemCrates,
	"crates.io":           model.EcosystemCrates,
}

// RequestFromPURL converts a versioned package URL into a library description request.
// Maven coordinates become group:artifact and scoped names keep their namespace.
func RequestFromPURL(purlStr string) (model.ComponentRequest, error) {
	p, err := ParsePURL(purlStr)
	if err != nil {
		return model.ComponentRequest{}, fmt.Errorf("invalid purl %q: %w", purlStr, err)
	}
	eco, ok := purlTypeEcosystems[strings.ToLower(p.Type)]
	if !ok {
		return model.ComponentRequest{}, model.Validationf("unsupported purl type %q", p.Type)
	}
	if p.Version == "" {
		return model.ComponentRequest{}, model.Validationf("purl %q has no version", purlStr)
	}

	name := p.Name
	if p.Namespace != "" {
		switch eco {
		case model.EcosystemMaven:
			name = p.Namespace + ":" + p.Name
		default:
			name = p.Namespace + "/" + p.Name
		}
	}
	return model.ComponentRequest{
		Type:      string(model.ComponentTypeLibrary),
		Name:      name,
		Version:   p.Version,
		Ecosystem: string(eco),
	}, nil
}
