package manifest

import (
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/ortelius/component-monitor/model"
)

// GoModParser parses go.mod files
type GoModParser struct {
	IncludeIndirect bool // Whether to include indirect dependencies
}

// CanParse returns true for go.mod files
func (p *GoModParser) CanParse(filename string) bool {
	return filename == "go.mod"
}

// Parse turns each require directive into a go library request
func (p *GoModParser) Parse(path string, content []byte) ([]model.ComponentRequest, error) {
	mod, err := modfile.Parse(path, content, nil)
	if err != nil {
		return nil, err
	}

	var requests []model.ComponentRequest
	for _, req := range mod.Require {
		if req.Indirect && !p.IncludeIndirect {
			continue
		}

		// OSV lists Go versions without the v prefix
		requests = append(requests, model.ComponentRequest{
			Type:      string(model.ComponentTypeLibrary),
			Name:      req.Mod.Path,
			Version:   strings.TrimPrefix(req.Mod.Version, "v"),
			Ecosystem: string(model.EcosystemGo),
		})
	}
	return requests, nil
}
