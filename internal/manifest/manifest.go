// Package manifest reads component lists from files for bulk import.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ortelius/component-monitor/model"
	"github.com/ortelius/component-monitor/util"
)

// Parser is the interface for manifest parsers
type Parser interface {
	// CanParse returns true if this parser can handle the given filename
	CanParse(filename string) bool

	// Parse extracts component requests from the file content
	Parse(path string, content []byte) ([]model.ComponentRequest, error)
}

// Entry is one component in a YAML or TOML manifest. Either Purl or the explicit fields are set.
type Entry struct {
	model.ComponentRequest `yaml:",inline"`
	Purl                   string `yaml:"purl,omitempty" toml:"purl,omitempty"`
}

// GetAllParsers returns all available parsers
func GetAllParsers() []Parser {
	return []Parser{
		&YAMLParser{},
		&TOMLParser{},
		&GoModParser{},
	}
}

// ParseFile reads path and parses it with the first parser that accepts its name.
func ParseFile(path string) ([]model.ComponentRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	for _, p := range GetAllParsers() {
		if p.CanParse(name) {
			return p.Parse(path, content)
		}
	}
	return nil, fmt.Errorf("unsupported manifest %q", name)
}

func entriesToRequests(path string, entries []Entry) ([]model.ComponentRequest, error) {
	requests := make([]model.ComponentRequest, 0, len(entries))
	for i, e := range entries {
		if e.Purl == "" {
			requests = append(requests, e.ComponentRequest)
			continue
		}
		req, err := util.RequestFromPURL(e.Purl)
		if err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", path, i+1, err)
		}
		req.IdentifierOverride = e.IdentifierOverride
		req.Notes = e.Notes
		requests = append(requests, req)
	}
	return requests, nil
}
