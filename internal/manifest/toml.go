package manifest

import (
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ortelius/component-monitor/model"
)

// TOMLParser parses component manifests written in TOML
type TOMLParser struct{}

// CanParse returns true for .toml files
func (p *TOMLParser) CanParse(filename string) bool {
	return filepath.Ext(filename) == ".toml"
}

type tomlManifest struct {
	Components []Entry `toml:"components"`
}

// Parse extracts components from [[components]] tables
func (p *TOMLParser) Parse(path string, content []byte) ([]model.ComponentRequest, error) {
	var m tomlManifest
	md, err := toml.Decode(string(content), &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, model.Validationf("%s: unknown keys %v", path, undecoded)
	}
	return entriesToRequests(path, m.Components)
}
