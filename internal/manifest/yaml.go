package manifest

import (
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/ortelius/component-monitor/model"
)

// YAMLParser parses component manifests written in YAML
type YAMLParser struct{}

// CanParse returns true for .yaml and .yml files
func (p *YAMLParser) CanParse(filename string) bool {
	ext := filepath.Ext(filename)
	return ext == ".yaml" || ext == ".yml"
}

type yamlManifest struct {
	Components []Entry `yaml:"components"`
}

// Parse extracts components from a YAML manifest
func (p *YAMLParser) Parse(path string, content []byte) ([]model.ComponentRequest, error) {
	var m yamlManifest
	if err := yaml.UnmarshalStrict(content, &m); err != nil {
		return nil, err
	}
	return entriesToRequests(path, m.Components)
}
