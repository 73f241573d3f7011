package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/component-monitor/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseYAML(t *testing.T) {
	path := writeFile(t, "components.yaml", `
components:
  - type: library
    name: left-pad
    version: 1.3.0
    ecosystem: npm
    notes: legacy build
  - purl: pkg:maven/org.apache.logging.log4j/log4j-core@2.14.1
  - type: product
    name: nginx
    version: 1.25.3
    identifier_override: "cpe:2.3:a:f5:nginx:1.25.3:*:*:*:*:*:*:*"
`)

	requests, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, requests, 3)

	assert.Equal(t, "left-pad", requests[0].Name)
	require.NotNil(t, requests[0].Notes)
	assert.Equal(t, "legacy build", *requests[0].Notes)

	assert.Equal(t, "org.apache.logging.log4j:log4j-core", requests[1].Name)
	assert.Equal(t, "maven", requests[1].Ecosystem)
	assert.Equal(t, "2.14.1", requests[1].Version)

	d, err := requests[2].Describe()
	require.NoError(t, err)
	assert.Equal(t, model.ComponentTypeProduct, d.Kind())
	assert.Equal(t, "cpe:2.3:a:f5:nginx:1.25.3:*:*:*:*:*:*:*", d.Override())
}

func TestParseYAMLRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "components.yml", "components:\n  - nmae: typo\n")
	_, err := ParseFile(path)
	assert.Error(t, err)
}

func TestParseTOML(t *testing.T) {
	path := writeFile(t, "components.toml", `
[[components]]
type = "library"
name = "requests"
version = "2.31.0"
ecosystem = "pypi"

[[components]]
purl = "pkg:cargo/serde@1.0.190"
`)

	requests, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []model.ComponentRequest{
		{Type: "library", Name: "requests", Version: "2.31.0", Ecosystem: "pypi"},
		{Type: "library", Name: "serde", Version: "1.0.190", Ecosystem: "crates.io"},
	}, requests)
}

func TestParseGoMod(t *testing.T) {
	path := writeFile(t, "go.mod", `module example.com/app

go 1.22

require (
	github.com/gofiber/fiber/v2 v2.52.10
	go.uber.org/multierr v1.11.0 // indirect
)
`)

	requests, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []model.ComponentRequest{
		{Type: "library", Name: "github.com/gofiber/fiber/v2", Version: "2.52.10", Ecosystem: "go"},
	}, requests)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	all, err := (&GoModParser{IncludeIndirect: true}).Parse(path, content)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestParseFileUnsupported(t *testing.T) {
	path := writeFile(t, "requirements.txt", "requests==2.31.0\n")
	_, err := ParseFile(path)
	assert.ErrorContains(t, err, "unsupported manifest")
}
