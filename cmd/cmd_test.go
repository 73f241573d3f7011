package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOSV(t *testing.T) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"vulns": [{"id": "GHSA-test", "summary": "test", "database_specific": {"severity": "MODERATE"}}]}`))
	}))
	t.Cleanup(server.Close)

	t.Chdir(t.TempDir())
	t.Setenv("OSV_URL", server.URL)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	fakeOSV(t)

	out, err := execute(t, "analyze", "--type", "library", "--ecosystem", "npm", "left-pad", "1.3.0")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "pkg:npm/left-pad@1.3.0", got["identifier"])
	assert.Equal(t, []interface{}{"GHSA-test"}, got["vulnerabilities"])
	findings := got["findings"].([]interface{})
	require.Len(t, findings, 1)
	assert.Equal(t, "medium", findings[0].(map[string]interface{})["severity"])
}

func TestImportCommand(t *testing.T) {
	fakeOSV(t)

	path := filepath.Join(t.TempDir(), "go.mod")
	require.NoError(t, os.WriteFile(path, []byte("module example.com/app\n\ngo 1.22\n\nrequire github.com/spf13/cobra v1.10.2\n"), 0o600))

	out, err := execute(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "github.com/spf13/cobra@1.10.2 (1 vulnerabilities)")
	assert.Contains(t, out, "added")
}

func TestImportCommandUnsupportedManifest(t *testing.T) {
	fakeOSV(t)

	path := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(path, []byte("requests==2.31.0\n"), 0o600))

	_, err := execute(t, "import", path)
	assert.ErrorContains(t, err, "unsupported manifest")
}
