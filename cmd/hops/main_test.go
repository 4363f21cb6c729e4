package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hops/config"
	"github.com/hupe1980/hops/logging"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "hops dev\n", out)
}

func TestComponents_Table(t *testing.T) {
	out, err := run(t, "components", "--demo")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "URI"))
	assert.Contains(t, lines[1], "/binmult")
	assert.Contains(t, lines[2], "/add")
	assert.Contains(t, lines[3], "/test.IntegerOutput")
	assert.Contains(t, lines[3], "Hops/Hops Go")
}

func TestComponents_JSONFromManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mult.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
component "Multiply" {
  handler     = "binmult"
  uri         = "/multiply"
  description = "Multiply two numbers"
  input "A" { type = "Number" }
  input "B" {
    type    = "Number"
    default = 2
  }
  output "Product" { type = "Number" }
}
`), 0o600))

	out, err := run(t, "components", "--manifest", path, "--format", "json")
	require.NoError(t, err)

	var defs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 1)
	assert.Equal(t, "/multiply", defs[0]["uri"])
	assert.Equal(t, "Multiply two numbers", defs[0]["description"])
	assert.Len(t, defs[0]["inputs"], 2)
}

func TestComponents_Errors(t *testing.T) {
	_, err := run(t, "components", "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "components", "--manifest", filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorContains(t, err, "load manifests")

	_, err = run(t, "components", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewEngine(t *testing.T) {
	cfg := config.Default()
	engine, err := newEngine(cfg, true, logging.NoOpLogger{})
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/help", http.StatusOK, "Welcome"},
		{http.MethodGet, "/add", http.StatusOK, `"uri":"/add"`},
		{http.MethodGet, "/solve", http.StatusMethodNotAllowed, "405"},
		{http.MethodPost, "/add/solve", http.StatusOK, `"ParamName":"Sum"`},
		{http.MethodGet, "/metrics", http.StatusOK, "hops_registry_components"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body *strings.Reader
			if tt.method == http.MethodPost {
				body = strings.NewReader(`{"values":[
					{"ParamName":"A","InnerTree":{"{0}":[{"type":"System.Double","data":"1"}]}},
					{"ParamName":"B","InnerTree":{"{0}":[{"type":"System.Double","data":"2"}]}}]}`)
			} else {
				body = strings.NewReader("")
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, body))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestNewEngine_MetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	engine, err := newEngine(cfg, false, logging.NoOpLogger{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
