package hops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hops/component"
	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/internal/testutil"
	"github.com/hupe1980/hops/observability"
	"github.com/hupe1980/hops/param"
)

func Add(a, b float64) (float64, float64) { return a + b, a * b }

func registerAdd(t *testing.T, h *Hops) *core.Definition {
	t.Helper()
	def, err := h.Component(Add, func(o *component.Options) {
		o.Description = "Add numbers"
		o.Inputs = []core.InputSpec{param.Number("A", "A", "First number"), param.Number("B", "B", "Second number")}
		o.Outputs = []core.OutputSpec{param.Number("Sum", "S", "A + B"), param.Number("Multi", "M", "A * B")}
	})
	require.NoError(t, err)
	return def
}

func TestHops_RoundTrip(t *testing.T) {
	h := New()
	def := registerAdd(t, h)
	assert.Equal(t, "/Add", def.URI())

	resp := h.Dispatch(context.Background(), http.MethodPost, "/Add/solve", testutil.NewPayload().Number("A", 3).Number("B", 4).Build())
	require.Equal(t, http.StatusOK, resp.Status)
	env, err := testutil.DecodeEnvelope(resp.Body)
	require.NoError(t, err)
	nums, ok := env.Numbers()
	require.True(t, ok)
	assert.Equal(t, []float64{7, 12}, nums)
}

func TestHops_DefaultsFromOptions(t *testing.T) {
	h := New(func(o *Options) {
		o.DefaultCategory = "Maths"
		o.DefaultSubcategory = "Go"
	})
	def := registerAdd(t, h)
	assert.Equal(t, "Maths", def.Category())
	assert.Equal(t, "Go", def.Subcategory())

	other, err := h.Component(func(x float64) float64 { return x }, func(o *component.Options) {
		o.Name = "Identity"
		o.Category = "Utility"
		o.Inputs = []core.InputSpec{param.Number("X", "X", "")}
	})
	require.NoError(t, err)
	assert.Equal(t, "Utility", other.Category())
}

func TestHops_DuplicateFailsFast(t *testing.T) {
	h := New()
	registerAdd(t, h)

	_, err := h.Component(Add, func(o *component.Options) {
		o.Inputs = []core.InputSpec{param.Number("A", "A", ""), param.Number("B", "B", "")}
	})
	assert.True(t, core.IsKind(err, core.KindDuplicateURI))
}

func TestHops_MustComponentPanics(t *testing.T) {
	assert.Panics(t, func() { New().MustComponent(Add) })
}

func TestHops_SealsOnFirstRequest(t *testing.T) {
	h := New()
	registerAdd(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Add", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := h.Component(func() {}, func(o *component.Options) { o.Name = "Late" })
	assert.ErrorIs(t, err, core.ErrRegistrySealed)
	assert.True(t, h.Registry().Sealed())
}

func TestHops_Handles(t *testing.T) {
	h := New()
	registerAdd(t, h)
	assert.True(t, h.Handles(http.MethodPost, "/solve"))
	assert.True(t, h.Handles(http.MethodPost, "/Add/solve"))
	assert.True(t, h.Handles(http.MethodGet, "/Ad"))
	assert.False(t, h.Handles(http.MethodPost, "/Ad"))
	assert.False(t, h.Handles(http.MethodGet, "/health"))
}

func TestHops_LoadManifests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
component "Sub" {
  handler = "sub"
  input "A" { type = "Number" }
  input "B" { type = "Number" }
  output "Diff" { type = "Number" }
}
`), 0o600))

	h := New(func(o *Options) { o.DefaultSubcategory = "Manifest" })
	defs, err := h.LoadManifests(map[string]any{"sub": func(a, b float64) float64 { return a - b }}, path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Manifest", defs[0].Subcategory())

	resp := h.Dispatch(context.Background(), http.MethodPost, "/Sub/solve", testutil.NewPayload().Number("A", 5).Number("B", 2).Build())
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	env, err := testutil.DecodeEnvelope(resp.Body)
	require.NoError(t, err)
	nums, _ := env.Numbers()
	assert.Equal(t, []float64{3}, nums)

	_, err = h.LoadManifests(nil, filepath.Join(t.TempDir(), "missing.hcl"))
	assert.True(t, core.IsKind(err, core.KindConfiguration))
}

func TestHops_LoadManifestsCollisionRegistersNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
component "Sub" {
  handler = "sub"
  input "A" { type = "Number" }
  input "B" { type = "Number" }
  output "Diff" { type = "Number" }
}

component "AddAgain" {
  handler = "sub"
  uri     = "/Add"
  input "A" { type = "Number" }
  input "B" { type = "Number" }
  output "Diff" { type = "Number" }
}
`), 0o600))

	h := New()
	registerAdd(t, h)

	defs, err := h.LoadManifests(map[string]any{"sub": func(a, b float64) float64 { return a - b }}, path)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindDuplicateURI))
	assert.Nil(t, defs)
	assert.False(t, h.Registry().Contains("/Sub"))
	assert.Equal(t, 1, h.Registry().Len())
}

func TestHops_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New()
	registerAdd(t, h)

	r := gin.New()
	r.Use(h.Middleware())
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Add", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHops_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(func(o *Options) { o.Metrics = observability.NewMetrics(reg) })
	registerAdd(t, h)

	h.Dispatch(context.Background(), http.MethodPost, "/Add/solve", testutil.NewPayload().Number("A", 1).Number("B", 2).Build())

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "hops_solve_total")
	assert.Contains(t, joined, "hops_router_requests_total")
	assert.Contains(t, joined, "hops_registry_components")
}
