package demo

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hops"
	"github.com/hupe1980/hops/internal/testutil"
)

func TestRegister(t *testing.T) {
	h := hops.New()
	require.NoError(t, Register(h))
	assert.Equal(t, 3, h.Registry().Len())

	for _, uri := range []string{"/binmult", "/add", "/test.IntegerOutput"} {
		_, ok := h.Registry().LookupExact(uri)
		assert.True(t, ok, uri)
	}

	assert.Error(t, Register(h), "second registration collides")
}

func TestDemoSolves(t *testing.T) {
	h := hops.New()
	require.NoError(t, Register(h))

	tests := []struct {
		path string
		body []byte
		want [][]string
	}{
		{"/add/solve", testutil.NewPayload().Number("A", 3).Number("B", 4).Build(), [][]string{{"7"}, {"12"}}},
		{"/binmult/solve", testutil.NewPayload().Number("A", 2.5).Number("B", 2).Build(), [][]string{{"5"}}},
		{"/test.IntegerOutput/solve", testutil.NewPayload().Integer("A", 2).Integer("B", 40).Build(), [][]string{{"42"}}},
		{"/solve", testutil.NewPayload().Pointer("add").Number("A", 1).Number("B", 1).Build(), [][]string{{"2"}, {"1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := h.Dispatch(context.Background(), http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
			env, err := testutil.DecodeEnvelope(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.Data())
		})
	}
}

func TestHandlers(t *testing.T) {
	handlers := Handlers()
	assert.Len(t, handlers, 3)
	assert.Contains(t, handlers, "binmult")
}
