package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParam struct{ name string }

func (p stubParam) Name() string                           { return p.name }
func (p stubParam) Optional() bool                         { return false }
func (p stubParam) Default() any                           { return nil }
func (p stubParam) WithDefault(any) InputSpec              { return p }
func (p stubParam) FromInput(json.RawMessage) (any, error) { return nil, nil }
func (p stubParam) ToOutput(v any) (any, error)            { return v, nil }
func (p stubParam) Describe() ParamDesc {
	return ParamDesc{Name: p.name, Nickname: p.name, Type: "Number", Access: AccessItem}
}

type stubInvoker struct{}

func (stubInvoker) Invoke(context.Context, []any) ([]any, error) { return nil, nil }
func (stubInvoker) Arity() int                                   { return 1 }

func TestBuiltinRoutes(t *testing.T) {
	assert.True(t, IsBuiltinRoute("/"))
	assert.True(t, IsBuiltinRoute("/solve"))
	assert.False(t, IsBuiltinRoute("/add"))
	assert.Equal(t, "/add/solve", SolveURIFor("/add"))
}

func TestDefinition(t *testing.T) {
	inputs := []InputSpec{stubParam{"A"}}
	def := NewDefinition(DefinitionConfig{
		URI:      "/add",
		Name:     "Add",
		Nickname: "A+",
		Inputs:   inputs,
		Outputs:  []OutputSpec{stubParam{"Sum"}},
		Handler:  stubInvoker{},
	})

	assert.Equal(t, "/add/solve", def.SolveURI())
	assert.Equal(t, "HopsComponent(/add -> Add)", def.String())
	assert.Equal(t, 1, def.NumInputs())
	assert.Equal(t, 1, def.NumOutputs())
	assert.Equal(t, "A", def.Input(0).Name())
	assert.Equal(t, "Sum", def.Output(0).Name())
	assert.Equal(t, 1, def.Handler().Arity())

	inputs[0] = stubParam{"changed"}
	got := def.Inputs()
	got[0] = stubParam{"changed too"}
	assert.Equal(t, "A", def.Input(0).Name())
}

func TestDefinition_Describe(t *testing.T) {
	def := NewDefinition(DefinitionConfig{URI: "/add", Name: "Add", Inputs: []InputSpec{stubParam{"A"}}})

	b, err := json.Marshal(def.Describe())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Nil(t, decoded["icon"])
	assert.Equal(t, []any{}, decoded["outputs"])
	assert.Len(t, decoded["inputs"], 1)

	withIcon := NewDefinition(DefinitionConfig{URI: "/p", Name: "P", Icon: "aWNvbg=="})
	v, err := withIcon.EncodeHops()
	require.NoError(t, err)
	desc := v.(Description)
	require.NotNil(t, desc.Icon)
	assert.Equal(t, "aWNvbg==", *desc.Icon)
}

func TestAccess_Valid(t *testing.T) {
	for _, a := range []Access{AccessItem, AccessList, AccessTree} {
		assert.True(t, a.Valid(), string(a))
	}
	assert.False(t, Access("grid").Valid())
}
