package param

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/hupe1980/hops/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func item(t *testing.T, name string, branches map[string][]DataItem) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(InputItem{ParamName: name, InnerTree: branches})
	require.NoError(t, err)
	return b
}

func data(hostType, text string) DataItem {
	quoted, _ := json.Marshal(text)
	return DataItem{Type: hostType, Data: quoted}
}

func TestPrimitive_FromInput_Item(t *testing.T) {
	tests := []struct {
		name string
		spec *Primitive
		data DataItem
		want any
	}{
		{"number", Number("A", "A", ""), data("System.Double", "3.5"), 3.5},
		{"number from bare json", Number("A", "A", ""), DataItem{Data: json.RawMessage(`4`)}, 4.0},
		{"integer", Integer("N", "N", ""), data("System.Int32", "7"), 7},
		{"string", String("S", "S", ""), data("System.String", `"hello"`), "hello"},
		{"unquoted string", String("S", "S", ""), data("System.String", "plain"), "plain"},
		{"boolean", Boolean("B", "B", ""), data("System.Boolean", "true"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.spec.FromInput(item(t, tt.spec.Name(), map[string][]DataItem{"{0}": {tt.data}}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrimitive_FromInput_Mismatch(t *testing.T) {
	tests := []struct {
		name string
		spec *Primitive
		data DataItem
	}{
		{"number from text", Number("A", "A", ""), data("System.String", "abc")},
		{"fractional integer", Integer("N", "N", ""), data("System.Double", "2.5")},
		{"boolean from text", Boolean("B", "B", ""), data("System.String", "maybe")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.FromInput(item(t, tt.spec.Name(), map[string][]DataItem{"{0}": {tt.data}}))
			require.Error(t, err)
			assert.True(t, core.IsKind(err, core.KindMarshal))
		})
	}
}

func TestPrimitive_FromInput_Malformed(t *testing.T) {
	_, err := Number("A", "A", "").FromInput(json.RawMessage(`{"ParamName": 5}`))
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindMarshal))
}

func TestPrimitive_FromInput_EmptyUsesDefault(t *testing.T) {
	spec := Number("A", "A", "", WithDefault(0.25))
	got, err := spec.FromInput(item(t, "A", map[string][]DataItem{}))
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)

	_, err = Number("A", "A", "").FromInput(item(t, "A", map[string][]DataItem{}))
	assert.Error(t, err)
}

func TestPrimitive_FromInput_ListAndTree(t *testing.T) {
	branches := map[string][]DataItem{
		"{1}": {data("System.Double", "3")},
		"{0}": {data("System.Double", "1"), data("System.Double", "2")},
	}

	list := Number("L", "L", "", WithAccess(core.AccessList))
	got, err := list.FromInput(item(t, "L", branches))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)

	tree := Number("T", "T", "", WithAccess(core.AccessTree))
	got, err = tree.FromInput(item(t, "T", branches))
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{"{0}": {1, 2}, "{1}": {3}}, got)
}

func TestPrimitive_ToOutput(t *testing.T) {
	out, err := Number("Sum", "S", "").ToOutput(7.0)
	require.NoError(t, err)
	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ParamName":"Sum","InnerTree":{"{0}":[{"type":"System.Double","data":"7"}]}}`, string(b))

	out, err = String("Msg", "M", "").ToOutput("hi")
	require.NoError(t, err)
	b, err = json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ParamName":"Msg","InnerTree":{"{0}":[{"type":"System.String","data":"\"hi\""}]}}`, string(b))

	out, err = Integer("N", "N", "", WithAccess(core.AccessList)).ToOutput([]int{1, 2})
	require.NoError(t, err)
	oi := out.(OutputItem)
	assert.Equal(t, []OutputData{{Type: "System.Int32", Data: "1"}, {Type: "System.Int32", Data: "2"}}, oi.InnerTree[DefaultBranch])
}

func TestPrimitive_ToOutput_Errors(t *testing.T) {
	_, err := Integer("N", "N", "").ToOutput(2.5)
	assert.True(t, core.IsKind(err, core.KindMarshal))

	_, err = Number("X", "X", "").ToOutput("seven")
	assert.Error(t, err)

	_, err = Number("X", "X", "", WithAccess(core.AccessList)).ToOutput(3.0)
	assert.Error(t, err)

	_, err = Number("X", "X", "").ToOutput(nil)
	assert.Error(t, err)
}

func TestPrimitive_ToOutput_NonFinite(t *testing.T) {
	for _, v := range []any{math.NaN(), math.Inf(1), math.Inf(-1), float32(math.Inf(1))} {
		var err error
		assert.NotPanics(t, func() {
			_, err = Number("X", "X", "").ToOutput(v)
		})
		require.Error(t, err)
		assert.True(t, core.IsKind(err, core.KindMarshal))
		assert.Contains(t, err.Error(), "not a finite number")
	}

	var err error
	assert.NotPanics(t, func() {
		_, err = Number("X", "X", "", WithAccess(core.AccessList)).ToOutput([]float64{1, math.NaN()})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}

func TestPrimitive_WithDefaultCopies(t *testing.T) {
	orig := Number("A", "A", "", WithDefault(1.0))
	cp := orig.WithDefault(2.0)
	assert.Equal(t, 1.0, orig.Default())
	assert.Equal(t, 2.0, cp.Default())
	assert.Equal(t, 2.0, cp.Describe().Default)
}

func TestPrimitive_GoType(t *testing.T) {
	assert.Equal(t, reflect.TypeOf(0.0), Number("A", "", "").GoType())
	assert.Equal(t, reflect.TypeOf([]int{}), Integer("A", "", "", WithAccess(core.AccessList)).GoType())
	assert.Equal(t, reflect.TypeOf(map[string][]bool{}), Boolean("A", "", "", WithAccess(core.AccessTree)).GoType())
}

func TestPrimitive_Describe(t *testing.T) {
	d := Integer("step", "", "Pixel step", WithDefault(5), Optional()).Describe()
	assert.Equal(t, core.ParamDesc{
		Name:        "step",
		Nickname:    "step",
		Description: "Pixel step",
		Type:        "Integer",
		Access:      core.AccessItem,
		Default:     5,
		Optional:    true,
	}, d)
}

func TestPrimitive_CoerceDefault(t *testing.T) {
	v, err := Integer("N", "N", "").CoerceDefault(cty.NumberIntVal(4))
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = Number("A", "A", "").CoerceDefault(cty.StringVal("0.5"))
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	v, err = Number("A", "A", "").CoerceDefault(cty.NullVal(cty.Number))
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Integer("N", "N", "").CoerceDefault(cty.NumberFloatVal(1.5))
	assert.Error(t, err)
}

func TestLookupKind(t *testing.T) {
	k, ok := LookupKind("text")
	require.True(t, ok)
	assert.Equal(t, "String", k.Tag)

	_, ok = LookupKind("Mesh")
	assert.False(t, ok)
}
