// Package param implements the ParamSpec contract for the primitive
// Grasshopper types (Number, Integer, String, Boolean) over the Hops data
// tree wire format. Conversion between wire text and native Go values goes
// through go-cty so that type mismatches (a fractional Integer, a non-numeric
// Number) are reported uniformly.
//
// Geometry codecs are not provided here; they implement core.InputSpec and
// core.OutputSpec in their own packages.
package param

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/hupe1980/hops/core"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Kind describes one primitive wire type.
type Kind struct {
	// Tag is the type name exposed in component descriptions.
	Tag string
	// HostType is the type name written into output data items.
	HostType string
	cty      cty.Type
	goType   reflect.Type
	integer  bool
}

var (
	// KindNumber maps to float64.
	KindNumber = Kind{Tag: "Number", HostType: "System.Double", cty: cty.Number, goType: reflect.TypeOf(float64(0))}
	// KindInteger maps to int.
	KindInteger = Kind{Tag: "Integer", HostType: "System.Int32", cty: cty.Number, goType: reflect.TypeOf(int(0)), integer: true}
	// KindString maps to string.
	KindString = Kind{Tag: "String", HostType: "System.String", cty: cty.String, goType: reflect.TypeOf("")}
	// KindBoolean maps to bool.
	KindBoolean = Kind{Tag: "Boolean", HostType: "System.Boolean", cty: cty.Bool, goType: reflect.TypeOf(false)}
)

// LookupKind resolves a type tag (case-insensitive, "Text" is an alias of
// "String", "Bool" of "Boolean", "Int" of "Integer").
func LookupKind(tag string) (Kind, bool) {
	switch strings.ToLower(tag) {
	case "number", "double", "float":
		return KindNumber, true
	case "integer", "int":
		return KindInteger, true
	case "string", "text":
		return KindString, true
	case "boolean", "bool":
		return KindBoolean, true
	}
	return Kind{}, false
}

// Options configures a primitive parameter.
type Options struct {
	Access   core.Access
	Optional bool
	Default  any
}

// WithDefault sets the declared default value.
func WithDefault(v any) func(o *Options) {
	return func(o *Options) { o.Default = v }
}

// Optional marks the input as optional.
func Optional() func(o *Options) {
	return func(o *Options) { o.Optional = true }
}

// WithAccess sets the access mode (item, list, tree).
func WithAccess(a core.Access) func(o *Options) {
	return func(o *Options) { o.Access = a }
}

// Primitive is a ParamSpec for a primitive kind. It implements both
// core.InputSpec and core.OutputSpec and is immutable.
type Primitive struct {
	kind        Kind
	name        string
	nickname    string
	description string
	access      core.Access
	optional    bool
	def         any
}

// New creates a primitive parameter of the given kind.
func New(kind Kind, name, nickname, description string, optFns ...func(o *Options)) *Primitive {
	opts := Options{Access: core.AccessItem}
	for _, fn := range optFns {
		fn(&opts)
	}
	if !opts.Access.Valid() {
		opts.Access = core.AccessItem
	}
	if nickname == "" {
		nickname = name
	}
	return &Primitive{
		kind:        kind,
		name:        name,
		nickname:    nickname,
		description: description,
		access:      opts.Access,
		optional:    opts.Optional,
		def:         opts.Default,
	}
}

// Number creates a Number (float64) parameter.
func Number(name, nickname, description string, optFns ...func(o *Options)) *Primitive {
	return New(KindNumber, name, nickname, description, optFns...)
}

// Integer creates an Integer (int) parameter.
func Integer(name, nickname, description string, optFns ...func(o *Options)) *Primitive {
	return New(KindInteger, name, nickname, description, optFns...)
}

// String creates a String parameter.
func String(name, nickname, description string, optFns ...func(o *Options)) *Primitive {
	return New(KindString, name, nickname, description, optFns...)
}

// Boolean creates a Boolean parameter.
func Boolean(name, nickname, description string, optFns ...func(o *Options)) *Primitive {
	return New(KindBoolean, name, nickname, description, optFns...)
}

// Name returns the wire key of the parameter.
func (p *Primitive) Name() string { return p.name }

// Optional reports whether the input may be omitted.
func (p *Primitive) Optional() bool { return p.optional }

// Default returns the declared default value, or nil.
func (p *Primitive) Default() any { return p.def }

// Access returns the access mode.
func (p *Primitive) Access() core.Access { return p.access }

// Kind returns the primitive kind.
func (p *Primitive) Kind() Kind { return p.kind }

// WithDefault returns a copy of p with default v.
func (p *Primitive) WithDefault(v any) core.InputSpec {
	cp := *p
	cp.def = v
	return &cp
}

// GoType returns the Go type of the native value for the access mode.
func (p *Primitive) GoType() reflect.Type {
	switch p.access {
	case core.AccessList:
		return reflect.SliceOf(p.kind.goType)
	case core.AccessTree:
		return reflect.MapOf(reflect.TypeOf(""), reflect.SliceOf(p.kind.goType))
	default:
		return p.kind.goType
	}
}

// Describe returns the wire description.
func (p *Primitive) Describe() core.ParamDesc {
	return core.ParamDesc{
		Name:        p.name,
		Nickname:    p.nickname,
		Description: p.description,
		Type:        p.kind.Tag,
		Access:      p.access,
		Default:     p.def,
		Optional:    p.optional,
	}
}

// FromInput converts a raw solve-request item into a native value.
func (p *Primitive) FromInput(raw json.RawMessage) (any, error) {
	item, err := DecodeInputItem(raw)
	if err != nil {
		return nil, p.marshalErr(err)
	}

	switch p.access {
	case core.AccessList:
		branch := FirstBranch(item.InnerTree)
		out := reflect.MakeSlice(reflect.SliceOf(p.kind.goType), 0, len(branch))
		for _, d := range branch {
			v, err := p.decode(d)
			if err != nil {
				return nil, p.marshalErr(err)
			}
			out = reflect.Append(out, v)
		}
		return out.Interface(), nil
	case core.AccessTree:
		out := reflect.MakeMapWithSize(p.GoType(), len(item.InnerTree))
		for _, path := range BranchPaths(item.InnerTree) {
			branch := item.InnerTree[path]
			values := reflect.MakeSlice(reflect.SliceOf(p.kind.goType), 0, len(branch))
			for _, d := range branch {
				v, err := p.decode(d)
				if err != nil {
					return nil, p.marshalErr(fmt.Errorf("branch %s: %w", path, err))
				}
				values = reflect.Append(values, v)
			}
			out.SetMapIndex(reflect.ValueOf(path), values)
		}
		return out.Interface(), nil
	default:
		branch := FirstBranch(item.InnerTree)
		if len(branch) == 0 {
			if p.def != nil {
				return p.def, nil
			}
			return nil, p.marshalErr(fmt.Errorf("no value supplied"))
		}
		v, err := p.decode(branch[0])
		if err != nil {
			return nil, p.marshalErr(err)
		}
		return v.Interface(), nil
	}
}

// ToOutput converts a native handler result into a wire output item.
func (p *Primitive) ToOutput(v any) (any, error) {
	out := OutputItem{ParamName: p.name, InnerTree: map[string][]OutputData{}}

	switch p.access {
	case core.AccessList:
		items, err := p.encodeSlice(v)
		if err != nil {
			return nil, p.outputErr(err)
		}
		out.InnerTree[DefaultBranch] = items
	case core.AccessTree:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, p.outputErr(fmt.Errorf("tree output must be a map keyed by branch path, got %T", v))
		}
		iter := rv.MapRange()
		for iter.Next() {
			items, err := p.encodeSlice(iter.Value().Interface())
			if err != nil {
				return nil, p.outputErr(fmt.Errorf("branch %s: %w", iter.Key().String(), err))
			}
			out.InnerTree[iter.Key().String()] = items
		}
	default:
		d, err := p.encode(v)
		if err != nil {
			return nil, p.outputErr(err)
		}
		out.InnerTree[DefaultBranch] = []OutputData{d}
	}
	return out, nil
}

// CoerceDefault converts a cty value (e.g. from a manifest) into this
// parameter's native item type.
func (p *Primitive) CoerceDefault(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	cv, err := convert.Convert(v, p.kind.cty)
	if err != nil {
		return nil, fmt.Errorf("default for %s: %w", p.name, err)
	}
	target := reflect.New(p.kind.goType)
	if err := gocty.FromCtyValue(cv, target.Interface()); err != nil {
		return nil, fmt.Errorf("default for %s: %w", p.name, err)
	}
	return target.Elem().Interface(), nil
}

func (p *Primitive) decode(d DataItem) (reflect.Value, error) {
	text, err := dataText(d.Data)
	if err != nil {
		return reflect.Value{}, err
	}
	if p.kind.cty.Equals(cty.String) {
		text = unquoteText(text)
	} else {
		text = strings.TrimSpace(text)
	}
	cv, err := convert.Convert(cty.StringVal(text), p.kind.cty)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot read %q as %s: %w", text, p.kind.Tag, err)
	}
	target := reflect.New(p.kind.goType)
	if err := gocty.FromCtyValue(cv, target.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot read %q as %s: %w", text, p.kind.Tag, err)
	}
	return target.Elem(), nil
}

func (p *Primitive) encode(v any) (OutputData, error) {
	if v == nil {
		return OutputData{}, fmt.Errorf("nil result")
	}
	if nonFinite(v) {
		return OutputData{}, fmt.Errorf("cannot write %v as %s: not a finite number", v, p.kind.Tag)
	}
	cv, err := gocty.ToCtyValue(v, p.kind.cty)
	if err != nil {
		return OutputData{}, fmt.Errorf("cannot write %T as %s: %w", v, p.kind.Tag, err)
	}
	if p.kind.integer && !cv.AsBigFloat().IsInt() {
		return OutputData{}, fmt.Errorf("cannot write %v as %s: not a whole number", v, p.kind.Tag)
	}
	data, err := ctyjson.Marshal(cv, p.kind.cty)
	if err != nil {
		return OutputData{}, err
	}
	return OutputData{Type: p.kind.HostType, Data: string(data)}, nil
}

// nonFinite reports NaN and infinities, which have no JSON number form.
func nonFinite(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f) || math.IsInf(f, 0)
	case float32:
		return nonFinite(float64(f))
	}
	return false
}

func (p *Primitive) encodeSlice(v any) ([]OutputData, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("list output must be a slice, got %T", v)
	}
	items := make([]OutputData, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		d, err := p.encode(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		items = append(items, d)
	}
	return items, nil
}

func (p *Primitive) marshalErr(err error) error {
	return core.WrapError(core.KindMarshal, p.name, err, fmt.Sprintf("Bad value for input %s: %v", p.name, err))
}

func (p *Primitive) outputErr(err error) error {
	return core.WrapError(core.KindMarshal, p.name, err, fmt.Sprintf("Bad value for output %s: %v", p.name, err))
}

var (
	_ core.InputSpec  = (*Primitive)(nil)
	_ core.OutputSpec = (*Primitive)(nil)
	_ core.Typed      = (*Primitive)(nil)
)
