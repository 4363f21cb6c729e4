package core

import (
	"context"
	"fmt"
)

const (
	// RootRoute is the builtin root path.
	RootRoute = "/"
	// SolveRoute is the builtin legacy solve path. It is also the suffix
	// appended to a declared uri to form its solve uri.
	SolveRoute = "/solve"

	// DefaultCategory is used when a component declares no category.
	DefaultCategory = "Hops"
	// DefaultSubcategory is used when a component declares no subcategory.
	DefaultSubcategory = "Hops Go"
)

// IsBuiltinRoute reports whether path is one of the two builtin routes.
func IsBuiltinRoute(path string) bool {
	return path == RootRoute || path == SolveRoute
}

// SolveURIFor derives the solve uri of a declared uri.
func SolveURIFor(uri string) string {
	return uri + SolveRoute
}

// Invoker is the opaque handler reference held by a Definition. Invoke calls
// the handler with positional native arguments and returns its results in
// order, excluding a trailing error.
type Invoker interface {
	Invoke(ctx context.Context, args []any) ([]any, error)
	Arity() int
}

// DefinitionConfig carries the resolved attributes of a component. It is
// consumed by NewDefinition and not retained.
type DefinitionConfig struct {
	URI         string
	Name        string
	Nickname    string
	Description string
	Category    string
	Subcategory string
	Icon        string
	Inputs      []InputSpec
	Outputs     []OutputSpec
	Handler     Invoker
}

// Definition is one registered procedure. It is immutable after construction
// and safe for concurrent use.
type Definition struct {
	uri         string
	solveURI    string
	name        string
	nickname    string
	description string
	category    string
	subcategory string
	icon        string
	inputs      []InputSpec
	outputs     []OutputSpec
	handler     Invoker
}

// NewDefinition builds an immutable Definition. The solve uri is derived from
// the declared uri.
func NewDefinition(cfg DefinitionConfig) *Definition {
	return &Definition{
		uri:         cfg.URI,
		solveURI:    SolveURIFor(cfg.URI),
		name:        cfg.Name,
		nickname:    cfg.Nickname,
		description: cfg.Description,
		category:    cfg.Category,
		subcategory: cfg.Subcategory,
		icon:        cfg.Icon,
		inputs:      append([]InputSpec(nil), cfg.Inputs...),
		outputs:     append([]OutputSpec(nil), cfg.Outputs...),
		handler:     cfg.Handler,
	}
}

func (d *Definition) URI() string         { return d.uri }
func (d *Definition) SolveURI() string    { return d.solveURI }
func (d *Definition) Name() string        { return d.name }
func (d *Definition) Nickname() string    { return d.nickname }
func (d *Definition) Description() string { return d.description }
func (d *Definition) Category() string    { return d.category }
func (d *Definition) Subcategory() string { return d.subcategory }

// Icon returns the base64 encoded icon, or "" when the component has none.
func (d *Definition) Icon() string { return d.icon }

// Handler returns the handler reference.
func (d *Definition) Handler() Invoker { return d.handler }

// Inputs returns the declared inputs in positional order.
func (d *Definition) Inputs() []InputSpec { return append([]InputSpec(nil), d.inputs...) }

// Outputs returns the declared outputs in positional order.
func (d *Definition) Outputs() []OutputSpec { return append([]OutputSpec(nil), d.outputs...) }

// NumInputs returns len(Inputs()) without copying.
func (d *Definition) NumInputs() int { return len(d.inputs) }

// NumOutputs returns len(Outputs()) without copying.
func (d *Definition) NumOutputs() int { return len(d.outputs) }

// Input returns the i-th declared input.
func (d *Definition) Input(i int) InputSpec { return d.inputs[i] }

// Output returns the i-th declared output.
func (d *Definition) Output(i int) OutputSpec { return d.outputs[i] }

func (d *Definition) String() string {
	return fmt.Sprintf("HopsComponent(%s -> %s)", d.uri, d.name)
}

// Description is the wire representation of a Definition.
type Description struct {
	URI         string      `json:"uri"`
	Name        string      `json:"name"`
	Nickname    string      `json:"nickname"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	Icon        *string     `json:"icon"`
	Inputs      []ParamDesc `json:"inputs"`
	Outputs     []ParamDesc `json:"outputs"`
}

// Describe returns the wire representation of the definition.
func (d *Definition) Describe() Description {
	desc := Description{
		URI:         d.uri,
		Name:        d.name,
		Nickname:    d.nickname,
		Description: d.description,
		Category:    d.category,
		Subcategory: d.subcategory,
		Inputs:      make([]ParamDesc, 0, len(d.inputs)),
		Outputs:     make([]ParamDesc, 0, len(d.outputs)),
	}
	if d.icon != "" {
		icon := d.icon
		desc.Icon = &icon
	}
	for _, in := range d.inputs {
		desc.Inputs = append(desc.Inputs, in.Describe())
	}
	for _, out := range d.outputs {
		desc.Outputs = append(desc.Outputs, out.Describe())
	}
	return desc
}

// EncodeHops lets the response encoder serialize a definition without
// structural introspection.
func (d *Definition) EncodeHops() (any, error) {
	return d.Describe(), nil
}
