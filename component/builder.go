// Package component builds immutable Hops component definitions from plain
// Go functions.
//
// The builder checks the handler's shape against the declared inputs at
// registration time, so that a component with the wrong arity or with
// parameter types its inputs cannot produce never reaches the registry:
//
//	def, err := component.Build(add, func(o *component.Options) {
//		o.URI = "/add"
//		o.Inputs = []core.InputSpec{param.Number("A", "A", "First"), param.Number("B", "B", "Second")}
//		o.Outputs = []core.OutputSpec{param.Number("Sum", "S", "A + B")}
//	})
package component

import (
	"fmt"
	"strings"

	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/internal/util"
	"github.com/hupe1980/hops/logging"
)

// Options configures Build.
type Options struct {
	// URI is the declared uri. Defaults to "/" + Name.
	URI string
	// Name defaults to the handler's function name.
	Name string
	// Nickname defaults to Name.
	Nickname string
	// Description is shown in the host's component tooltip.
	Description string
	// Category defaults to core.DefaultCategory.
	Category string
	// Subcategory defaults to core.DefaultSubcategory.
	Subcategory string
	// Icon is a path to an icon file. See ResourceDir.
	Icon string
	// ResourceDir is the base directory used to resolve a relative Icon
	// after the working directory.
	ResourceDir string
	// Inputs bind positionally to the handler's parameters.
	Inputs []core.InputSpec
	// Outputs bind positionally to the handler's results.
	Outputs []core.OutputSpec
	// Defaults are handler-side parameter defaults keyed by position. They
	// take precedence over the defaults declared on Inputs.
	Defaults map[int]any
	// Logger receives non-fatal registration warnings.
	Logger logging.Logger
}

// Build constructs a definition for fn.
//
// Errors:
//
//	KindConfiguration -> fn is not a usable function, the input count differs
//	                     from the handler arity (wraps core.ErrArityMismatch),
//	                     an input type cannot be passed to its parameter,
//	                     input names repeat, or the uri is a builtin route.
//
// A missing icon is not an error; it is logged and the component has none.
func Build(fn any, optFns ...func(o *Options)) (*core.Definition, error) {
	opts := Options{
		Category:    core.DefaultCategory,
		Subcategory: core.DefaultSubcategory,
	}
	for _, f := range optFns {
		f(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	h, err := NewHandler(fn)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = h.Name()
	}
	if name == "" {
		return nil, core.NewError(core.KindConfiguration, "", "cannot derive a name for handler %T, set Options.Name", fn)
	}

	if len(opts.Inputs) != h.Arity() {
		return nil, core.WrapError(core.KindConfiguration, name, core.ErrArityMismatch,
			fmt.Sprintf("Number of function parameters is different from defined Hops inputs: handler %s takes %d, %d declared",
				name, h.Arity(), len(opts.Inputs)))
	}

	inputs, err := bindInputs(name, h, opts.Inputs, opts.Defaults)
	if err != nil {
		return nil, err
	}
	for i, out := range opts.Outputs {
		if out == nil {
			return nil, core.NewError(core.KindConfiguration, name, "output %d is nil", i)
		}
	}

	uri, err := resolveURI(name, opts.URI)
	if err != nil {
		return nil, err
	}

	nickname := opts.Nickname
	if nickname == "" {
		nickname = name
	}
	category := opts.Category
	if category == "" {
		category = core.DefaultCategory
	}
	subcategory := opts.Subcategory
	if subcategory == "" {
		subcategory = core.DefaultSubcategory
	}

	var icon string
	if opts.Icon != "" {
		icon, err = LoadIcon(opts.Icon, opts.ResourceDir)
		if err != nil {
			logger.Warn("icon.not_found", "component", name, "icon", opts.Icon, "error", err.Error())
			icon = ""
		}
	}

	def := core.NewDefinition(core.DefinitionConfig{
		URI:         uri,
		Name:        name,
		Nickname:    nickname,
		Description: opts.Description,
		Category:    category,
		Subcategory: subcategory,
		Icon:        icon,
		Inputs:      inputs,
		Outputs:     opts.Outputs,
		Handler:     h,
	})
	logger.Debug("component.built", "component", name, "uri", uri, "inputs", len(inputs), "outputs", len(opts.Outputs))
	return def, nil
}

func bindInputs(name string, h *Handler, declared []core.InputSpec, defaults map[int]any) ([]core.InputSpec, error) {
	inputs := make([]core.InputSpec, len(declared))
	seen := make(map[string]struct{}, len(declared))
	for i, in := range declared {
		if in == nil {
			return nil, core.NewError(core.KindConfiguration, name, "input %d is nil", i)
		}
		if _, dup := seen[in.Name()]; dup {
			return nil, core.NewError(core.KindConfiguration, name, "duplicate input name %q", in.Name())
		}
		seen[in.Name()] = struct{}{}

		if typed, ok := in.(core.Typed); ok && !util.Compatible(typed.GoType(), h.ParamType(i)) {
			return nil, core.NewError(core.KindConfiguration, name,
				"input %s produces %s, handler parameter %d is %s", in.Name(), typed.GoType(), i, h.ParamType(i))
		}
		inputs[i] = in
	}

	for pos, v := range defaults {
		if pos < 0 || pos >= len(inputs) {
			return nil, core.NewError(core.KindConfiguration, name, "default for parameter %d is out of range", pos)
		}
		inputs[pos] = inputs[pos].WithDefault(v)
	}
	return inputs, nil
}

func resolveURI(name, uri string) (string, error) {
	if uri == "" {
		uri = "/" + name
	}
	if !strings.HasPrefix(uri, core.RootRoute) {
		uri = core.RootRoute + uri
	}
	if core.IsBuiltinRoute(uri) {
		return "", core.NewError(core.KindConfiguration, name, "uri %q is reserved", uri)
	}
	return uri, nil
}
