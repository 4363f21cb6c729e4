package component

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/internal/util"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Handler adapts a plain Go function to the core.Invoker contract.
//
// Accepted shapes:
//
//	func(a, b float64) float64
//	func(ctx context.Context, a, b float64) (float64, float64)
//	func(a float64) (core.Tuple, error)
//	func()
//
// A leading context.Context parameter receives the request context and does
// not count towards the arity. A trailing error result is split off and
// returned as the invocation error. Variadic functions are rejected because
// Hops inputs bind positionally.
//
// Concurrency:
//
//	A Handler has no mutable state after construction and is safe for
//	concurrent use. Whether the wrapped function is safe is up to its author.
type Handler struct {
	fn           reflect.Value
	name         string
	params       []reflect.Type
	withContext  bool
	returnsError bool
	numResults   int
}

// NewHandler wraps fn. It fails with a KindConfiguration error when fn is not
// a function or is variadic.
func NewHandler(fn any) (*Handler, error) {
	if fn == nil {
		return nil, core.NewError(core.KindConfiguration, "", "handler is nil")
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, core.NewError(core.KindConfiguration, "", "handler must be a function, got %T", fn)
	}
	if rv.IsNil() {
		return nil, core.NewError(core.KindConfiguration, "", "handler is nil")
	}
	t := rv.Type()
	name := util.FuncName(fn)
	if t.IsVariadic() {
		return nil, core.NewError(core.KindConfiguration, name, "variadic handlers are not supported")
	}

	h := &Handler{fn: rv, name: name}

	start := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		h.withContext = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		h.params = append(h.params, t.In(i))
	}

	h.numResults = t.NumOut()
	if h.numResults > 0 && t.Out(h.numResults-1) == errorType {
		h.returnsError = true
		h.numResults--
	}
	return h, nil
}

// Name returns the function's short identifier, or "" for anonymous closures
// whose runtime name could not be resolved.
func (h *Handler) Name() string { return h.name }

// Arity returns the number of positional parameters, excluding a leading
// context.Context.
func (h *Handler) Arity() int { return len(h.params) }

// ParamType returns the Go type of the i-th positional parameter.
func (h *Handler) ParamType(i int) reflect.Type { return h.params[i] }

// NumResults returns the number of results, excluding a trailing error.
func (h *Handler) NumResults() int { return h.numResults }

// Invoke calls the function with args converted to its parameter types.
// A non-nil trailing error is returned as is alongside the other results.
// Panics are not recovered here.
func (h *Handler) Invoke(ctx context.Context, args []any) ([]any, error) {
	if len(args) != len(h.params) {
		return nil, core.WrapError(core.KindMarshal, h.name, core.ErrArityMismatch,
			fmt.Sprintf("handler %s expects %d arguments, got %d", h.name, len(h.params), len(args)))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if h.withContext {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	for i, a := range args {
		v, err := util.CoerceArg(fmt.Sprintf("#%d", i), a, h.params[i])
		if err != nil {
			return nil, core.WrapError(core.KindMarshal, h.name, err, err.Error())
		}
		in = append(in, v)
	}

	out := h.fn.Call(in)

	var callErr error
	if h.returnsError {
		if e := out[len(out)-1]; !e.IsNil() {
			callErr = e.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, callErr
}

var _ core.Invoker = (*Handler)(nil)
