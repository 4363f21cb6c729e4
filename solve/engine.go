// Package solve runs Hops solve requests against a component definition.
//
// A solve marshals the payload's values into positional handler arguments,
// invokes the handler inside a recover boundary and marshals its results
// through the declared outputs. Every failure, including a handler panic,
// comes back as a core.SolveResult; nothing escapes to the transport.
package solve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/internal/util"
	"github.com/hupe1980/hops/logging"
	"github.com/hupe1980/hops/wire"
	"github.com/tidwall/gjson"
)

// OutcomeSuccess is the Recorder outcome of a successful solve.
const OutcomeSuccess = "success"

// Recorder observes finished solves. outcome is OutcomeSuccess or the
// failure's error code.
type Recorder interface {
	ObserveSolve(uri, outcome string, d time.Duration)
}

// Options configures an Engine.
type Options struct {
	// Logger defaults to a no-op logger.
	Logger logging.Logger
	// Recorder is optional.
	Recorder Recorder
	// NewID generates invocation ids. Defaults to random UUIDs.
	NewID func() string
}

// Engine executes solves. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	logger   logging.Logger
	recorder Recorder
	newID    func() string
}

// New creates an Engine.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		NewID: func() string { return uuid.NewString() },
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	return &Engine{
		logger:   logging.OrNoOp(opts.Logger),
		recorder: opts.Recorder,
		newID:    opts.NewID,
	}
}

const (
	// handlerBoundary stops handler panic traces at the engine's own
	// invocation frame.
	handlerBoundary = "github.com/hupe1980/hops/solve.(*Engine).invoke"
	// solveBoundary stops marshaling panic traces at the solve frame.
	solveBoundary = "github.com/hupe1980/hops/solve.(*Engine).solve"
)

type stage string

const (
	stageInputs  stage = "inputs"
	stageInvoke  stage = "invoke"
	stageOutputs stage = "outputs"
)

// Solve runs def against a raw JSON payload. The handler is not invoked
// when input marshaling fails. Solve never panics: a panic in a handler, an
// InputSpec or an OutputSpec comes back as a failed result.
func (e *Engine) Solve(ctx context.Context, def *core.Definition, payload []byte) core.SolveResult {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.ForInvocation(logging.ForComponent(e.logger, def.Name()), e.newID())
	start := time.Now()
	logger.Debug("solve.start", "uri", def.URI())

	res := e.solve(ctx, logger, def, payload)

	dur := time.Since(start)
	outcome := OutcomeSuccess
	var err error
	if !res.OK() {
		outcome = res.Err.Kind.Code()
		err = res.Err
	}
	logging.LogSolve(logger, def.URI(), dur, err, "code", outcome)
	if e.recorder != nil {
		e.recorder.ObserveSolve(def.URI(), outcome, dur)
	}
	return res
}

func (e *Engine) solve(ctx context.Context, logger logging.Logger, def *core.Definition, payload []byte) (res core.SolveResult) {
	current := stageInputs
	defer func() {
		if r := recover(); r != nil {
			res = e.recovered(logger, def, current, r)
		}
	}()

	args, err := e.prepareInputs(def, payload)
	if err != nil {
		return core.Failure(err)
	}

	current = stageInvoke
	returned, err := e.invoke(ctx, logger, def, args)
	if err != nil {
		return core.Failure(err)
	}

	current = stageOutputs
	return e.prepareOutputs(logger, def, returned)
}

// recovered converts a panic raised outside the handler call into a
// failure. It must be called directly from solve's deferred function.
func (e *Engine) recovered(logger logging.Logger, def *core.Definition, at stage, r any) core.SolveResult {
	trace := util.TrimmedStack(2, solveBoundary)
	logger.Error("solve.recovered", "stage", string(at), "panic", fmt.Sprint(r), "stack", trace)

	cause := fmt.Errorf("panic: %v", r)
	switch at {
	case stageOutputs:
		return core.FailureWithPayload(
			core.WrapError(core.KindMarshal, def.Name(), cause, "Bad outputs"),
			wire.ErrorEnvelope(fmt.Sprintf("Output marshaling failed: %v", r)),
		)
	case stageInvoke:
		return core.Failure(core.WrapError(core.KindHandler, def.Name(), cause,
			fmt.Sprintf("Exception occurred in handler:\n%v\n%s", r, trace)))
	default:
		return core.Failure(core.WrapError(core.KindMarshal, def.Name(), cause,
			fmt.Sprintf("Input marshaling failed: %v", r)))
	}
}

func (e *Engine) prepareInputs(def *core.Definition, payload []byte) ([]any, *core.Error) {
	if !gjson.ValidBytes(payload) {
		return nil, core.NewError(core.KindMarshal, def.Name(), "Invalid solve payload: not valid JSON")
	}
	values := gjson.GetBytes(payload, "values")
	if values.Exists() && values.Type != gjson.Null && !values.IsArray() {
		return nil, core.NewError(core.KindMarshal, def.Name(), "Invalid solve payload: values must be an array")
	}

	supplied := make(map[string]json.RawMessage)
	if values.IsArray() {
		for i, item := range values.Array() {
			name := item.Get("ParamName")
			if name.Type != gjson.String {
				return nil, core.NewError(core.KindMarshal, def.Name(), "Invalid solve payload: value %d has no ParamName", i)
			}
			supplied[name.String()] = json.RawMessage(item.Raw)
		}
	}

	args := make([]any, 0, def.NumInputs())
	for i := 0; i < def.NumInputs(); i++ {
		in := def.Input(i)
		raw, ok := supplied[in.Name()]
		if !ok {
			if !in.Optional() {
				return nil, core.NewError(core.KindMarshal, def.Name(), "Missing value for required input %s", in.Name())
			}
			args = append(args, in.Default())
			continue
		}
		v, err := in.FromInput(raw)
		if err != nil {
			return nil, asError(core.KindMarshal, def.Name(), err)
		}
		args = append(args, v)
	}

	if len(supplied) != def.NumInputs() {
		return nil, core.NewError(core.KindMarshal, def.Name(), "Input count does not match number of inputs for component")
	}
	return args, nil
}

func (e *Engine) invoke(ctx context.Context, logger logging.Logger, def *core.Definition, args []any) (returned []any, herr *core.Error) {
	defer func() {
		if r := recover(); r != nil {
			trace := util.TrimmedStack(1, handlerBoundary)
			herr = core.WrapError(core.KindHandler, def.Name(), fmt.Errorf("panic: %v", r),
				fmt.Sprintf("Exception occurred in handler:\n%v\n%s", r, trace))
			logger.Warn("solve.panic", "panic", fmt.Sprint(r), "stack", trace)
		}
	}()

	h := def.Handler()
	if h == nil {
		return nil, core.NewError(core.KindConfiguration, def.Name(), "component has no handler")
	}
	out, err := h.Invoke(ctx, args)
	if err != nil {
		if _, ok := core.KindOf(err); ok {
			return nil, asError(core.KindHandler, def.Name(), err)
		}
		return nil, core.WrapError(core.KindHandler, def.Name(), err, "Exception occurred in handler:\n"+err.Error())
	}
	return out, nil
}

func (e *Engine) prepareOutputs(logger logging.Logger, def *core.Definition, returned []any) core.SolveResult {
	results := normalizeResults(returned)
	if len(results) != def.NumOutputs() {
		logger.Debug("solve.bad_outputs", "returned", len(results), "declared", def.NumOutputs())
		return core.FailureWithPayload(
			core.WrapError(core.KindMarshal, def.Name(), core.ErrBadOutputs, "Bad outputs"),
			wire.ErrorEnvelope(fmt.Sprintf("Handler returned %d values for %d declared outputs", len(results), def.NumOutputs())),
		)
	}

	values := make([]any, 0, len(results))
	for i, r := range results {
		v, err := def.Output(i).ToOutput(r)
		if err != nil {
			return core.FailureWithPayload(
				core.WrapError(core.KindMarshal, def.Name(), err, "Bad outputs"),
				wire.ErrorEnvelope(err.Error()),
			)
		}
		values = append(values, v)
	}

	payload, err := wire.EncodeValues(values)
	if err != nil {
		return core.FailureWithPayload(
			core.WrapError(core.KindMarshal, def.Name(), err, "Bad outputs"),
			wire.ErrorEnvelope(err.Error()),
		)
	}
	return core.Success(payload)
}

// normalizeResults expands a single core.Tuple result. Any other single
// result stays a one element sequence.
func normalizeResults(returned []any) []any {
	if len(returned) == 1 {
		if t, ok := returned[0].(core.Tuple); ok {
			return []any(t)
		}
	}
	return returned
}

func asError(kind core.ErrorKind, component string, err error) *core.Error {
	var he *core.Error
	if errors.As(err, &he) {
		return he
	}
	return core.WrapError(kind, component, err, err.Error())
}
