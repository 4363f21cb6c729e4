// Package router classifies Hops requests and dispatches them to the
// component registry or the solve engine.
//
// The dispatcher is transport agnostic: Dispatch takes a method, a path and
// a body and returns a Response. ServeHTTP adapts it to net/http, and the
// hopsgin middleware adapts it to gin.
//
// Routes:
//
//	HEAD  any                   -> 200
//	GET   /solve                -> 405, fixed HTML page
//	GET   /                     -> 200, every component
//	GET   /<uri>                -> 200, the component registered under uri
//	GET   /<prefix>             -> 200, components whose uri has the prefix
//	POST  /<uri>                -> 405 for a declared component uri
//	POST  /<uri>/solve          -> solve
//	POST  /solve                -> legacy solve, component named by "pointer"
//
// Solve failures answer 404 with the {"values": [], "errors": [...]}
// envelope.
package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/logging"
	"github.com/hupe1980/hops/wire"
	"github.com/tidwall/gjson"
)

// ErrorPage405 is the body of every 405 response.
const ErrorPage405 = `<!doctype html>
<html lang=en>
<title>405 Method Not Allowed</title>
<h1>Method Not Allowed</h1>
<p>The method is not allowed for the requested URL.</p>`

// Content types of dispatcher responses.
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Messages of routing failures.
const (
	MsgUnknownURL          = "Unknown Hops url"
	MsgUnknownComponentURL = "Unknown Hops component url"
	MsgNothingToSolve      = "Nothing to solve on root"
)

// Components is the read side of the component registry.
type Components interface {
	LookupExact(key string) (*core.Definition, bool)
	LookupByPrefix(prefix string) []*core.Definition
	ContainsComponentURI(uri string) bool
	FindByDeclaredURI(uri string) (*core.Definition, bool)
	Definitions() []*core.Definition
	Contains(key string) bool
}

// Solver runs a solve.
type Solver interface {
	Solve(ctx context.Context, def *core.Definition, payload []byte) core.SolveResult
}

// Recorder observes dispatched requests.
type Recorder interface {
	ObserveRequest(route string, status int, d time.Duration)
}

// Response is a transport independent reply.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Options configures a Dispatcher.
type Options struct {
	Logger   logging.Logger
	Recorder Recorder
}

// Dispatcher routes requests. It is safe for concurrent use once the
// registry behind it is fully populated.
type Dispatcher struct {
	components Components
	solver     Solver
	logger     logging.Logger
	recorder   Recorder
}

// New creates a Dispatcher.
func New(components Components, solver Solver, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{
		components: components,
		solver:     solver,
		logger:     logging.OrNoOp(opts.Logger),
		recorder:   opts.Recorder,
	}
}

// Handles reports whether a request belongs to Hops: a builtin route, any
// registered key, or a GET on a prefix of at least one component uri.
// Middlewares pass other requests on to the host app.
func (d *Dispatcher) Handles(method, path string) bool {
	if core.IsBuiltinRoute(path) || d.components.Contains(path) {
		return true
	}
	return method == http.MethodGet && len(d.components.LookupByPrefix(path)) > 0
}

// Classify maps a request onto a Route.
func (d *Dispatcher) Classify(method, path string) Route {
	switch method {
	case http.MethodHead:
		return RouteHead
	case http.MethodGet:
		switch path {
		case core.SolveRoute:
			return RouteSolveGet
		case core.RootRoute:
			return RouteRoot
		default:
			return RouteQuery
		}
	case http.MethodPost:
		switch {
		case d.components.ContainsComponentURI(path):
			return RouteComponentPost
		case path == core.RootRoute:
			return RouteRootSolve
		case path == core.SolveRoute:
			return RouteLegacySolve
		default:
			return RouteSolve
		}
	default:
		return RouteUnsupportedMethod
	}
}

// Dispatch answers one request.
func (d *Dispatcher) Dispatch(ctx context.Context, method, path string, body []byte) Response {
	start := time.Now()
	route := d.Classify(method, path)
	resp := d.dispatch(ctx, route, path, body)
	dur := time.Since(start)

	logging.LogRequest(d.logger, method, path, route.String(), resp.Status, dur)
	if d.recorder != nil {
		d.recorder.ObserveRequest(route.String(), resp.Status, dur)
	}
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, route Route, path string, body []byte) Response {
	switch route {
	case RouteHead:
		return Response{Status: http.StatusOK, ContentType: ContentTypeText}
	case RouteSolveGet, RouteComponentPost, RouteUnsupportedMethod:
		return methodNotAllowed()
	case RouteRoot:
		defs := d.components.Definitions()
		if defs == nil {
			defs = []*core.Definition{}
		}
		return d.encode(defs)
	case RouteQuery:
		return d.query(path)
	case RouteRootSolve:
		d.logger.Debug("router.root_solve")
		return solveResponse(core.Failure(core.NewError(core.KindRouting, "", MsgNothingToSolve)))
	case RouteLegacySolve:
		return d.legacySolve(ctx, body)
	default:
		def, ok := d.components.LookupExact(path)
		if !ok {
			d.logger.Info("router.unknown_component", "path", path)
			return solveResponse(core.Failure(core.WrapError(core.KindRouting, "", core.ErrUnknownComponent, MsgUnknownComponentURL)))
		}
		d.logger.Info("router.solve", "component", def.Name(), "uri", path)
		return solveResponse(d.solver.Solve(ctx, def, body))
	}
}

func (d *Dispatcher) query(path string) Response {
	if def, ok := d.components.LookupExact(path); ok {
		return d.encode(def)
	}
	if defs := d.components.LookupByPrefix(path); len(defs) > 0 {
		return d.encode(defs)
	}
	d.logger.Info("router.not_found", "path", path)
	return Response{Status: http.StatusNotFound, ContentType: ContentTypeJSON, Body: wire.ErrorEnvelope(MsgUnknownURL)}
}

// legacySolve resolves the payload's pointer against declared uris only.
// Current-API solves resolve against every registry key instead.
func (d *Dispatcher) legacySolve(ctx context.Context, body []byte) Response {
	if !gjson.ValidBytes(body) {
		return solveResponse(core.Failure(core.NewError(core.KindMarshal, "", "Invalid solve payload: not valid JSON")))
	}
	pointer := gjson.GetBytes(body, "pointer")
	if pointer.Type != gjson.String {
		return solveResponse(core.Failure(core.NewError(core.KindMarshal, "", "Invalid solve payload: missing pointer")))
	}
	uri := pointer.String()
	if !strings.HasPrefix(uri, core.RootRoute) {
		uri = core.RootRoute + uri
	}
	def, ok := d.components.FindByDeclaredURI(uri)
	if !ok {
		d.logger.Info("router.unknown_component", "pointer", uri)
		return solveResponse(core.Failure(core.WrapError(core.KindRouting, "", core.ErrUnknownComponent, MsgUnknownComponentURL)))
	}
	d.logger.Info("router.legacy_solve", "component", def.Name(), "uri", uri)
	return solveResponse(d.solver.Solve(ctx, def, body))
}

func (d *Dispatcher) encode(v any) Response {
	b, err := wire.Encode(v)
	if err != nil {
		d.logger.Error("router.encode_failed", "error", err.Error())
		return Response{Status: http.StatusInternalServerError, ContentType: ContentTypeJSON, Body: wire.ErrorEnvelope(err.Error())}
	}
	return Response{Status: http.StatusOK, ContentType: ContentTypeJSON, Body: b}
}

func solveResponse(res core.SolveResult) Response {
	status := http.StatusOK
	if !res.OK() {
		status = http.StatusNotFound
	}
	return Response{Status: status, ContentType: ContentTypeJSON, Body: wire.RenderResult(res)}
}

func methodNotAllowed() Response {
	return Response{Status: http.StatusMethodNotAllowed, ContentType: ContentTypeHTML, Body: []byte(ErrorPage405)}
}
