// Package hops exposes Go functions as Hops components that a Grasshopper
// host can discover and solve over HTTP. Most applications interact with
// this package by:
//  1. Creating a Hops instance via New()
//  2. Registering components (Component, or LoadManifests for HCL manifests)
//  3. Serving it directly (it is an http.Handler) or mounting Middleware()
//     on a gin engine next to their own routes
//
// Registration happens at startup. The first request seals the registry;
// components registered after that are rejected.
package hops

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/hops/component"
	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/logging"
	"github.com/hupe1980/hops/manifest"
	"github.com/hupe1980/hops/middleware/hopsgin"
	"github.com/hupe1980/hops/observability"
	"github.com/hupe1980/hops/registry"
	"github.com/hupe1980/hops/router"
	"github.com/hupe1980/hops/solve"
)

// Options configures the Hops instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// ResourceDir resolves relative icon paths after the working directory.
	ResourceDir string

	// DefaultCategory and DefaultSubcategory apply to components that do
	// not declare their own.
	DefaultCategory    string
	DefaultSubcategory string

	// Metrics, when set, records solves and requests.
	Metrics *observability.Metrics
}

// Hops is the façade aggregating registry, solve engine and dispatcher.
type Hops struct {
	opts       Options
	registry   *registry.Registry
	dispatcher *router.Dispatcher
	seal       sync.Once
}

// New creates a Hops instance with an empty registry.
func New(optFns ...func(o *Options)) *Hops {
	opts := Options{
		Logger:             logging.NoOpLogger{},
		DefaultCategory:    core.DefaultCategory,
		DefaultSubcategory: core.DefaultSubcategory,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	reg := registry.New(func(o *registry.Options) { o.Logger = opts.Logger })
	engine := solve.New(func(o *solve.Options) {
		o.Logger = opts.Logger
		if opts.Metrics != nil {
			o.Recorder = opts.Metrics
		}
	})
	d := router.New(reg, engine, func(o *router.Options) {
		o.Logger = opts.Logger
		if opts.Metrics != nil {
			o.Recorder = opts.Metrics
		}
	})

	return &Hops{opts: opts, registry: reg, dispatcher: d}
}

// Component builds a component from fn and registers it.
func (h *Hops) Component(fn any, optFns ...func(o *component.Options)) (*core.Definition, error) {
	def, err := component.Build(fn, h.componentDefaults(optFns)...)
	if err != nil {
		return nil, err
	}
	if err := h.registry.Register(def); err != nil {
		return nil, err
	}
	return def, nil
}

// MustComponent is like Component but panics on error. It is meant for
// startup code where a misdeclared component should stop the process.
func (h *Hops) MustComponent(fn any, optFns ...func(o *component.Options)) *core.Definition {
	def, err := h.Component(fn, optFns...)
	if err != nil {
		panic(err)
	}
	return def
}

// LoadManifests registers every component declared in the HCL manifests at
// paths, binding them to handlers by name. Nothing is registered when any
// declaration fails to build or any uri collides.
func (h *Hops) LoadManifests(handlers map[string]any, paths ...string) ([]*core.Definition, error) {
	m, err := manifest.Load(paths...)
	if err != nil {
		return nil, core.WrapError(core.KindConfiguration, "", err, err.Error())
	}
	defs, err := m.Build(handlers, h.componentDefaults(nil)...)
	if err != nil {
		return nil, err
	}
	if err := h.registry.RegisterAll(defs...); err != nil {
		return nil, err
	}
	return defs, nil
}

// Registry returns the component registry.
func (h *Hops) Registry() *registry.Registry { return h.registry }

// Dispatcher seals the registry and returns the request dispatcher.
func (h *Hops) Dispatcher() *router.Dispatcher {
	h.seal.Do(func() {
		h.registry.Seal()
		if h.opts.Metrics != nil {
			h.opts.Metrics.SetComponents(h.registry.Len())
		}
	})
	return h.dispatcher
}

// Handles reports whether a request belongs to Hops.
func (h *Hops) Handles(method, path string) bool { return h.Dispatcher().Handles(method, path) }

// Dispatch answers one request.
func (h *Hops) Dispatch(ctx context.Context, method, path string, body []byte) router.Response {
	return h.Dispatcher().Dispatch(ctx, method, path, body)
}

// ServeHTTP implements http.Handler.
func (h *Hops) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Dispatcher().ServeHTTP(w, r)
}

// Middleware returns a gin middleware that serves Hops paths and passes
// every other request on.
func (h *Hops) Middleware() gin.HandlerFunc {
	return hopsgin.Middleware(h.Dispatcher())
}

func (h *Hops) componentDefaults(optFns []func(o *component.Options)) []func(o *component.Options) {
	all := make([]func(o *component.Options), 0, len(optFns)+1)
	all = append(all, func(o *component.Options) {
		o.Category = h.opts.DefaultCategory
		o.Subcategory = h.opts.DefaultSubcategory
		o.ResourceDir = h.opts.ResourceDir
		o.Logger = h.opts.Logger
	})
	return append(all, optFns...)
}
