// Package registry holds the registered Hops components.
//
// Every definition is stored once and reachable under two keys: its declared
// uri (schema queries) and its solve uri (current-API solves). No two
// definitions may share a key; a collision fails the registration instead of
// overwriting the earlier component.
//
// Registration happens during startup. Seal marks the end of that phase,
// after which Register fails and lookups run on a read-only view.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/logging"
)

// Registry is an in-memory component registry. It is safe for concurrent
// use.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[string]*core.Definition
	order  []*core.Definition
	sealed bool
	logger logging.Logger
}

// Options configures a Registry.
type Options struct {
	Logger logging.Logger
}

// New creates an empty registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		byKey:  make(map[string]*core.Definition),
		logger: logging.OrNoOp(opts.Logger),
	}
}

// Register inserts def under its declared uri and its solve uri. It fails
// with a KindDuplicateURI error when either key is taken, and with a
// KindConfiguration error once the registry is sealed. A failed
// registration leaves the registry unchanged.
func (r *Registry) Register(def *core.Definition) error {
	return r.RegisterAll(def)
}

// RegisterAll registers defs as one batch. Keys are checked against the
// registry and against each other before anything is inserted, so either
// every definition is registered or none is.
func (r *Registry) RegisterAll(defs ...*core.Definition) error {
	for _, def := range defs {
		if def == nil {
			return core.NewError(core.KindConfiguration, "", "cannot register a nil definition")
		}
	}
	if len(defs) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return core.WrapError(core.KindConfiguration, defs[0].Name(), core.ErrRegistrySealed,
			fmt.Sprintf("cannot register %s after startup", defs[0].URI()))
	}
	pending := make(map[string]*core.Definition, 2*len(defs))
	for _, def := range defs {
		for _, key := range []string{def.URI(), def.SolveURI()} {
			prev, ok := r.byKey[key]
			if !ok {
				prev, ok = pending[key]
			}
			if ok {
				r.logger.Error("registry.duplicate_uri", "uri", key, "component", def.Name(), "existing", prev.Name())
				return core.WrapError(core.KindDuplicateURI, def.Name(), core.ErrDuplicateURI,
					fmt.Sprintf("uri %s of %s is already registered by %s", key, def.Name(), prev.Name()))
			}
		}
		pending[def.URI()] = def
		pending[def.SolveURI()] = def
	}

	for _, def := range defs {
		r.byKey[def.URI()] = def
		r.byKey[def.SolveURI()] = def
		r.order = append(r.order, def)
		r.logger.Debug("registry.register", "component", def.Name(), "uri", def.URI(), "solve_uri", def.SolveURI())
	}
	return nil
}

// Seal ends the registration phase. It is idempotent.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sealed {
		r.sealed = true
		r.logger.Info("registry.sealed", "components", len(r.order))
	}
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// LookupExact returns the definition registered under key, which may be
// either a declared uri or a solve uri.
func (r *Registry) LookupExact(key string) (*core.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byKey[key]
	return def, ok
}

// LookupByPrefix returns, in registration order, the definitions whose
// declared uri starts with prefix.
func (r *Registry) LookupByPrefix(prefix string) []*core.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*core.Definition
	for _, def := range r.order {
		if strings.HasPrefix(def.URI(), prefix) {
			out = append(out, def)
		}
	}
	return out
}

// ContainsComponentURI reports whether uri is the declared uri of a
// component. Solve uris do not match.
func (r *Registry) ContainsComponentURI(uri string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byKey[uri]
	return ok && def.URI() == uri
}

// FindByDeclaredURI scans the definitions for one whose declared uri equals
// uri. Legacy solve requests resolve their pointer this way.
func (r *Registry) FindByDeclaredURI(uri string) (*core.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, def := range r.order {
		if def.URI() == uri {
			return def, true
		}
	}
	return nil, false
}

// Contains reports whether key is any registered key.
func (r *Registry) Contains(key string) bool {
	_, ok := r.LookupExact(key)
	return ok
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []*core.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*core.Definition(nil), r.order...)
}

// Len returns the number of registered components (not keys).
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
