// Package logging provides a minimal logging interface and adapters for Hops.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the registry, router and solve engine use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - HopsLogger with component / invocation context and solve helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	h := hops.New(func(o *hops.Options) { o.Logger = logger })
//
// Library packages never configure the global slog default; only the
// command line entrypoint does.
package logging
