// Package core provides the foundational domain types shared by the Hops
// dispatcher:
//
//   - Definition: an immutable, registered component (declared uri, derived
//     solve uri, metadata, ordered inputs/outputs and a handler reference)
//   - InputSpec / OutputSpec: the ParamSpec contract converting between wire
//     values and native values
//   - SolveResult: the success / failure outcome of one solve
//   - Error and ErrorKind: the error taxonomy carried through return values
//
// Concrete parameter codecs, registration, routing and invocation live in
// their own packages so that this one has no third-party dependencies.
package core
