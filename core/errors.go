package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised anywhere between registration and a
// rendered response.
type ErrorKind int

const (
	// KindConfiguration is a build-time shape mismatch (arity, types, routes).
	// It is the only kind allowed to abort startup.
	KindConfiguration ErrorKind = iota
	// KindDuplicateURI is a registration-time key collision.
	KindDuplicateURI
	// KindMarshal is a missing, extra or malformed input or output value.
	KindMarshal
	// KindHandler is a failure raised by the handler itself (error or panic).
	KindHandler
	// KindRouting is an unknown component url.
	KindRouting
	// KindMethodNotAllowed is a request using the wrong verb for a route.
	KindMethodNotAllowed
	// KindResource is a missing icon or other optional resource.
	KindResource
)

// Code returns the stable, wire friendly code of the kind.
func (k ErrorKind) Code() string {
	switch k {
	case KindConfiguration:
		return "CONFIGURATION_ERROR"
	case KindDuplicateURI:
		return "DUPLICATE_URI"
	case KindMarshal:
		return "MARSHAL_ERROR"
	case KindHandler:
		return "HANDLER_ERROR"
	case KindRouting:
		return "ROUTING_ERROR"
	case KindMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case KindResource:
		return "RESOURCE_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string { return k.Code() }

// Sentinel errors usable with errors.Is.
var (
	ErrArityMismatch    = errors.New("number of handler parameters is different from defined hops inputs")
	ErrDuplicateURI     = errors.New("uri is already registered")
	ErrRegistrySealed   = errors.New("registry is sealed")
	ErrUnknownComponent = errors.New("unknown hops component url")
	ErrBadOutputs       = errors.New("bad outputs")
)

// Error is the single error type produced by the dispatcher. Message is what
// ends up in the "errors" list of a failure envelope.
type Error struct {
	Kind      ErrorKind `json:"kind"`
	Component string    `json:"component,omitempty"`
	Message   string    `json:"message"`
	Err       error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("hops error [%s] in %s: %s", e.Kind.Code(), e.Component, e.Message)
	}
	return fmt.Sprintf("hops error [%s]: %s", e.Kind.Code(), e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates an Error with a formatted message.
func NewError(kind ErrorKind, component, format string, args ...any) *Error {
	return &Error{Kind: kind, Component: component, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error that wraps cause.
func WrapError(kind ErrorKind, component string, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Component: component, Message: message, Err: cause}
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind == k
	}
	return false
}

// KindOf returns the kind of err, and false when err is not an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind, true
	}
	return 0, false
}
