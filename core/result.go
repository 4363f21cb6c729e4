package core

// Tuple lets a handler with a single return value hand back several results.
// Any other single return value is treated as a one element sequence.
type Tuple []any

// SolveResult is the outcome of one solve. A failure never escapes as a
// panic; it is always rendered to the wire error envelope.
type SolveResult struct {
	// Payload is the serialized success payload, or an optional partial
	// payload attached to a failure.
	Payload []byte
	// Err is nil on success.
	Err *Error
}

// Success creates a successful result.
func Success(payload []byte) SolveResult {
	return SolveResult{Payload: payload}
}

// Failure creates a failed result.
func Failure(err *Error) SolveResult {
	return SolveResult{Err: err}
}

// FailureWithPayload creates a failed result that keeps a partial payload.
// The rendered envelope is the payload with the message appended to its
// "errors" list.
func FailureWithPayload(err *Error, partial []byte) SolveResult {
	return SolveResult{Payload: partial, Err: err}
}

// OK reports whether the solve succeeded.
func (r SolveResult) OK() bool { return r.Err == nil }

// Message returns the failure message, or "" on success.
func (r SolveResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}
