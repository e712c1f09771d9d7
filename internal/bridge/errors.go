package bridge

import (
	"errors"
	"fmt"

	"github.com/oriys/oapi/internal/transport"
)

// Contract errors. They indicate a mismatch between the caller, the
// catalog and the endpoint, never a logical failure of the remote method
// (that is reported through the status code).
var (
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrDirectionMismatch = errors.New("direction mismatch")
	ErrInvalidState      = errors.New("invalid cell state")
	ErrMalformedReply    = errors.New("malformed reply")
)

// Re-exported so wrapper code can match every bridge failure from one
// package.
var (
	ErrComponentUnavailable = transport.ErrComponentUnavailable
	ErrUnknownMethod        = transport.ErrUnknownMethod
)

// Phase is the step of a call in which an error occurred.
type Phase uint8

const (
	PhaseBuild  Phase = iota // resolving the method contract
	PhaseEncode              // packing arguments
	PhaseInvoke              // dispatching to the endpoint
	PhaseDecode              // copying outputs into cells
)

func (p Phase) String() string {
	switch p {
	case PhaseBuild:
		return "build"
	case PhaseEncode:
		return "encode"
	case PhaseInvoke:
		return "invoke"
	case PhaseDecode:
		return "decode"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// CallError is returned by Bridge.Call for every failed call.
type CallError struct {
	Phase  Phase
	Handle string
	Method string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s %s.%s: %v", e.Phase, e.Handle, e.Method, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// IsContract reports whether err is a contract error rather than a
// connectivity failure.
func IsContract(err error) bool {
	return errorKind(err) != "" && !errors.Is(err, transport.ErrComponentUnavailable)
}

// errorKind returns a short label for metrics, or "" for errors outside
// the bridge taxonomy.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrArityMismatch):
		return "arity"
	case errors.Is(err, ErrTypeMismatch):
		return "type"
	case errors.Is(err, ErrDirectionMismatch):
		return "direction"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrMalformedReply):
		return "malformed_reply"
	case errors.Is(err, transport.ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, transport.ErrComponentUnavailable):
		return "unavailable"
	}
	return ""
}
