package wire

import (
	"errors"
	"fmt"

	"github.com/oriys/oapi/internal/observability"
	"github.com/oriys/oapi/internal/transport"
)

// MsgType identifies the payload of an Envelope.
type MsgType string

const (
	MsgCall  MsgType = "call"
	MsgReply MsgType = "reply"
	MsgPing  MsgType = "ping"
	MsgPong  MsgType = "pong"
	MsgError MsgType = "error"
)

// Error codes carried in MsgError envelopes.
const (
	CodeUnavailable   = "component_unavailable"
	CodeUnknownMethod = "unknown_method"
	CodeBadRequest    = "bad_request"
	CodeInternal      = "internal"
)

// Envelope is the unit exchanged on the wire. ID correlates a call with its
// reply or error; pings carry an id too.
type Envelope struct {
	Type  MsgType                    `json:"type"`
	ID    string                     `json:"id,omitempty"`
	Call  *transport.Call            `json:"call,omitempty"`
	Reply *transport.Reply           `json:"reply,omitempty"`
	Error *ErrorBody                 `json:"error,omitempty"`
	Trace observability.TraceContext `json:"trace"`
}

// ErrorBody describes a failed call.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// RemoteError is an error reported by the serving side with a code that
// has no local sentinel.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "remote " + e.Code
	}
	return fmt.Sprintf("remote %s: %s", e.Code, e.Message)
}

// ErrorCode maps an endpoint error to its wire code.
func ErrorCode(err error) string {
	var re *RemoteError
	switch {
	case errors.Is(err, transport.ErrComponentUnavailable):
		return CodeUnavailable
	case errors.Is(err, transport.ErrUnknownMethod):
		return CodeUnknownMethod
	case errors.As(err, &re):
		return re.Code
	}
	return CodeInternal
}

// Err turns an error body back into an error matching the local sentinels.
func (b *ErrorBody) Err() error {
	switch b.Code {
	case CodeUnavailable:
		return fmt.Errorf("%w: %s", transport.ErrComponentUnavailable, b.Message)
	case CodeUnknownMethod:
		return fmt.Errorf("%w: %s", transport.ErrUnknownMethod, b.Message)
	}
	return &RemoteError{Code: b.Code, Message: b.Message}
}

func errorEnvelope(id string, err error) *Envelope {
	return &Envelope{
		Type:  MsgError,
		ID:    id,
		Error: &ErrorBody{Code: ErrorCode(err), Message: err.Error()},
	}
}
