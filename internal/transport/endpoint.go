// Package transport defines the values and contract shared by the bridge and
// every automation endpoint implementation (wire, gRPC, in-process stub).
package transport

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrComponentUnavailable means the endpoint, or the component a handle
	// names, could not be reached. Fatal to the call; never retried here.
	ErrComponentUnavailable = errors.New("component unavailable")
	// ErrUnknownMethod means no method with the given name exists on the
	// component.
	ErrUnknownMethod = errors.New("unknown method")
)

// Call is a named method invocation with positional arguments.
type Call struct {
	ID     string  `json:"id,omitempty"`
	Handle string  `json:"handle"`
	Method string  `json:"method"`
	Args   []Value `json:"args"`
}

// Component returns the fixed suffix of the handle ("cAreaObj" for
// "Sap2000.cAreaObj").
func (c *Call) Component() string {
	return Suffix(c.Handle)
}

// Reply carries the status code and the argument slots after the call.
// Args is either empty (nothing written back) or has one entry per sent
// argument; unwritten slots hold an invalid Value.
type Reply struct {
	Status int32   `json:"status"`
	Args   []Value `json:"args,omitempty"`
}

// Endpoint executes calls against the automation server.
type Endpoint interface {
	Invoke(ctx context.Context, call *Call) (*Reply, error)
}

// Connection is an Endpoint with an explicit lifecycle owned by the caller.
type Connection interface {
	Endpoint
	Open(ctx context.Context) error
	Close() error
}

// EndpointFunc adapts a function to the Endpoint interface.
type EndpointFunc func(ctx context.Context, call *Call) (*Reply, error)

func (f EndpointFunc) Invoke(ctx context.Context, call *Call) (*Reply, error) {
	return f(ctx, call)
}

// Suffix returns the part of a handle after the last dot.
func Suffix(handle string) string {
	if i := strings.LastIndexByte(handle, '.'); i >= 0 {
		return handle[i+1:]
	}
	return handle
}
