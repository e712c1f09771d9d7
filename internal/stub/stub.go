// Package stub provides a scripted in-process automation endpoint. It
// backs the bridge and wrapper tests and the `oapi serve` command.
package stub

import (
	"context"
	"fmt"
	"sync"

	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/transport"
)

// HandlerFunc computes a reply for one call.
type HandlerFunc func(ctx context.Context, call *transport.Call) (*transport.Reply, error)

// Rule describes how the stub answers one component method.
type Rule struct {
	Status int32
	// Writes maps argument positions to the values written back. Writes to
	// positions the caller did not send as mutable slots are dropped.
	Writes map[int]transport.Value
	// Handler, when set, replaces Status and Writes.
	Handler HandlerFunc
}

// Endpoint is an in-process transport.Connection answering from rules.
type Endpoint struct {
	mu          sync.Mutex
	rules       map[string]Rule
	queue       map[string][]Rule
	cat         *catalog.Catalog
	unavailable bool
	closed      bool
	calls       []transport.Call
}

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithCatalog makes every method in cat known: methods without a rule
// return status 0 and write nothing instead of failing as unknown.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(e *Endpoint) { e.cat = cat }
}

// New returns an empty stub endpoint.
func New(opts ...Option) *Endpoint {
	e := &Endpoint{
		rules: make(map[string]Rule),
		queue: make(map[string][]Rule),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func key(component, method string) string {
	return component + "." + method
}

// Set installs the standing rule for component.method.
func (e *Endpoint) Set(component, method string, r Rule) {
	e.mu.Lock()
	e.rules[key(component, method)] = r
	e.mu.Unlock()
}

// Respond is Set with a fixed status and writes.
func (e *Endpoint) Respond(component, method string, status int32, writes map[int]transport.Value) {
	e.Set(component, method, Rule{Status: status, Writes: writes})
}

// Handle is Set with a handler.
func (e *Endpoint) Handle(component, method string, fn HandlerFunc) {
	e.Set(component, method, Rule{Handler: fn})
}

// Enqueue adds a one-shot rule. Queued rules for a method are consumed in
// order before its standing rule applies.
func (e *Endpoint) Enqueue(component, method string, r Rule) {
	e.mu.Lock()
	k := key(component, method)
	e.queue[k] = append(e.queue[k], r)
	e.mu.Unlock()
}

// SetUnavailable makes every subsequent call fail with
// transport.ErrComponentUnavailable until reset.
func (e *Endpoint) SetUnavailable(v bool) {
	e.mu.Lock()
	e.unavailable = v
	e.mu.Unlock()
}

// Calls returns copies of every call received so far.
func (e *Endpoint) Calls() []transport.Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]transport.Call, len(e.calls))
	copy(out, e.calls)
	return out
}

// LastCall returns the most recent call.
func (e *Endpoint) LastCall() (transport.Call, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return transport.Call{}, false
	}
	return e.calls[len(e.calls)-1], true
}

// Reset forgets recorded calls and queued rules.
func (e *Endpoint) Reset() {
	e.mu.Lock()
	e.calls = nil
	e.queue = make(map[string][]Rule)
	e.mu.Unlock()
}

// Open makes a closed stub usable again.
func (e *Endpoint) Open(ctx context.Context) error {
	e.mu.Lock()
	e.closed = false
	e.mu.Unlock()
	return nil
}

// Close makes later calls fail with transport.ErrComponentUnavailable.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// Invoke answers call from the matching rule.
func (e *Endpoint) Invoke(ctx context.Context, call *transport.Call) (*transport.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.calls = append(e.calls, cloneCall(call))
	if e.unavailable || e.closed {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", transport.ErrComponentUnavailable, call.Handle)
	}
	rule, ok := e.next(call)
	e.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", transport.ErrUnknownMethod, call.Handle, call.Method)
	}
	if rule.Handler != nil {
		return rule.Handler(ctx, call)
	}
	return reply(call, rule), nil
}

// next picks the rule for call. Caller holds e.mu.
func (e *Endpoint) next(call *transport.Call) (Rule, bool) {
	k := key(call.Component(), call.Method)
	if q := e.queue[k]; len(q) > 0 {
		e.queue[k] = q[1:]
		return q[0], true
	}
	if r, ok := e.rules[k]; ok {
		return r, true
	}
	if e.cat != nil {
		if _, err := e.cat.Lookup(call.Component(), call.Method); err == nil {
			return Rule{}, true
		}
	}
	return Rule{}, false
}

func reply(call *transport.Call, r Rule) *transport.Reply {
	out := &transport.Reply{Status: r.Status}
	if len(r.Writes) == 0 {
		return out
	}
	out.Args = make([]transport.Value, len(call.Args))
	for pos, v := range r.Writes {
		if pos < 0 || pos >= len(call.Args) {
			logging.Op().Debug("stub write out of range", "method", call.Method, "position", pos, "arity", len(call.Args))
			continue
		}
		if !call.Args[pos].Ref {
			logging.Op().Debug("stub write to input slot dropped", "method", call.Method, "position", pos)
			continue
		}
		w := v.Clone()
		w.Ref = true
		out.Args[pos] = w
	}
	return out
}

func cloneCall(c *transport.Call) transport.Call {
	out := *c
	out.Args = make([]transport.Value, len(c.Args))
	for i, a := range c.Args {
		out.Args[i] = a.Clone()
	}
	return out
}
