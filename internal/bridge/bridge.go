// Package bridge turns typed wrapper calls into late-bound method
// invocations on an automation endpoint and copies the endpoint's outputs
// back into caller-supplied cells.
//
// A call moves through build (contract lookup), encode, invoke and decode.
// Each step runs at most once; a failure stops the call and is reported as
// a *CallError naming the step. The endpoint's status code is returned
// verbatim and a nonzero status is not an error.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/metrics"
	"github.com/oriys/oapi/internal/observability"
	"github.com/oriys/oapi/internal/transport"
)

// Bridge dispatches calls for one API version. It holds no locks: callers
// sharing a connection serialize their calls.
type Bridge struct {
	ep      transport.Endpoint
	cat     *catalog.Catalog
	program string
	calls   *logging.Logger
	stats   *metrics.Metrics
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithCallLog sends one CallLog entry per call to l.
func WithCallLog(l *logging.Logger) Option {
	return func(b *Bridge) { b.calls = l }
}

// WithProgram overrides the program identity used to build handles.
func WithProgram(program string) Option {
	return func(b *Bridge) { b.program = program }
}

// WithMetrics records call statistics into m instead of metrics.Global().
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bridge) { b.stats = m }
}

// New returns a bridge dispatching to ep under the contracts in cat.
func New(ep transport.Endpoint, cat *catalog.Catalog, opts ...Option) *Bridge {
	b := &Bridge{
		ep:      ep,
		cat:     cat,
		program: cat.Program,
		stats:   metrics.Global(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Catalog returns the contracts the bridge encodes against.
func (b *Bridge) Catalog() *catalog.Catalog { return b.cat }

// Program returns the program identity used for handles.
func (b *Bridge) Program() string { return b.program }

// Handle returns the handle for component under the bridge's program.
func (b *Bridge) Handle(component string) Handle {
	return NewHandle(b.program, component)
}

// Call invokes method on the component h names. It returns the endpoint's
// status code; wanted cells in args are filled from the reply.
func (b *Bridge) Call(ctx context.Context, h Handle, method string, args ...Arg) (int, error) {
	callID := uuid.NewString()
	start := time.Now()

	ctx, span := observability.StartCall(ctx, h.String(), method, callID)

	entry := &logging.CallLog{
		CallID:  callID,
		TraceID: observability.GetTraceID(ctx),
		SpanID:  observability.GetSpanID(ctx),
		Handle:  h.String(),
		Method:  method,
	}

	status, err := b.call(ctx, callID, h, method, args, entry)

	entry.DurationMs = time.Since(start).Milliseconds()
	entry.Status = status

	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
		entry.Error = err.Error()
		var ce *CallError
		if errors.As(err, &ce) {
			entry.Phase = ce.Phase.String()
			span.SetAttributes(observability.AttrPhase.String(entry.Phase))
		}
		if kind := errorKind(err); kind != "" {
			metrics.RecordContractError(kind)
		}
		logging.OpForCall(callID, entry.Handle, method).Debug("call failed", "phase", entry.Phase, "error", err)
	case status != 0:
		outcome = metrics.OutcomeStatus
	}
	span.SetAttributes(
		observability.AttrArity.Int(entry.Arity),
		observability.AttrFilled.Int(entry.Filled),
	)
	observability.EndCall(span, status, err)

	b.stats.RecordCall(h.Component(), method, outcome, status, entry.Filled, entry.DurationMs)
	if b.calls != nil {
		b.calls.Log(entry)
	}
	return status, err
}

func (b *Bridge) call(ctx context.Context, callID string, h Handle, method string, args []Arg, entry *logging.CallLog) (int, error) {
	fail := func(p Phase, err error) (int, error) {
		return 0, &CallError{Phase: p, Handle: h.String(), Method: method, Err: err}
	}

	m, err := b.cat.Lookup(h.Component(), method)
	if err != nil {
		return fail(PhaseBuild, err)
	}
	if m.Deprecated {
		logging.Op().Warn("calling deprecated method", "method", m.String(), "version", b.cat.Version)
	}

	sent, err := Encode(m, args)
	if err != nil {
		return fail(PhaseEncode, err)
	}
	entry.Arity = len(sent)

	status, returned, err := b.invoke(ctx, callID, h, method, sent)
	if err != nil {
		return fail(PhaseInvoke, err)
	}

	filled, err := decode(args, sent, returned)
	entry.Filled = filled
	if err != nil {
		// The endpoint ran; its status is still reported.
		return status, &CallError{Phase: PhaseDecode, Handle: h.String(), Method: method, Err: err}
	}
	return status, nil
}

// Invoke dispatches an already-encoded argument list. It performs no
// contract checks and leaves decoding to the caller.
func (b *Bridge) Invoke(ctx context.Context, h Handle, method string, args []transport.Value) (int, []transport.Value, error) {
	return b.invoke(ctx, uuid.NewString(), h, method, args)
}

func (b *Bridge) invoke(ctx context.Context, callID string, h Handle, method string, args []transport.Value) (int, []transport.Value, error) {
	reply, err := b.ep.Invoke(ctx, &transport.Call{
		ID:     callID,
		Handle: h.String(),
		Method: method,
		Args:   args,
	})
	if err != nil {
		return 0, nil, err
	}
	if reply == nil {
		return 0, nil, ErrMalformedReply
	}
	return int(reply.Status), reply.Args, nil
}
