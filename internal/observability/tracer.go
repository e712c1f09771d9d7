package observability

import (
	"context"

	"github.com/oriys/oapi/internal/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for call spans
var (
	AttrHandle    = attribute.Key("oapi.handle")
	AttrMethod    = attribute.Key("oapi.method")
	AttrStatus    = attribute.Key("oapi.status")
	AttrCallID    = attribute.Key("oapi.call_id")
	AttrArity     = attribute.Key("oapi.arity")
	AttrFilled    = attribute.Key("oapi.filled")
	AttrPhase     = attribute.Key("oapi.phase")
	AttrTransport = attribute.Key("oapi.transport")
)

// StartCall starts the client span of one bridge call, named after the
// method ("cPointObj.AddCartesian").
func StartCall(ctx context.Context, handle, method, callID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, transport.Suffix(handle)+"."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrHandle.String(handle),
			AttrMethod.String(method),
			AttrCallID.String(callID),
		),
	)
}

// StartServe starts the server span for a call received by a hosted
// endpoint over via ("wire", "grpc").
func StartServe(ctx context.Context, via string, call *transport.Call) (context.Context, trace.Span) {
	return Tracer().Start(ctx, via+" "+call.Component()+"."+call.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			AttrTransport.String(via),
			AttrHandle.String(call.Handle),
			AttrMethod.String(call.Method),
			AttrCallID.String(call.ID),
		),
	)
}

// EndCall records the outcome of a call and ends span. A nonzero status is
// a result, not a span error.
func EndCall(span trace.Span, status int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(AttrStatus.Int(status))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
