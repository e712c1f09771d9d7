package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext holds the W3C trace context fields carried inside wire
// envelopes and gRPC metadata. It is a propagation.TextMapCarrier.
type TraceContext struct {
	TraceParent string `json:"traceparent,omitempty"`
	TraceState  string `json:"tracestate,omitempty"`
}

const (
	headerTraceParent = "traceparent"
	headerTraceState  = "tracestate"
)

func (tc *TraceContext) Get(key string) string {
	switch key {
	case headerTraceParent:
		return tc.TraceParent
	case headerTraceState:
		return tc.TraceState
	}
	return ""
}

// Set keeps the two W3C fields and ignores baggage.
func (tc *TraceContext) Set(key, value string) {
	switch key {
	case headerTraceParent:
		tc.TraceParent = value
	case headerTraceState:
		tc.TraceState = value
	}
}

func (tc *TraceContext) Keys() []string {
	return []string{headerTraceParent, headerTraceState}
}

// IsZero reports whether tc carries no trace.
func (tc TraceContext) IsZero() bool {
	return tc.TraceParent == ""
}

// ExtractTraceContext captures the span in ctx for sending to an endpoint.
// It is zero while tracing is disabled.
func ExtractTraceContext(ctx context.Context) TraceContext {
	var tc TraceContext
	if Enabled() {
		otel.GetTextMapPropagator().Inject(ctx, &tc)
	}
	return tc
}

// InjectTraceContext continues the caller's trace received with a call.
func InjectTraceContext(ctx context.Context, tc TraceContext) context.Context {
	if tc.IsZero() {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, &tc)
}

// GetTraceID returns the trace id of the span in ctx, or "".
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the span id of the span in ctx, or "".
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasSpanID() {
		return sc.SpanID().String()
	}
	return ""
}
