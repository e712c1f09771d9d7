package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oriys/oapi/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enable(t *testing.T) {
	t.Helper()
	require.NoError(t, Init(context.Background(), Config{
		Enabled:     true,
		Exporter:    "noop",
		ServiceName: "oapi-test",
		SampleRate:  1.0,
		APIVersion:  "v15",
		Program:     "Sap2000v15",
	}))
	t.Cleanup(func() {
		require.NoError(t, Shutdown(context.Background()))
		assert.False(t, Enabled())
	})
}

func TestDisabledTracerIsUsable(t *testing.T) {
	require.NoError(t, Init(context.Background(), Config{Enabled: false}))
	assert.False(t, Enabled())

	ctx, span := StartCall(context.Background(), "Sap2000.cPointObj", "Count", "id-1")
	EndCall(span, 0, errors.New("boom"))

	assert.Equal(t, "", GetTraceID(ctx))
	assert.True(t, ExtractTraceContext(ctx).IsZero())
}

func TestCallTracePropagatesToServer(t *testing.T) {
	enable(t)

	ctx, span := StartCall(context.Background(), "Sap2000v15.cAreaObj", "AddByCoord", "id-2")
	defer EndCall(span, 0, nil)

	traceID := GetTraceID(ctx)
	require.NotEmpty(t, traceID)
	assert.NotEmpty(t, GetSpanID(ctx))

	tc := ExtractTraceContext(ctx)
	require.False(t, tc.IsZero())
	assert.Contains(t, tc.TraceParent, traceID)

	remote := InjectTraceContext(context.Background(), tc)
	call := &transport.Call{ID: "id-2", Handle: "Sap2000v15.cAreaObj", Method: "AddByCoord"}
	_, child := StartServe(remote, "wire", call)
	defer EndCall(child, 7, nil)
	assert.Equal(t, traceID, child.SpanContext().TraceID().String())
}

func TestTraceContextCarrier(t *testing.T) {
	var tc TraceContext
	tc.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	tc.Set("baggage", "ignored")
	assert.Equal(t, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", tc.Get("traceparent"))
	assert.Equal(t, "", tc.Get("baggage"))
	assert.ElementsMatch(t, []string{"traceparent", "tracestate"}, tc.Keys())

	enable(t)
	ctx := InjectTraceContext(context.Background(), tc)
	_, span := StartServe(ctx, "grpc", &transport.Call{Handle: "Sap2000.cAnalyze", Method: "RunAnalysis"})
	defer span.End()
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", span.SpanContext().TraceID().String())
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	err := Init(context.Background(), Config{Enabled: true, Exporter: "carrier-pigeon"})
	assert.Error(t, err)
	assert.False(t, Enabled())
}

func TestHTTPMiddleware(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	enable(t)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
