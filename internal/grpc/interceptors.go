package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/metrics"
	"google.golang.org/grpc"
)

// serveInterceptor wraps every unary handler: it logs the RPC, counts
// Automation calls as served calls and maps endpoint errors onto gRPC
// status codes.
func serveInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	attrs := []any{"rpc", info.FullMethod, "duration", time.Since(start)}
	if tc := traceFromMetadata(ctx); tc.TraceParent != "" {
		attrs = append(attrs, "traceparent", tc.TraceParent)
	}

	if info.FullMethod == CallMethod {
		metrics.RecordServedCall("grpc", err)
	}
	if err != nil {
		logging.Op().Warn("rpc failed", append(attrs, "error", err)...)
		return nil, toStatus(err)
	}
	logging.Op().Log(ctx, slog.LevelDebug, "rpc served", attrs...)
	return resp, nil
}
