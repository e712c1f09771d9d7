package grpc

import (
	"context"

	"github.com/oriys/oapi/internal/observability"
	"github.com/oriys/oapi/internal/transport"
	"github.com/oriys/oapi/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server adapts a transport.Endpoint to the Automation service.
type Server struct {
	ep transport.Endpoint
}

// Register registers ep as the Automation service on s.
func Register(s *grpc.Server, ep transport.Endpoint) {
	s.RegisterService(&serviceDesc, &Server{ep: ep})
}

// NewServer returns a gRPC server with serveInterceptor installed and ep
// registered.
func NewServer(ep transport.Endpoint, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(serveInterceptor),
	}, opts...)
	s := grpc.NewServer(opts...)
	Register(s, ep)
	return s
}

// Call decodes the call, dispatches it and encodes the reply.
func (s *Server) Call(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	call, err := wire.CallFromProto(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode call: %v", err)
	}
	if call.Handle == "" || call.Method == "" {
		return nil, status.Error(codes.InvalidArgument, "handle and method are required")
	}

	ctx = observability.InjectTraceContext(ctx, traceFromMetadata(ctx))
	ctx, span := observability.StartServe(ctx, "grpc", call)

	reply, err := s.ep.Invoke(ctx, call)
	if err != nil {
		observability.EndCall(span, 0, err)
		return nil, err
	}
	if reply == nil {
		reply = &transport.Reply{}
	}
	observability.EndCall(span, int(reply.Status), nil)
	return wire.ReplyToProto(reply), nil
}

// Ping answers with an empty message.
func (s *Server) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return &structpb.Struct{}, nil
}

func traceFromMetadata(ctx context.Context) observability.TraceContext {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return observability.TraceContext{}
	}
	var tc observability.TraceContext
	if v := md.Get("traceparent"); len(v) > 0 {
		tc.TraceParent = v[0]
	}
	if v := md.Get("tracestate"); len(v) > 0 {
		tc.TraceState = v[0]
	}
	return tc
}
