// Package grpc serves and calls a transport.Endpoint over gRPC.
//
// The service is declared by hand instead of generated: both methods carry
// google.protobuf.Struct messages in the layout of wire.CallToProto and
// wire.ReplyToProto.
//
//	service Automation {
//	  rpc Call(google.protobuf.Struct) returns (google.protobuf.Struct);
//	  rpc Ping(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "oapi.v1.Automation"
	CallMethod  = "/" + ServiceName + "/Call"
	PingMethod  = "/" + ServiceName + "/Ping"
)

// AutomationServer is the server side of the Automation service.
type AutomationServer interface {
	Call(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AutomationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Call", Handler: unaryHandler(CallMethod, AutomationServer.Call)},
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, AutomationServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "oapi/v1/automation.proto",
}

type unaryFunc func(AutomationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, fn unaryFunc) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(AutomationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(srv.(AutomationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
