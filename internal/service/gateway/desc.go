package gateway

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "swipematch.v1.Gateway"
	// ExecuteMethod is the full method name of the single RPC.
	ExecuteMethod = "/" + ServiceName + "/Execute"
)

// GatewayServer executes one API operation per call.
//
// Request:  {"operation": string, "args": {...}}
// Response: {"data": any} or {"error": {"kind": string, "message": string}}
type GatewayServer interface {
	Execute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Gateway service. The messages are well-known
// google.protobuf.Struct values, so no generated code is needed.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "swipematch/v1/gateway.proto",
}

// RegisterGatewayServer attaches srv to s.
func RegisterGatewayServer(s grpc.ServiceRegistrar, srv GatewayServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func executeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GatewayServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExecuteMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GatewayServer).Execute(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Call invokes Execute on conn. A nil args map sends no arguments.
func Call(ctx context.Context, conn grpc.ClientConnInterface, operation string, args map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	fields := map[string]any{"operation": operation}
	if args != nil {
		fields["args"] = args
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, ExecuteMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
