package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// IdentityServiceName is the fully qualified gRPC service name.
const IdentityServiceName = "chatserver.v1.Identity"

// Full method names, as seen by interceptors.
const (
	MethodWhoAmI = "/" + IdentityServiceName + "/WhoAmI"
	MethodSignin = "/" + IdentityServiceName + "/Signin"
)

// IdentityServer is the server API of chatserver.v1.Identity. Messages are
// well-known protobuf types so no generated code is needed.
type IdentityServer interface {
	// WhoAmI returns the verified claims of the caller.
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// Signin takes {"email","password"} and returns {"user_id","token"}.
	Signin(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func _Identity_WhoAmI_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).WhoAmI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodWhoAmI}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Identity_Signin_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).Signin(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodSignin}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).Signin(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// IdentityServiceDesc describes chatserver.v1.Identity for grpc.Server.
var IdentityServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "WhoAmI", Handler: _Identity_WhoAmI_Handler},
		{MethodName: "Signin", Handler: _Identity_Signin_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chatserver/v1/identity.proto",
}
