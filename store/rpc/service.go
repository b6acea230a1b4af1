package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name of the bookmark service.
const ServiceName = "babel.Bookmarks"

// BookmarksServer is the server API for the bookmark service.
type BookmarksServer interface {
	Get(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Put(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	ListHandles(*wrapperspb.BytesValue, grpc.ServerStream) error
	Count(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
}

// RegisterBookmarksServer registers srv with s.
func RegisterBookmarksServer(s grpc.ServiceRegistrar, srv BookmarksServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookmarksServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Get", Handler: getHandler},
		{MethodName: "Put", Handler: putHandler},
		{MethodName: "Count", Handler: countHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ListHandles", Handler: listHandlesHandler, ServerStreams: true},
	},
	Metadata: "babel/bookmarks.proto",
}

func getHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookmarksServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Get"}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BookmarksServer).Get(ctx, req.(*wrapperspb.BytesValue))
	})
}

func putHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookmarksServer).Put(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Put"}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BookmarksServer).Put(ctx, req.(*wrapperspb.StringValue))
	})
}

func countHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookmarksServer).Count(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Count"}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BookmarksServer).Count(ctx, req.(*emptypb.Empty))
	})
}

func listHandlesHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(wrapperspb.BytesValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(BookmarksServer).ListHandles(in, stream)
}
