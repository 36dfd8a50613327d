package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "boomerang.Issuance"

// IssuanceServer is the issuer side of the two-round protocol. Begin takes
// an encoded M1 and returns a session envelope around M2; Finish takes a
// session envelope around M3 and returns M4.
type IssuanceServer interface {
	Begin(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Finish(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

func RegisterIssuanceServer(s grpc.ServiceRegistrar, srv IssuanceServer) {
	s.RegisterService(&issuanceServiceDesc, srv)
}

func beginHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IssuanceServer).Begin(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Begin"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IssuanceServer).Begin(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func finishHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IssuanceServer).Finish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Finish"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IssuanceServer).Finish(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

var issuanceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IssuanceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Begin", Handler: beginHandler},
		{MethodName: "Finish", Handler: finishHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "boomerang/issuance.proto",
}

type IssuanceClient interface {
	Begin(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Finish(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type issuanceClient struct {
	cc grpc.ClientConnInterface
}

func NewIssuanceClient(cc grpc.ClientConnInterface) IssuanceClient {
	return &issuanceClient{cc: cc}
}

func (c *issuanceClient) Begin(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Begin", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *issuanceClient) Finish(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Finish", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
