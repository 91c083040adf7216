package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ledger.v1.Ledger"

const (
	postEntryMethod  = "/" + ServiceName + "/PostEntry"
	getBalanceMethod = "/" + ServiceName + "/GetBalance"
)

// LedgerServer is the server API for the ledger.v1.Ledger service.
type LedgerServer interface {
	PostEntry(ctx context.Context, req *PostEntryRequest) (*PostEntryResponse, error)
	GetBalance(ctx context.Context, req *GetBalanceRequest) (*GetBalanceResponse, error)
}

// RegisterLedgerServer registers srv on s.
func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&ledgerServiceDesc, srv)
}

var ledgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PostEntry", Handler: postEntryHandler},
		{MethodName: "GetBalance", Handler: getBalanceHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}

func postEntryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PostEntryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServer).PostEntry(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: postEntryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServer).PostEntry(ctx, req.(*PostEntryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getBalanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetBalanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServer).GetBalance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getBalanceMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServer).GetBalance(ctx, req.(*GetBalanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}
