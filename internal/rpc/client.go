package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls ledger.v1.Ledger over an existing connection using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) PostEntry(ctx context.Context, req *PostEntryRequest, opts ...grpc.CallOption) (*PostEntryResponse, error) {
	out := new(PostEntryResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, postEntryMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBalance(ctx context.Context, req *GetBalanceRequest, opts ...grpc.CallOption) (*GetBalanceResponse, error) {
	out := new(GetBalanceResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, getBalanceMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
