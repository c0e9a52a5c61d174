package client

import (
	"context"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/lib/service"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/serializer"
	"github.com/ValentinKolb/kvgate/rpc/transport"
)

// RPCClient forwards item service requests to a remote shard.
// It implements pipeline.Handler, so it can be used wherever a local pipeline is expected.
type RPCClient struct {
	rpcClientAdapter
}

// NewRPCClient creates a new RPC client and connects the transport
// The function takes a shard ID, a config, a transport and a serializer as parameters
//
// Usage:
//
//	c, err := client.NewRPCClient(100, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	resp, err := c.GetItem(ctx, "a")
func NewRPCClient(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &RPCClient{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// Handle implements pipeline.Handler
func (c *RPCClient) Handle(ctx context.Context, req pipeline.Request) (pipeline.Response, error) {
	msg, err := common.RequestToMessage(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.invokeRPCRequest(ctx, msg)
	if err != nil {
		Logger.Debugf("%s request to shard %d failed: %v", req.Method(), c.shardId, err)
		return nil, err
	}

	return common.MessageToResponse(resp)
}

// Close closes the transport
func (c *RPCClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Typed helpers
// --------------------------------------------------------------------------

// Ping sends a ping, a nil message is rejected by the server
func (c *RPCClient) Ping(ctx context.Context, message *string) (string, error) {
	resp, err := pipeline.Call[*service.PingResponse](ctx, c, &service.PingRequest{Message: message})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// GetItem returns the value of key, found is false if the key does not exist
func (c *RPCClient) GetItem(ctx context.Context, key string) (value string, found bool, err error) {
	resp, err := pipeline.Call[*service.GetItemResponse](ctx, c, &service.GetItemRequest{Key: key})
	if err != nil {
		return "", false, err
	}
	return resp.Value, resp.Found, nil
}

// SetItem upserts a record and returns the acknowledgement of the server
func (c *RPCClient) SetItem(ctx context.Context, key, value string) (string, error) {
	resp, err := pipeline.Call[*service.SetItemResponse](ctx, c, &service.SetItemRequest{KV: service.KV{Key: key, Value: value}})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// DeleteItem removes keys and returns how many existed
func (c *RPCClient) DeleteItem(ctx context.Context, keys ...string) (uint64, error) {
	resp, err := pipeline.Call[*service.DeleteItemResponse](ctx, c, &service.DeleteItemRequest{Keys: keys})
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// PostItem sends the reserved post operation
func (c *RPCClient) PostItem(ctx context.Context, name string) error {
	_, err := pipeline.Call[*service.PostItemResponse](ctx, c, &service.PostItemRequest{Name: name})
	return err
}
