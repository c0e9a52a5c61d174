package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/serializer"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

var (
	// ErrTransport wraps every failure below the pipeline: serialization, connection and timeouts
	ErrTransport = errors.New("transport error")
	// ErrUnexpectedMessage is returned if the server answers with a different message type
	ErrUnexpectedMessage = errors.New("unexpected message type")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	shardId    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used by the RPC client to send requests
// It takes a context, a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
func (a *rpcClientAdapter) invokeRPCRequest(ctx context.Context, req *common.Message) (*common.Message, error) {
	// propagate the request id
	if info, ok := pipeline.CallInfoFrom(ctx); ok && info.RequestID != "" {
		req.Meta = []byte(info.RequestID)
	}

	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize request: %v", ErrTransport, err)
	}

	respBytes, err := a.transport.Send(a.shardId, reqBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("%w: deserialize response: %v", ErrTransport, err)
	}

	// Check if the response is an error response
	if err := common.ErrorFromMessage(resp); err != nil {
		return nil, err
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("%w: %s, expected %s", ErrUnexpectedMessage, resp.MsgType, req.MsgType)
	}

	return resp, nil
}
