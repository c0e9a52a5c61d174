package server

import (
	"context"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/rpc/common"
)

// NewPipelineServerAdapter creates an adapter that maps messages to item service
// requests and runs them through the pipeline of the shard
func NewPipelineServerAdapter() IRPCServerAdapter {
	return &pipelineServerAdapterImpl{}
}

type pipelineServerAdapterImpl struct{}

func (adapter *pipelineServerAdapterImpl) Handle(ctx context.Context, req *common.Message, handler pipeline.Handler) *common.Message {
	if handler == nil {
		return common.NewErrorResponse(common.ErrCodeInternal, "handler: pipeline is nil")
	}

	// Message -> request variant
	request, err := common.MessageToRequest(req)
	if err != nil {
		return withMeta(common.NewErrorResponse(common.ErrorCodeOf(err), err.Error()), req.Meta)
	}

	// the client sends its request id in Meta
	ctx = pipeline.WithCallInfo(ctx, pipeline.CallInfo{RequestID: string(req.Meta), Origin: "rpc"})

	response, err := handler.Handle(ctx, request)
	if err != nil {
		return withMeta(common.NewErrorResponse(common.ErrorCodeOf(err), err.Error()), req.Meta)
	}

	// response variant -> Message
	resp, err := common.ResponseToMessage(response)
	if err != nil {
		return withMeta(common.NewErrorResponse(common.ErrCodeInternal, err.Error()), req.Meta)
	}
	return withMeta(resp, req.Meta)
}

// withMeta echoes the meta data of the request
func withMeta(msg *common.Message, meta []byte) *common.Message {
	msg.Meta = meta
	return msg
}
