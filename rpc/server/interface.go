package server

import (
	"context"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/rpc/common"
)

// IRPCServerAdapter connects the wire protocol to the pipeline of a shard.
// Handle never returns nil and never returns an error: failures are encoded
// as an error message carrying a common.ErrorCode.
type IRPCServerAdapter interface {
	Handle(ctx context.Context, req *common.Message, handler pipeline.Handler) (resp *common.Message)
}
