// Package pipeline provides the composable request-handling chain of kvgate.
//
// A pipeline is a Handler built from the item service and an ordered list of
// Layers. Each layer wraps the next one and may observe, reject or annotate a
// request without the service knowing about it:
//
//	h := pipeline.Chain(
//		pipeline.NewServiceHandler(service.NewItemService(lstore.NewLocalStore())),
//		pipeline.DefaultLayers(pipeline.LayerOptions{})...,
//	)
//	resp, err := pipeline.Call[*service.PingResponse](ctx, h, service.NewPingRequest("hi"))
//
// Available layers:
//
//   - TraceLayer: attaches a CallInfo with a request id to the context.
//   - RecoveryLayer: converts panics into ErrInternal.
//   - MetricsLayer: request/error counters and a duration histogram (VictoriaMetrics).
//   - LoggingLayer: logs request, result and duration, rejects pings without message.
//
// The RPC client also implements Handler, so remote and local pipelines are
// interchangeable for callers such as the HTTP gateway.
package pipeline

import "github.com/lni/dragonboat/v4/logger"

var Logger = logger.GetLogger("pipeline")
