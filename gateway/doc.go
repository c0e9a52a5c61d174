// Package gateway implements the HTTP gateway of kvgate.
//
// The gateway is a gin engine that decodes HTTP requests into item service
// requests, runs them through a pipeline.Handler and renders the response.
// The handler is either the shared RPC client (standalone gateway) or the
// local pipeline of a shard (gateway embedded in the server).
//
// Routes:
//
//	POST /ping       optional "message" (JSON, form or query) -> text
//	POST /get/:key   -> {"value": "..."}
//	POST /set        {"key": "...", "value": "..."} -> "set ok"
//	POST /delete     {"keys": ["..."]} -> "delete <n> items"
//	GET  /health     -> {"status": "ok"}
//	GET  /metrics    -> prometheus text format
//
// A failed call is logged and answered with status 500 and a fixed body
// ("ping error", {"value": "error"}, "set error", "delete error"). A body that
// cannot be decoded is answered with status 400 and "invalid request".
//
// Usage Example:
//
//	g, err := gateway.New(common.GatewayConfig{Listen: "127.0.0.1:10820"}, rpcClient)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer g.Close()
//	log.Fatal(g.Run())
package gateway
