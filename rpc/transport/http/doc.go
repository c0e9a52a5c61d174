// Package http provides an RPC transport that sends every request as an HTTP
// POST to /{shardId} with the serialized message as body.
//
// The client accepts endpoints as URLs or plain host:port, picks them round
// robin and retries failed requests. Any status other than 200 counts as a
// failure. The server logs requests at debug level only.
//
// This transport is simpler to route through existing HTTP infrastructure
// than tcp or unix, at the cost of one HTTP exchange per request.
package http
