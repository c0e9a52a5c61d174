// Package transport defines how serialized messages travel between the RPC
// client and server of kvgate.
//
// A transport only moves bytes for a shard ID; it knows nothing about messages
// or the item service. The server side hands every request to a
// ServerHandleFunc, the client side exposes a blocking Send.
//
// Implementations:
//
//   - http: one POST per request to /{shardId}
//   - tcp, unix: framed streams on top of package base, with pooled
//     connections and many requests in flight per connection
package transport
