// Package base implements the framed stream transport shared by the tcp and
// unix transports. The protocol specific parts (dialing, listening, socket
// options) are provided by an IClientConnector or IServerConnector.
//
// Every request and response is a frame with a 20 byte header:
//
//	| shardId uint64 | requestId uint64 | length uint32 | payload |
//
// The request ID correlates responses with requests, so a connection carries
// many requests at the same time and responses may arrive out of order.
//
// Client:
//
//   - ConnectionsPerEndpoint connections are opened per endpoint and used round robin.
//   - A reader goroutine per connection delivers responses to the waiting
//     requests. If the connection breaks, all waiting requests fail and the
//     connection is re-established.
//   - Failed requests are retried RetryCount times with exponential backoff.
//
// Server:
//
//   - Every connection is served by its own goroutine; at most WorkersPerConn
//     requests of a connection are handled in parallel.
//   - Read buffers come from a sync.Pool sized by the transport default or
//     config.Transport.BufferSize.
//   - Close stops the accept loop and closes all open connections.
package base
