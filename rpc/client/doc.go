// Package client implements the RPC client of kvgate.
//
// The client implements pipeline.Handler: every item service request is turned
// into a common.Message, sent to a shard through the configured transport and
// the answer is turned back into the response variant. Code that works on a
// pipeline.Handler (e.g. the HTTP gateway) can therefore run against a remote
// server or a local pipeline without changes.
//
// The package focuses on:
//   - Transparent RPC access to the item service of a shard
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Errors:
//
//   - Failures of the transport or the serializer wrap ErrTransport.
//   - Errors reported by the server are *common.RemoteError values. A request
//     rejected by the server pipeline satisfies errors.Is(err, pipeline.ErrRejected).
//
// Usage Example:
//
//	config := common.ClientConfig{
//		TimeoutSecond: 5,
//		Transport: common.ClientTransportConfig{
//			Endpoints:  []string{"localhost:10818"},
//			RetryCount: 3,
//		},
//	}
//
//	c, _ := client.NewRPCClient(100, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	defer c.Close()
//
//	_, _ = c.SetItem(ctx, "mykey", "myvalue")
//	value, found, _ := c.GetItem(ctx, "mykey")
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	The client is thread-safe and meant to be shared by all callers of a process.
package client
