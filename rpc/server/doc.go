// Package server implements the RPC server of kvgate.
//
// Every configured shard owns a local store, an item service on top of it and a
// pipeline (the chain of layers named in the config) around the service. The
// server receives framed requests from the transport, looks up the shard,
// deserializes the message and lets the adapter run it through the pipeline.
//
// Key Components:
//
//   - IRPCServerAdapter: maps a common.Message to an item service request, runs it
//     through the pipeline and maps the response (or the error) back to a message.
//
//   - NewRPCServer: creates a server for the given config, transport and serializer.
//
// Usage Example:
//
//	config := common.ServerConfig{
//		Shards:        []uint64{100, 200},
//		Layers:        []string{"trace", "recovery", "metrics", "logging"},
//		TimeoutSecond: 5,
//		LogLevel:      "info",
//		Transport: common.ServerTransportConfig{
//			Endpoint:       "0.0.0.0:10818",
//			WorkersPerConn: 100,
//		},
//	}
//
//	s, err := server.NewRPCServer(config, tcp.NewTCPDefaultServerTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := s.Serve(); err != nil {
//		log.Fatalf("Server error: %v", err)
//	}
//
// Errors returned by the pipeline are sent as error messages carrying a
// common.ErrorCode, so clients can tell a rejected request from an internal
// failure.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	Serve should be called only once.
package server
