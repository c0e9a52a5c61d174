// Package common provides the data structures shared by the RPC server, the
// RPC client and the transports of kvgate.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Mapping between messages and the request/response variants of the item service
//   - Configuration structures for server, client and gateway
//   - Custom logging implementation integrated with the dragonboat logger package
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. A single struct
//     is used for every request and response; which fields are set depends on
//     the MessageType.
//
//   - MessageType: Enumeration of the operations (ping, get, set, delete, post)
//     plus the error type.
//
//   - ErrorCode / RemoteError: Error classification on the wire. A rejection
//     by the server pipeline travels as ErrCodeRejected and unwraps to
//     pipeline.ErrRejected on the client.
//
//   - ServerConfig, ClientConfig, GatewayConfig: Configuration structs with
//     printable String() representations.
//
//   - Logger: Custom logger factory that formats all named loggers the same way.
package common
