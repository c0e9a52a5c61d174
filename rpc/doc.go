// Package rpc provides the remote procedure call layer of kvgate. It exposes
// the item service of every shard to clients across process and network
// boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: RPC client that implements pipeline.Handler, allowing applications
//     (e.g. the HTTP gateway) to use a remote shard like a local pipeline.
//
//   - server: RPC server that creates a store, service and pipeline per shard and
//     maps incoming messages onto them.
package rpc
