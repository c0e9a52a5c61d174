package transport

import (
	"github.com/ValentinKolb/kvgate/rpc/common"
)

// ServerHandleFunc answers one request for a shard.
// The transport calls it concurrently; the returned bytes are sent back as is.
type ServerHandleFunc func(shardId uint64, req []byte) (resp []byte)

// IRPCServerTransport receives serialized requests and hands them to the registered handler
type IRPCServerTransport interface {
	// RegisterHandler sets the handler, it must be called before Listen
	RegisterHandler(handler ServerHandleFunc)
	// Listen accepts requests on config.Transport.Endpoint until Close is called.
	// It returns nil if it was stopped by Close.
	Listen(config common.ServerConfig) error
	// Close stops accepting requests and closes the listener and open connections
	Close() error
}

// IRPCClientTransport sends serialized requests to one or more server endpoints
type IRPCClientTransport interface {
	// Connect prepares the connections to config.Transport.Endpoints
	Connect(config common.ClientConfig) error
	// Send delivers req to shardId and waits for the answer, retrying as configured
	Send(shardId uint64, req []byte) (resp []byte, err error)
	// Close releases all connections
	Close() error
}
