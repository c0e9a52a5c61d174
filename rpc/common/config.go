package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared transport settings
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings for tcp and unix connections (0 = os default)
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds tcp specific connection settings
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int // -1 = os default
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the settings of a server transport
type ServerTransportConfig struct {
	Endpoint       string
	WorkersPerConn int
	BufferSize     int
	SocketConf     SocketConf
	TCPConf        TCPConf
}

// ServerConfig holds all configuration parameters for the RPC server.
type ServerConfig struct {
	// ids of the shards this server serves, each with its own store
	Shards []uint64

	// ordered names of the pipeline layers (outermost first)
	Layers []string

	// read / write timeout of the transport
	TimeoutSecond int64

	// Logging configuration
	LogLevel string

	Transport ServerTransportConfig
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder
	addSection, addField := sectionPrinter(&sb)

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(c.Transport.WorkersPerConn))
	if c.Transport.BufferSize > 0 {
		addField("Buffer Size", fmt.Sprintf("%d bytes", c.Transport.BufferSize))
	}

	// Pipeline
	addSection("Pipeline")
	addField("Layers", strings.Join(c.Layers, " -> "))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Shards
	addSection("Shards")
	for _, shard := range c.Shards {
		addField(strconv.FormatUint(shard, 10), "local store")
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the settings of a client transport
type ClientTransportConfig struct {
	Endpoints              []string
	RetryCount             int
	ConnectionsPerEndpoint int
	SocketConf             SocketConf
	TCPConf                TCPConf
}

type ClientConfig struct {
	TimeoutSecond int64
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder
	addSection, addField := sectionPrinter(&sb)

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(max(1, c.Transport.ConnectionsPerEndpoint)))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// HTTP gateway configuration struct
// --------------------------------------------------------------------------

// GatewayConfig holds the settings of the HTTP gateway
type GatewayConfig struct {
	// address the gateway listens on, e.g. 127.0.0.1:10820
	Listen string
	// shard the gateway forwards to (standalone mode only)
	ShardID uint64
	// ordered names of the gateway-side pipeline layers
	Layers []string
	// Logging configuration, gin runs in debug mode if set to "debug"
	LogLevel string
}

// String returns a formatted string representation of the gateway configuration
func (c *GatewayConfig) String() string {
	var sb strings.Builder
	addSection, addField := sectionPrinter(&sb)

	addSection("HTTP Gateway")
	addField("Listen", c.Listen)
	addField("Shard", strconv.FormatUint(c.ShardID, 10))
	addField("Layers", strings.Join(c.Layers, " -> "))
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// sectionPrinter returns helper functions for consistent formatting
func sectionPrinter(sb *strings.Builder) (func(title string), func(name, value string)) {
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
	}

	return addSection, addField
}
