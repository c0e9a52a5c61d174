package unix

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/ValentinKolb/kvgate/rpc/transport/base"
)

const (
	defaultBufferSize = 64 * 1024 // 64 KB
)

// serverConnector implements the IServerConnector interface for Unix sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "unix"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	socketPath := strings.TrimPrefix(config.Transport.Endpoint, "unix://")

	// Remove existing socket file if it exists
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Unix socket: %w", err)
	}

	return listener, nil
}

func (c *serverConnector) UpgradeConnection(conn net.Conn, config common.ServerConfig) error {
	return upgradeUnixConn(conn, config.Transport.SocketConf)
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixDefaultServerTransport creates a new Unix server transport with default buffer size
func NewUnixDefaultServerTransport() transport.IRPCServerTransport {
	return NewUnixServerTransport(defaultBufferSize)
}

// NewUnixServerTransport creates a new Unix server transport with specified buffer size
func NewUnixServerTransport(bufferSize int) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, bufferSize)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// upgradeUnixConn applies the socket buffer sizes to a unix connection
func upgradeUnixConn(conn net.Conn, socketConf common.SocketConf) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil
	}

	if socketConf.WriteBufferSize > 0 {
		if err := unixConn.SetWriteBuffer(socketConf.WriteBufferSize); err != nil {
			return err
		}
	}
	if socketConf.ReadBufferSize > 0 {
		if err := unixConn.SetReadBuffer(socketConf.ReadBufferSize); err != nil {
			return err
		}
	}
	return nil
}
