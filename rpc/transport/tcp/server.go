package tcp

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/ValentinKolb/kvgate/rpc/transport/base"
)

const (
	defaultBufferSize = 512 * 1024 // 512 KB
)

// serverConnector implements the IServerConnector interface for TCP sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	listener, err := net.Listen("tcp", strings.TrimPrefix(config.Transport.Endpoint, "tcp://"))
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %w", err)
	}

	return listener, nil
}

func (c *serverConnector) UpgradeConnection(conn net.Conn, config common.ServerConfig) error {
	return upgradeTCPConn(conn, config.Transport.TCPConf, config.Transport.SocketConf)
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPDefaultServerTransport creates a new TCP server transport with default buffer size
func NewTCPDefaultServerTransport() transport.IRPCServerTransport {
	return NewTCPServerTransport(defaultBufferSize)
}

// NewTCPServerTransport creates a new TCP server transport with specified buffer size
func NewTCPServerTransport(bufferSize int) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, bufferSize)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// upgradeTCPConn applies performance optimizations to a TCP connection
// using configuration values from TCPConf and SocketConf
func upgradeTCPConn(conn net.Conn, tcpConf common.TCPConf, socketConf common.SocketConf) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := tcpConn.SetNoDelay(tcpConf.TCPNoDelay); err != nil {
		return err
	}

	if socketConf.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(socketConf.WriteBufferSize); err != nil {
			return err
		}
	}

	if socketConf.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(socketConf.ReadBufferSize); err != nil {
			return err
		}
	}

	if tcpConf.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(tcpConf.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}

	// negative values keep the os default
	if tcpConf.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(tcpConf.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}
