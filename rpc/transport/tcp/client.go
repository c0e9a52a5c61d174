package tcp

import (
	"net"
	"strings"
	"time"

	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/ValentinKolb/kvgate/rpc/transport/base"
)

// clientConnector dials TCP endpoints (host:port, optionally prefixed with tcp://)
type clientConnector struct{}

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	return dialer.Dial("tcp", strings.TrimPrefix(endpoint, "tcp://"))
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	return upgradeTCPConn(conn, config.Transport.TCPConf, config.Transport.SocketConf)
}

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
