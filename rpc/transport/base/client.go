package base

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

var (
	// ErrNoConnection is returned if no connection is available for a request
	ErrNoConnection = errors.New("no active connections available")
	// ErrTimeout is returned if no response arrived within the configured timeout
	ErrTimeout = errors.New("request timed out")
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to endpoint, a timeout of 0 means no timeout
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// clientConnection represents a single net connection
type clientConnection struct {
	conn         net.Conn
	endpoint     string
	stopCh       chan struct{} // Close signal for the reader goroutine
	requestChans *xsync.MapOf[uint64, chan responseResult]
	connMu       sync.Mutex // Protects the connection itself
	parent       *clientTransport
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex uint64 // Atomic counter for Round Robin
	nextRequestID uint64 // Atomic counter for unique request IDs
	stopping      atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector:     connector,
		nextRequestID: 1, // Start from 1
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Close all existing connections
	t.closeConnections()

	t.config = config
	t.stopping.Store(false)

	connectionsPerEP := max(config.Transport.ConnectionsPerEndpoint, 1)
	connections := make([]*clientConnection, 0, len(config.Transport.Endpoints)*connectionsPerEP)

	for _, endpoint := range config.Transport.Endpoints {
		for i := 1; i <= connectionsPerEP; i++ {
			conn, err := t.open(endpoint)
			if err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i, connectionsPerEP, err)
				continue
			}
			connections = append(connections, conn)
		}
	}

	if len(connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	Logger.Infof("Connected to %d out of %d connections to %d endpoints using %s transport",
		len(connections), len(config.Transport.Endpoints)*connectionsPerEP, len(config.Transport.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(shardId uint64, req []byte) (resp []byte, err error) {
	requestID := atomic.AddUint64(&t.nextRequestID, 1)
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second
	attempts := max(t.config.Transport.RetryCount, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff(attempt))
		}

		conn := t.getNextConnection()
		if conn == nil {
			return nil, ErrNoConnection
		}

		resp, lastErr = conn.roundTrip(shardId, requestID, req, timeout)
		if lastErr == nil {
			return resp, nil
		}
		Logger.Debugf("Request %d attempt %d/%d failed: %v", requestID, attempt+1, attempts, lastErr)
	}

	return nil, fmt.Errorf("failed to send request after %d attempts: %w", attempts, lastErr)
}

func (t *clientTransport) Close() error {
	t.stopping.Store(true)
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// open dials endpoint and starts the response reader of the new connection
func (t *clientTransport) open(endpoint string) (*clientConnection, error) {
	c := &clientConnection{
		endpoint:     endpoint,
		stopCh:       make(chan struct{}),
		requestChans: xsync.NewMapOf[uint64, chan responseResult](),
		parent:       t,
	}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	go c.readResponses()
	return c, nil
}

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}

	// optimize for single connection
	if len(t.connections) == 1 {
		return t.connections[0]
	}
	index := atomic.AddUint64(&t.nextConnIndex, 1) % uint64(len(t.connections))
	return t.connections[index]
}

// closeConnections closes all active connections
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, conn := range t.connections {
		// Signal reader goroutine to stop
		close(conn.stopCh)

		conn.connMu.Lock()
		if conn.conn != nil {
			_ = conn.conn.Close()
		}
		conn.connMu.Unlock()
	}

	t.connections = nil
}

// backoff returns the pause before retry attempt n (n >= 1):
// 50ms doubled per attempt with +-10% jitter
func backoff(n int) time.Duration {
	base := float64(50*time.Millisecond) * float64(uint64(1)<<min(n-1, 10))
	return time.Duration(base * (0.9 + 0.2*rand.Float64()))
}

// roundTrip writes one frame and waits for the matching response, a timeout of 0 waits forever
func (c *clientConnection) roundTrip(shardId, requestID uint64, req []byte, timeout time.Duration) ([]byte, error) {
	respCh := make(chan responseResult, 1)
	c.requestChans.Store(requestID, respCh)
	defer c.requestChans.Delete(requestID)

	if err := c.write(shardId, requestID, req, timeout); err != nil {
		return nil, err
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case result := <-respCh:
		return result.data, result.err
	case <-expired:
		return nil, ErrTimeout
	}
}

// write sends a frame while holding the connection lock
func (c *clientConnection) write(shardId, requestID uint64, req []byte, timeout time.Duration) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("connection to %s is closed", c.endpoint)
	}
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return writeFrame(c.conn, shardId, requestID, req)
}

// readResponses reads responses in a loop and distributes them to waiting requests
func (c *clientConnection) readResponses() {
	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		// A nil buffer makes readFrame allocate, the data is handed to another goroutine
		shardID, requestID, data, err := readFrame(conn, nil)

		if err != nil {
			select {
			case <-c.stopCh:
				return
			default:
			}

			// The stream is broken, fail everything that is waiting on this connection
			c.failPending(fmt.Errorf("error reading response: %w", err))

			if c.parent.stopping.Load() {
				return
			}

			Logger.Warningf("Connection to %s lost (%v), reconnecting", c.endpoint, err)
			if err := c.reconnect(); err != nil {
				Logger.Errorf("Failed to reconnect to %s: %v", c.endpoint, err)
				return
			}
			continue
		}

		if respCh, found := c.requestChans.Load(requestID); found {
			respCh <- responseResult{data, nil}
		} else {
			// the request may have timed out already
			Logger.Warningf("Received response for unknown request ID %d with shard ID %d", requestID, shardID)
		}
	}
}

// failPending sends err to all requests waiting on this connection
func (c *clientConnection) failPending(err error) {
	c.requestChans.Range(func(_ uint64, respCh chan responseResult) bool {
		select {
		case respCh <- responseResult{nil, err}:
		default:
		}
		return true
	})
}

// reconnect establishes or restores a connection to the endpoint
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Close the old connection if it exists
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	conn, err := c.parent.connector.Connect(c.endpoint, time.Duration(c.parent.config.TimeoutSecond)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", c.endpoint, err)
	}

	c.conn = conn
	return nil
}
