package base

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector         IServerConnector
	handler           transport.ServerHandleFunc
	config            common.ServerConfig
	listener          net.Listener
	listenerMu        sync.Mutex
	conns             *xsync.MapOf[net.Conn, struct{}]
	closed            atomic.Bool
	bufferPool        *sync.Pool
	bufferSize        int
	maxWorkersPerConn int
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with per-connection worker pool.
// bufferSize is the default size of the pooled read buffers, config.Transport.BufferSize overrides it.
func NewBaseServerTransport(connector IServerConnector, bufferSize int) transport.IRPCServerTransport {
	return &serverTransport{
		connector:  connector,
		bufferSize: bufferSize,
		conns:      xsync.NewMapOf[net.Conn, struct{}](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	if config.Transport.BufferSize > 0 {
		t.bufferSize = config.Transport.BufferSize
	}
	bufferSize := t.bufferSize
	t.bufferPool = &sync.Pool{
		New: func() interface{} {
			return make([]byte, bufferSize)
		},
	}

	// minimum one worker per connection
	t.maxWorkersPerConn = max(config.Transport.WorkersPerConn, 1)

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	t.listenerMu.Lock()
	t.listener = listener
	t.listenerMu.Unlock()

	// Close may have been called while the listener was created
	if t.closed.Load() {
		return listener.Close()
	}

	Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.connector.GetName(), config.Transport.Endpoint, t.maxWorkersPerConn)

	// Accept connections
	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.closed.Load() || errors.Is(err, net.ErrClosed) {
				Logger.Infof("%s server on %s stopped", t.connector.GetName(), config.Transport.Endpoint)
				return nil
			}
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		if err := t.connector.UpgradeConnection(conn, config); err != nil {
			Logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
		}

		// Handle the connection in a goroutine
		go t.handleConnection(conn)
	}
}

func (t *serverTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	t.listenerMu.Lock()
	listener := t.listener
	t.listenerMu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}

	// Closing a connection ends its read loop, in-flight workers are still awaited
	t.conns.Range(func(conn net.Conn, _ struct{}) bool {
		_ = conn.Close()
		return true
	})
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// serverConn serves the frames of one accepted connection.
// Requests are handled concurrently, at most maxWorkers at a time,
// responses are written back in completion order.
type serverConn struct {
	t       *serverTransport
	conn    net.Conn
	timeout time.Duration
	slots   chan struct{}
	writeMu sync.Mutex
	workers sync.WaitGroup
}

// handleConnection reads frames until the connection fails or is closed,
// then waits for the in-flight workers
func (t *serverTransport) handleConnection(conn net.Conn) {
	t.conns.Store(conn, struct{}{})
	defer func() {
		t.conns.Delete(conn)
		_ = conn.Close()
	}()

	sc := &serverConn{
		t:       t,
		conn:    conn,
		timeout: time.Duration(t.config.TimeoutSecond) * time.Second,
		slots:   make(chan struct{}, t.maxWorkersPerConn),
	}
	defer sc.workers.Wait()

	for {
		err := sc.next()
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			Logger.Debugf("Connection from %s closed by client", conn.RemoteAddr())
		case t.closed.Load():
		default:
			Logger.Errorf("Error reading request from %s: %v", conn.RemoteAddr(), err)
		}
		return
	}
}

// next reads one frame and hands it to a worker, blocking while all workers are busy
func (sc *serverConn) next() error {
	buf := sc.t.bufferPool.Get().([]byte)

	shardID, requestID, data, err := readFrame(sc.conn, buf)
	if err != nil {
		sc.t.bufferPool.Put(buf)
		return err
	}

	sc.slots <- struct{}{}
	sc.workers.Add(1)
	go func() {
		defer func() {
			sc.t.bufferPool.Put(buf)
			<-sc.slots
			sc.workers.Done()
		}()
		sc.serve(shardID, requestID, data)
	}()
	return nil
}

// serve runs the handler and writes the response frame under the same request id
func (sc *serverConn) serve(shardID, requestID uint64, data []byte) {
	start := time.Now()
	resp := sc.t.handler(shardID, data)
	Logger.Debugf("Processed request %d for shard %d in %s", requestID, shardID, time.Since(start))

	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()

	if sc.timeout > 0 {
		if err := sc.conn.SetWriteDeadline(time.Now().Add(sc.timeout)); err != nil {
			Logger.Errorf("Failed to set write deadline: %v", err)
			return
		}
	}
	if err := writeFrame(sc.conn, shardID, requestID, resp); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}
