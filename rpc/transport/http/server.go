package http

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler  transport.ServerHandleFunc
	config   common.ServerConfig
	server   *http.Server
	serverMu sync.Mutex
	closed   bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	listener, err := net.Listen("tcp", config.Transport.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	timeout := time.Duration(config.TimeoutSecond) * time.Second
	server := &http.Server{
		Handler:      t.routes(),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	t.serverMu.Lock()
	if t.closed {
		t.serverMu.Unlock()
		return listener.Close()
	}
	t.server = server
	t.serverMu.Unlock()

	Logger.Infof("Starting HTTP server on %s", listener.Addr())

	err = server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		Logger.Infof("HTTP server on %s stopped", config.Transport.Endpoint)
		return nil
	}
	return err
}

func (t *httpServerTransport) Close() error {
	t.serverMu.Lock()
	defer t.serverMu.Unlock()

	t.closed = true
	if t.server == nil {
		return nil
	}
	return t.server.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// routes returns the handler of the server, request logging is only active on debug level
func (t *httpServerTransport) routes() http.Handler {
	mux := http.NewServeMux()
	if t.config.LogLevel == "debug" {
		mux.HandleFunc("POST /{shardId}", loggerMiddleware(t.handleRequest))
	} else {
		mux.HandleFunc("POST /{shardId}", t.handleRequest)
	}
	return mux
}

// handleRequest handles incoming HTTP requests and writes the response to the writer
func (t *httpServerTransport) handleRequest(w http.ResponseWriter, r *http.Request) {
	shardId, err := strconv.ParseUint(r.PathValue("shardId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid shardId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return
	}

	resp := t.handler(shardId, body)

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err = w.Write(resp); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
