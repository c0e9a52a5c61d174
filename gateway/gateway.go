package gateway

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("gateway")

// DefaultLayerNames are the pipeline layers the gateway runs before the handler
var DefaultLayerNames = []string{"trace"}

// Gateway translates HTTP requests into item service requests and renders the responses
type Gateway struct {
	config  common.GatewayConfig
	handler pipeline.Handler
	metrics *metrics.Set
	router  *gin.Engine

	serverMu sync.Mutex
	server   *http.Server
	closed   bool
}

// Option configures a Gateway
type Option func(*Gateway)

// WithMetricsSet makes the gateway record into and expose set
func WithMetricsSet(set *metrics.Set) Option {
	return func(g *Gateway) {
		g.metrics = set
	}
}

// New creates a gateway in front of handler.
// handler is either the pipeline of a local shard or a shared rpc client.
func New(config common.GatewayConfig, handler pipeline.Handler, opts ...Option) (*Gateway, error) {
	if handler == nil {
		return nil, fmt.Errorf("gateway: handler is nil")
	}

	g := &Gateway{
		config:  config,
		metrics: metrics.NewSet(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if len(g.config.Layers) == 0 {
		g.config.Layers = DefaultLayerNames
	}
	layers, err := pipeline.LayersByName(g.config.Layers, pipeline.LayerOptions{
		Logger:  Logger,
		Metrics: g.metrics,
	})
	if err != nil {
		return nil, err
	}
	g.handler = pipeline.Chain(handler, layers...)

	g.router = gin.New()
	g.router.Use(recovery(), requestID(), requestLogger())
	for _, r := range g.routes() {
		g.router.Handle(r.method, r.path, r.handler)
	}

	return g, nil
}

// Router returns the http.Handler serving all gateway routes
func (g *Gateway) Router() http.Handler {
	return g.router
}

// Run listens on the configured address and serves until Close is called
func (g *Gateway) Run() error {
	listener, err := net.Listen("tcp", g.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", g.config.Listen, err)
	}
	return g.Serve(listener)
}

// Serve serves the gateway on listener until Close is called
func (g *Gateway) Serve(listener net.Listener) error {
	g.serverMu.Lock()
	if g.closed {
		g.serverMu.Unlock()
		return listener.Close()
	}
	g.server = &http.Server{Handler: g.router}
	server := g.server
	g.serverMu.Unlock()

	Logger.Infof("HTTP gateway listening on %s", listener.Addr())
	Logger.Infof("%s", g.config.String())

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the gateway, open requests are cut off
func (g *Gateway) Close() error {
	g.serverMu.Lock()
	defer g.serverMu.Unlock()

	g.closed = true
	if g.server == nil {
		return nil
	}
	return g.server.Close()
}
