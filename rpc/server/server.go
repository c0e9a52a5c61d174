package server

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"sort"
	"syscall"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/lib/service"
	"github.com/ValentinKolb/kvgate/lib/store"
	"github.com/ValentinKolb/kvgate/lib/store/lstore"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/serializer"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard represents a shard in the RPC server.
// It contains the store it encapsulates, the pipeline on top of it and the
// adapter that maps messages to pipeline requests
type serverShard struct {
	Store   store.IStore
	Handler pipeline.Handler
	Adapter IRPCServerAdapter
}

// RPCServer serves the item service of every configured shard over one transport
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
	metrics    *metrics.Set
}

// Option configures an RPCServer
type Option func(*RPCServer)

// WithMetricsSet makes the pipelines record into set instead of a private one
func WithMetricsSet(set *metrics.Set) Option {
	return func(s *RPCServer) {
		s.metrics = set
	}
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters and creates one
// local store, item service and pipeline per configured shard
//
// Usage:
//
//	s, err := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//	if err != nil {
//		panic(err)
//	}
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	opts ...Option,
) (*RPCServer, error) {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	s := &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
		metrics:    metrics.NewSet(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(config.Layers) == 0 {
		s.config.Layers = pipeline.DefaultLayerNames
	}

	if err := s.init(); err != nil {
		return nil, err
	}

	Logger.Infof("Created RPC Server (%s serializer)", s.serializer.Name())
	Logger.Infof("%s", s.config.String())

	return s, nil
}

// init creates the shards and registers the transport handler
func (s *RPCServer) init() error {
	if len(s.config.Shards) == 0 {
		return fmt.Errorf("no shards configured")
	}

	for _, shardId := range s.config.Shards {
		if _, exists := s.shards.Load(shardId); exists {
			return fmt.Errorf("duplicate shard id %d", shardId)
		}

		layers, err := pipeline.LayersByName(s.config.Layers, pipeline.LayerOptions{
			Logger:  pipeline.Logger,
			Metrics: s.metrics,
		})
		if err != nil {
			return err
		}

		st := lstore.NewLocalStore()
		s.shards.Store(shardId, serverShard{
			Store:   st,
			Handler: pipeline.Chain(pipeline.NewServiceHandler(service.NewItemService(st)), layers...),
			Adapter: NewPipelineServerAdapter(),
		})
		Logger.Infof("created local store for shard %d", shardId)
	}

	s.registerTransportHandler()
	return nil
}

func (s *RPCServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(shardId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg *common.Message

		shard, ok := s.shards.Load(shardId)
		if !ok {
			// Case shard does not exist -> error
			respMsg = common.NewErrorResponse(common.ErrCodeUnknownShard, fmt.Sprintf("shard %d not found", shardId))
		} else if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.NewErrorResponse(common.ErrCodeBadRequest, fmt.Sprintf("failed to deserialize request: %s", err))
		} else {
			// Let the adapter handle the request
			respMsg = shard.Adapter.Handle(context.Background(), &msg, shard.Handler)
		}

		val, err := s.serializer.Serialize(*respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			val, _ = s.serializer.Serialize(*common.NewErrorResponse(
				common.ErrCodeInternal, fmt.Sprintf("failed to serialize response: %s", err)))
		}
		return val
	})
}

// Serve starts the transport layer and blocks until Close is called
func (s *RPCServer) Serve() error {
	return s.transport.Listen(s.config)
}

// Close stops the transport and logs the statistics of every shard
func (s *RPCServer) Close() error {
	err := s.transport.Close()

	for _, shardId := range s.ShardIDs() {
		shard, _ := s.shards.Load(shardId)
		info, infoErr := shard.Store.GetInfo()
		if infoErr != nil {
			Logger.Warningf("shard %d: failed to read store info: %v", shardId, infoErr)
			continue
		}
		Logger.Infof("shard %d: %s", shardId, info)
	}
	return err
}

// Handler returns the pipeline of a shard, e.g. for an embedded gateway
func (s *RPCServer) Handler(shardId uint64) (pipeline.Handler, bool) {
	shard, ok := s.shards.Load(shardId)
	if !ok {
		return nil, false
	}
	return shard.Handler, true
}

// StoreInfo returns the statistics of the store of a shard
func (s *RPCServer) StoreInfo(shardId uint64) (store.Info, error) {
	shard, ok := s.shards.Load(shardId)
	if !ok {
		return store.Info{}, fmt.Errorf("shard %d not found", shardId)
	}
	return shard.Store.GetInfo()
}

// ShardIDs returns the served shard ids in ascending order
func (s *RPCServer) ShardIDs() []uint64 {
	ids := make([]uint64, 0, s.shards.Size())
	s.shards.Range(func(id uint64, _ serverShard) bool {
		ids = append(ids, id)
		return true
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Metrics returns the metrics set the pipelines record into
func (s *RPCServer) Metrics() *metrics.Set {
	return s.metrics
}
