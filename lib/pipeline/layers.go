package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ValentinKolb/kvgate/lib/service"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Logging
// --------------------------------------------------------------------------

// LoggingLayer logs every request, its outcome and the elapsed time.
//
// A ping without a message is rejected with ErrRejected; next is not called in
// that case.
func LoggingLayer(log logger.ILogger) Layer {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req Request) (Response, error) {
			start := time.Now()
			id := requestID(ctx)
			log.Debugf("[%s] received request: %v", id, req)

			defer func() {
				log.Infof("[%s] %s request took %dms", id, req.Method(), time.Since(start).Milliseconds())
			}()

			if ping, ok := req.(*service.PingRequest); ok && ping.Message == nil {
				log.Warningf("[%s] rejecting ping without message", id)
				return nil, ErrRejected
			}

			resp, err := next.Handle(ctx, req)
			if err != nil {
				log.Errorf("[%s] %s request failed: %v", id, req.Method(), err)
				return nil, err
			}

			log.Debugf("[%s] sending response: %+v", id, resp)
			return resp, nil
		})
	}
}

// --------------------------------------------------------------------------
// Trace
// --------------------------------------------------------------------------

// TraceLayer makes sure every call carries a CallInfo with a request id.
// An existing request id (e.g. received over RPC) is kept.
func TraceLayer() Layer {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req Request) (Response, error) {
			info, _ := CallInfoFrom(ctx)
			if info.RequestID == "" {
				info.RequestID = uuid.NewString()
			}
			if info.Start.IsZero() {
				info.Start = time.Now()
			}
			return next.Handle(WithCallInfo(ctx, info), req)
		})
	}
}

// --------------------------------------------------------------------------
// Recovery
// --------------------------------------------------------------------------

// RecoveryLayer turns a panic further down the pipeline into an error wrapping ErrInternal
func RecoveryLayer(log logger.ILogger) Layer {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req Request) (resp Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("[%s] recovered from panic in %s request: %v", requestID(ctx), req.Method(), r)
					resp = nil
					err = fmt.Errorf("%w: %v", ErrInternal, r)
				}
			}()
			return next.Handle(ctx, req)
		})
	}
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// MetricsLayer records a request counter, an error counter and a duration
// histogram per method into set. Rejected requests count as errors.
func MetricsLayer(set *metrics.Set) Layer {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req Request) (Response, error) {
			start := time.Now()
			method := req.Method()

			resp, err := next.Handle(ctx, req)

			set.GetOrCreateCounter(fmt.Sprintf(`kvgate_requests_total{method=%q}`, method)).Inc()
			if err != nil {
				set.GetOrCreateCounter(fmt.Sprintf(`kvgate_request_errors_total{method=%q}`, method)).Inc()
			}
			set.GetOrCreateHistogram(fmt.Sprintf(`kvgate_request_duration_seconds{method=%q}`, method)).UpdateDuration(start)

			return resp, err
		})
	}
}

// --------------------------------------------------------------------------
// Layer Selection
// --------------------------------------------------------------------------

// DefaultLayerNames is the layer order used if nothing else is configured
var DefaultLayerNames = []string{"trace", "recovery", "metrics", "logging"}

// LayerOptions holds the dependencies a layer may need
type LayerOptions struct {
	Logger  logger.ILogger
	Metrics *metrics.Set
}

// DefaultLayers returns the layers named in DefaultLayerNames
func DefaultLayers(opts LayerOptions) []Layer {
	layers, _ := LayersByName(DefaultLayerNames, opts)
	return layers
}

// LayersByName builds the layers with the given names, outermost first.
// Known names are trace, recovery, metrics and logging.
func LayersByName(names []string, opts LayerOptions) ([]Layer, error) {
	if opts.Logger == nil {
		opts.Logger = Logger
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewSet()
	}

	layers := make([]Layer, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "trace":
			layers = append(layers, TraceLayer())
		case "recovery":
			layers = append(layers, RecoveryLayer(opts.Logger))
		case "metrics":
			layers = append(layers, MetricsLayer(opts.Metrics))
		case "logging":
			layers = append(layers, LoggingLayer(opts.Logger))
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown layer %q", name)
		}
	}
	return layers, nil
}
