package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrRejected is returned by the logging layer for pings without a message.
	// It is never retried.
	ErrRejected = errors.New("reject")
	// ErrUnsupportedRequest is returned for request variants the service does not know.
	ErrUnsupportedRequest = errors.New("unsupported request")
	// ErrUnexpectedResponse is returned by Call if a handler answers with the wrong variant.
	ErrUnexpectedResponse = errors.New("unexpected response")
	// ErrInternal wraps panics recovered inside the pipeline.
	ErrInternal = errors.New("internal error")
)

// --------------------------------------------------------------------------
// Interface Definitions
// --------------------------------------------------------------------------

// Request is one of the request variants of the item service
// (see the service package). Method names the operation.
type Request interface {
	Method() string
}

// Response is one of the response variants of the item service.
type Response interface {
	Method() string
}

// Handler handles a single request. Every layer, the service dispatcher and the
// RPC client implement it, so they can be stacked in any order.
type Handler interface {
	Handle(ctx context.Context, req Request) (Response, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// Handle calls f(ctx, req)
func (f HandlerFunc) Handle(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Layer wraps a handler and returns a new handler with the same contract.
// A layer may observe, transform, short-circuit or reject a request before
// delegating to next, and may observe the result afterwards.
type Layer func(next Handler) Handler

// --------------------------------------------------------------------------
// Composition
// --------------------------------------------------------------------------

// Chain wraps h with the given layers. The first layer is the outermost one,
// i.e. Chain(h, a, b) handles a request as a -> b -> h.
func Chain(h Handler, layers ...Layer) Handler {
	for i := len(layers) - 1; i >= 0; i-- {
		h = layers[i](h)
	}
	return h
}

// Call sends req through h and asserts the response variant.
//
// Usage:
//
//	resp, err := pipeline.Call[*service.GetItemResponse](ctx, h, &service.GetItemRequest{Key: "a"})
func Call[T Response](ctx context.Context, h Handler, req Request) (T, error) {
	var zero T
	resp, err := h.Handle(ctx, req)
	if err != nil {
		return zero, err
	}
	typed, ok := resp.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T for %s request", ErrUnexpectedResponse, resp, req.Method())
	}
	return typed, nil
}
