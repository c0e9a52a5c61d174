package pipeline

import (
	"context"
	"time"
)

// CallInfo is the per-call metadata carried alongside a request.
// It has no business meaning; the service never reads it.
type CallInfo struct {
	RequestID string
	Origin    string // e.g. "http", "rpc", "cli"
	Start     time.Time
}

type callInfoKey struct{}

// WithCallInfo returns a copy of ctx carrying info
func WithCallInfo(ctx context.Context, info CallInfo) context.Context {
	return context.WithValue(ctx, callInfoKey{}, info)
}

// CallInfoFrom returns the call info stored in ctx, if any
func CallInfoFrom(ctx context.Context) (CallInfo, bool) {
	info, ok := ctx.Value(callInfoKey{}).(CallInfo)
	return info, ok
}

// requestID returns the request id of ctx or "-"
func requestID(ctx context.Context) string {
	if info, ok := CallInfoFrom(ctx); ok && info.RequestID != "" {
		return info.RequestID
	}
	return "-"
}
