package pipeline

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/kvgate/lib/service"
)

// NewServiceHandler returns the innermost handler of a pipeline.
// It maps each request variant to the matching method of svc.
func NewServiceHandler(svc service.IItemService) Handler {
	return HandlerFunc(func(ctx context.Context, req Request) (Response, error) {
		switch r := req.(type) {
		case *service.PingRequest:
			return svc.Ping(ctx, r)
		case *service.GetItemRequest:
			return svc.GetItem(ctx, r)
		case *service.SetItemRequest:
			return svc.SetItem(ctx, r)
		case *service.DeleteItemRequest:
			return svc.DeleteItem(ctx, r)
		case *service.PostItemRequest:
			return svc.PostItem(ctx, r)
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedRequest, req)
		}
	})
}
