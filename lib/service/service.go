package service

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/kvgate/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("service")

// IItemService is the business logic of kvgate.
// Implementations must not inspect the context beyond passing it on.
type IItemService interface {
	// Ping echoes the message of the request, or PongMessage if there is none. It never fails.
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
	// GetItem looks up a key. A missing key yields an empty value and Found=false, not an error.
	GetItem(ctx context.Context, req *GetItemRequest) (*GetItemResponse, error)
	// SetItem upserts a record and acknowledges with SetOKMessage.
	SetItem(ctx context.Context, req *SetItemRequest) (*SetItemResponse, error)
	// DeleteItem removes the given keys and reports how many existed.
	DeleteItem(ctx context.Context, req *DeleteItemRequest) (*DeleteItemResponse, error)
	// PostItem is reserved and does nothing.
	PostItem(ctx context.Context, req *PostItemRequest) (*PostItemResponse, error)
}

// NewItemService creates the item service on top of the given store.
// The store is owned by the caller; the service only holds a handle to it.
func NewItemService(s store.IStore) IItemService {
	return &itemService{store: s}
}

type itemService struct {
	store store.IStore
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IItemService)
// --------------------------------------------------------------------------

func (s *itemService) Ping(_ context.Context, req *PingRequest) (*PingResponse, error) {
	if req.Message != nil {
		Logger.Infof("ping: %s", *req.Message)
		return &PingResponse{Message: *req.Message}, nil
	}
	Logger.Infof("ping: %s", PongMessage)
	return &PingResponse{Message: PongMessage}, nil
}

func (s *itemService) GetItem(_ context.Context, req *GetItemRequest) (*GetItemResponse, error) {
	value, found, err := s.store.Get(req.Key)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", req.Key, err)
	}
	return &GetItemResponse{Value: value, Found: found}, nil
}

func (s *itemService) SetItem(_ context.Context, req *SetItemRequest) (*SetItemResponse, error) {
	if err := s.store.Set(req.KV.Key, req.KV.Value); err != nil {
		return nil, fmt.Errorf("set %q: %w", req.KV.Key, err)
	}
	return &SetItemResponse{Message: SetOKMessage}, nil
}

func (s *itemService) DeleteItem(_ context.Context, req *DeleteItemRequest) (*DeleteItemResponse, error) {
	count, err := s.store.Delete(req.Keys)
	if err != nil {
		return nil, fmt.Errorf("delete %d keys: %w", len(req.Keys), err)
	}
	return &DeleteItemResponse{Count: count}, nil
}

func (s *itemService) PostItem(_ context.Context, req *PostItemRequest) (*PostItemResponse, error) {
	Logger.Infof("post_item: %s", req.Name)
	return &PostItemResponse{}, nil
}
