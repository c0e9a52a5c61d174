package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ValentinKolb/kvgate/lib/store"
	"github.com/ValentinKolb/kvgate/lib/store/lstore"
)

// failingStore returns the same error for every operation
type failingStore struct {
	err error
}

func (f *failingStore) Get(string) (string, bool, error) { return "", false, f.err }
func (f *failingStore) Set(string, string) error         { return f.err }
func (f *failingStore) Delete([]string) (uint64, error)  { return 0, f.err }
func (f *failingStore) GetInfo() (store.Info, error)     { return store.Info{}, f.err }

func TestPing(t *testing.T) {
	svc := NewItemService(lstore.NewLocalStore())
	ctx := context.Background()

	testCases := []struct {
		name     string
		req      *PingRequest
		expected string
	}{
		{"with message", NewPingRequest("hello"), "hello"},
		{"empty message is still a message", NewPingRequest(""), ""},
		{"without message", &PingRequest{}, PongMessage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.Ping(ctx, tc.req)
			if err != nil {
				t.Fatalf("Ping returned error: %v", err)
			}
			if resp.Message != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, resp.Message)
			}
		})
	}
}

func TestItemOperations(t *testing.T) {
	svc := NewItemService(lstore.NewLocalStore())
	ctx := context.Background()

	setResp, err := svc.SetItem(ctx, &SetItemRequest{KV: KV{Key: "a", Value: "1"}})
	if err != nil {
		t.Fatalf("SetItem returned error: %v", err)
	}
	if setResp.Message != SetOKMessage {
		t.Errorf("Expected %q, got %q", SetOKMessage, setResp.Message)
	}

	getResp, err := svc.GetItem(ctx, &GetItemRequest{Key: "a"})
	if err != nil {
		t.Fatalf("GetItem returned error: %v", err)
	}
	if getResp.Value != "1" || !getResp.Found {
		t.Errorf("Expected a=1 (found), got %+v", getResp)
	}

	missing, err := svc.GetItem(ctx, &GetItemRequest{Key: "nonexistent"})
	if err != nil {
		t.Fatalf("GetItem on missing key returned error: %v", err)
	}
	if missing.Value != "" || missing.Found {
		t.Errorf("Expected empty, not found response, got %+v", missing)
	}

	delResp, err := svc.DeleteItem(ctx, &DeleteItemRequest{Keys: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("DeleteItem returned error: %v", err)
	}
	if delResp.Count != 1 {
		t.Errorf("Expected count 1, got %d", delResp.Count)
	}

	if _, err := svc.PostItem(ctx, &PostItemRequest{Name: "anything"}); err != nil {
		t.Errorf("PostItem returned error: %v", err)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	storeErr := store.NewError(store.RetCInternalError, "boom")
	svc := NewItemService(&failingStore{err: storeErr})
	ctx := context.Background()

	_, err := svc.GetItem(ctx, &GetItemRequest{Key: "a"})
	if !errors.Is(err, storeErr) {
		t.Errorf("GetItem: expected store error, got %v", err)
	}

	_, err = svc.SetItem(ctx, &SetItemRequest{KV: KV{Key: "a", Value: "1"}})
	if !errors.Is(err, storeErr) {
		t.Errorf("SetItem: expected store error, got %v", err)
	}

	_, err = svc.DeleteItem(ctx, &DeleteItemRequest{Keys: []string{"a"}})
	var typed *store.Error
	if !errors.As(err, &typed) || typed.Code != store.RetCInternalError {
		t.Errorf("DeleteItem: expected typed store error, got %v", err)
	}

	// ping does not touch the store
	if _, err := svc.Ping(ctx, NewPingRequest("hi")); err != nil {
		t.Errorf("Ping should never fail, got %v", err)
	}
}
