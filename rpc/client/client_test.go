package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/lib/service"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/serializer"
	"github.com/ValentinKolb/kvgate/rpc/server"
	"github.com/ValentinKolb/kvgate/rpc/transport/unix"
)

const testShard = 100

func startServer(t *testing.T, ser serializer.IRPCSerializer) string {
	t.Helper()

	socket := filepath.Join(t.TempDir(), "kvgate.sock")
	s, err := server.NewRPCServer(common.ServerConfig{
		Shards:        []uint64{testShard},
		TimeoutSecond: 5,
		Transport:     common.ServerTransportConfig{Endpoint: socket, WorkersPerConn: 8},
	}, unix.NewUnixDefaultServerTransport(), ser)
	if err != nil {
		t.Fatalf("NewRPCServer returned error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()
	t.Cleanup(func() {
		_ = s.Close()
		<-done
	})

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server socket %s was not created", socket)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return socket
}

func newClient(t *testing.T, socket string, shardId uint64, ser serializer.IRPCSerializer) *RPCClient {
	t.Helper()

	c, err := NewRPCClient(shardId, common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoints:              []string{socket},
			RetryCount:             1,
			ConnectionsPerEndpoint: 2,
		},
	}, unix.NewUnixClientTransport(), ser)
	if err != nil {
		t.Fatalf("NewRPCClient returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestScenario(t *testing.T) {
	serializers := map[string]serializer.IRPCSerializer{
		"binary": serializer.NewBinarySerializer(),
		"json":   serializer.NewJSONSerializer(),
	}

	for name, ser := range serializers {
		t.Run(name, func(t *testing.T) {
			c := newClient(t, startServer(t, ser), testShard, ser)
			ctx := context.Background()

			msg := "hello"
			if pong, err := c.Ping(ctx, &msg); err != nil || pong != "hello" {
				t.Fatalf("Expected ping echo, got %q, %v", pong, err)
			}

			empty := ""
			if pong, err := c.Ping(ctx, &empty); err != nil || pong != "PONG" {
				t.Fatalf("Expected PONG for empty message, got %q, %v", pong, err)
			}

			if _, err := c.Ping(ctx, nil); !errors.Is(err, pipeline.ErrRejected) {
				t.Fatalf("Expected ErrRejected for ping without message, got %v", err)
			}

			if ack, err := c.SetItem(ctx, "a", "1"); err != nil || ack != "OK" {
				t.Fatalf("Expected OK from SetItem, got %q, %v", ack, err)
			}

			value, found, err := c.GetItem(ctx, "a")
			if err != nil || !found || value != "1" {
				t.Fatalf("Expected a=1, got %q, %t, %v", value, found, err)
			}

			if _, err := c.SetItem(ctx, "empty", ""); err != nil {
				t.Fatalf("SetItem returned error: %v", err)
			}
			value, found, err = c.GetItem(ctx, "empty")
			if err != nil || !found || value != "" {
				t.Fatalf("Expected stored empty value, got %q, %t, %v", value, found, err)
			}

			count, err := c.DeleteItem(ctx, "a", "missing", "empty")
			if err != nil || count != 2 {
				t.Fatalf("Expected 2 deleted keys, got %d, %v", count, err)
			}

			if _, found, _ = c.GetItem(ctx, "a"); found {
				t.Error("Expected a to be deleted")
			}

			if err := c.PostItem(ctx, "item"); err != nil {
				t.Errorf("PostItem returned error: %v", err)
			}
		})
	}
}

func TestUnknownShard(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	c := newClient(t, startServer(t, ser), testShard+1, ser)

	_, _, err := c.GetItem(context.Background(), "a")
	var remote *common.RemoteError
	if !errors.As(err, &remote) || remote.Code != common.ErrCodeUnknownShard {
		t.Fatalf("Expected unknown shard error, got %v", err)
	}
}

func TestClientAsHandler(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	c := newClient(t, startServer(t, ser), testShard, ser)

	// the client can be wrapped in layers like a local pipeline
	var calls int
	h := pipeline.Chain(c, pipeline.TraceLayer(), func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(ctx context.Context, req pipeline.Request) (pipeline.Response, error) {
			calls++
			return next.Handle(ctx, req)
		})
	})

	ctx := pipeline.WithCallInfo(context.Background(), pipeline.CallInfo{RequestID: "req-1"})
	if _, err := pipeline.Call[*service.SetItemResponse](ctx, h, &service.SetItemRequest{KV: service.KV{Key: "k", Value: "v"}}); err != nil {
		t.Fatalf("SetItem through chain returned error: %v", err)
	}

	resp, err := pipeline.Call[*service.GetItemResponse](ctx, h, &service.GetItemRequest{Key: "k"})
	if err != nil {
		t.Fatalf("GetItem through chain returned error: %v", err)
	}
	if !resp.Found || resp.Value != "v" {
		t.Errorf("Expected k=v, got %+v", resp)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls through the layer, got %d", calls)
	}
}

func TestConcurrentClients(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	c := newClient(t, startServer(t, ser), testShard, ser)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.SetItem(ctx, "shared", "v"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("SetItem returned error: %v", err)
	}
}

func TestNoServer(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")
	_, err := NewRPCClient(testShard, common.ClientConfig{
		Transport: common.ClientTransportConfig{Endpoints: []string{socket}},
	}, unix.NewUnixClientTransport(), serializer.NewBinarySerializer())
	if err == nil {
		t.Fatal("Expected error when no server is listening")
	}
}

func TestServerGone(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	socket := filepath.Join(t.TempDir(), "kvgate.sock")
	s, err := server.NewRPCServer(common.ServerConfig{
		Shards:    []uint64{testShard},
		Transport: common.ServerTransportConfig{Endpoint: socket},
	}, unix.NewUnixDefaultServerTransport(), ser)
	if err != nil {
		t.Fatalf("NewRPCServer returned error: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server socket %s was not created", socket)
		}
		time.Sleep(10 * time.Millisecond)
	}

	c := newClient(t, socket, testShard, ser)
	_ = s.Close()
	<-done

	if _, _, err := c.GetItem(context.Background(), "a"); !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport after server shutdown, got %v", err)
	}
}
