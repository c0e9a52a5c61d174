package tcp

import (
	"bytes"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/ValentinKolb/kvgate/rpc/common"
)

// freeAddr returns a local tcp address that was free a moment ago
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestRoundTrip(t *testing.T) {
	addr := freeAddr(t)

	srv := NewTCPDefaultServerTransport()
	srv.RegisterHandler(func(shardId uint64, req []byte) []byte {
		return append([]byte(fmt.Sprintf("%d:", shardId)), req...)
	})

	done := make(chan error, 1)
	go func() {
		done <- srv.Listen(common.ServerConfig{
			TimeoutSecond: 5,
			Transport: common.ServerTransportConfig{
				Endpoint:       addr,
				WorkersPerConn: 2,
				TCPConf:        common.TCPConf{TCPNoDelay: true, TCPLingerSec: -1},
			},
		})
	}()

	client := NewTCPClientTransport()
	config := common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoints:  []string{addr},
			RetryCount: 3,
			TCPConf:    common.TCPConf{TCPNoDelay: true, TCPKeepAliveSec: 30, TCPLingerSec: -1},
			SocketConf: common.SocketConf{WriteBufferSize: 64 * 1024, ReadBufferSize: 64 * 1024},
		},
	}

	// the server may still be starting
	var err error
	for i := 0; i < 50; i++ {
		if err = client.Connect(config); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer client.Close()

	resp, err := client.Send(42, []byte("ping"))
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !bytes.Equal(resp, []byte("42:ping")) {
		t.Errorf("Expected %q, got %q", "42:ping", resp)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen returned error after Close: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("Listen did not return after Close")
	}
}

func TestListenInvalidAddress(t *testing.T) {
	srv := NewTCPServerTransport(1024)
	srv.RegisterHandler(func(uint64, []byte) []byte { return nil })

	err := srv.Listen(common.ServerConfig{Transport: common.ServerTransportConfig{Endpoint: "not-an-address"}})
	if err == nil {
		t.Error("Expected error for invalid address")
	}
}
