package http

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/kvgate/rpc/common"
)

func newTestTransport() *httpServerTransport {
	t := &httpServerTransport{}
	t.RegisterHandler(func(shardId uint64, req []byte) []byte {
		return append([]byte(fmt.Sprintf("%d:", shardId)), req...)
	})
	return t
}

func TestHandleRequest(t *testing.T) {
	srv := httptest.NewServer(newTestTransport().routes())
	defer srv.Close()

	testCases := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"valid request", http.MethodPost, "/7", "hello", http.StatusOK, "7:hello"},
		{"invalid shard id", http.MethodPost, "/abc", "hello", http.StatusBadRequest, ""},
		{"wrong method", http.MethodGet, "/7", "", http.StatusMethodNotAllowed, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, srv.URL+tc.path, bytes.NewBufferString(tc.body))
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			if tc.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tc.wantBody {
					t.Errorf("Expected body %q, got %q", tc.wantBody, body)
				}
			}
		})
	}
}

func TestClientTransport(t *testing.T) {
	srv := httptest.NewServer(newTestTransport().routes())
	defer srv.Close()

	client := NewHttpClientTransport()
	err := client.Connect(common.ClientConfig{
		TimeoutSecond: 5,
		Transport:     common.ClientTransportConfig{Endpoints: []string{srv.URL}, RetryCount: 2},
	})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer client.Close()

	resp, err := client.Send(3, []byte("data"))
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if string(resp) != "3:data" {
		t.Errorf("Expected %q, got %q", "3:data", resp)
	}
}

func TestClientRetriesAndFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHttpClientTransport()
	err := client.Connect(common.ClientConfig{
		TimeoutSecond: 5,
		Transport:     common.ClientTransportConfig{Endpoints: []string{srv.URL}, RetryCount: 3},
	})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	if _, err := client.Send(1, []byte("x")); err == nil {
		t.Error("Expected error for failing server")
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}

func TestListenAndClose(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	transport := newTestTransport()
	done := make(chan error, 1)
	go func() {
		done <- transport.Listen(common.ServerConfig{
			TimeoutSecond: 5,
			LogLevel:      "debug",
			Transport:     common.ServerTransportConfig{Endpoint: addr},
		})
	}()

	client := NewHttpClientTransport()
	_ = client.Connect(common.ClientConfig{
		TimeoutSecond: 1,
		Transport:     common.ClientTransportConfig{Endpoints: []string{addr}, RetryCount: 1},
	})

	var resp []byte
	for i := 0; i < 50; i++ {
		if resp, err = client.Send(9, []byte("x")); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil || string(resp) != "9:x" {
		t.Fatalf("Expected %q, got %q (err=%v)", "9:x", resp, err)
	}

	if err := transport.Close(); err != nil {
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
