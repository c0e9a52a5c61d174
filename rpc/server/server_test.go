package server

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/serializer"
	"github.com/ValentinKolb/kvgate/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
)

// fakeTransport captures the registered handler instead of listening
type fakeTransport struct {
	handler transport.ServerHandleFunc
	closed  bool
}

func (f *fakeTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	f.handler = handler
}

func (f *fakeTransport) Listen(common.ServerConfig) error {
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func strPtr(s string) *string {
	return &s
}

func newTestServer(t *testing.T, shards ...uint64) (*RPCServer, *fakeTransport, serializer.IRPCSerializer) {
	t.Helper()

	ft := &fakeTransport{}
	ser := serializer.NewBinarySerializer()
	s, err := NewRPCServer(common.ServerConfig{Shards: shards}, ft, ser)
	if err != nil {
		t.Fatalf("NewRPCServer returned error: %v", err)
	}
	return s, ft, ser
}

// roundTrip sends msg through the registered transport handler
func roundTrip(t *testing.T, ft *fakeTransport, ser serializer.IRPCSerializer, shardId uint64, msg *common.Message) *common.Message {
	t.Helper()

	req, err := ser.Serialize(*msg)
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}
	var resp common.Message
	if err := ser.Deserialize(ft.handler(shardId, req), &resp); err != nil {
		t.Fatalf("Deserialize returned error: %v", err)
	}
	return &resp
}

func TestNewRPCServerConfig(t *testing.T) {
	testCases := []struct {
		name   string
		config common.ServerConfig
	}{
		{"no shards", common.ServerConfig{}},
		{"duplicate shard", common.ServerConfig{Shards: []uint64{1, 1}}},
		{"unknown layer", common.ServerConfig{Shards: []uint64{1}, Layers: []string{"trace", "magic"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRPCServer(tc.config, &fakeTransport{}, serializer.NewBinarySerializer()); err == nil {
				t.Error("Expected error for invalid config")
			}
		})
	}
}

func TestShards(t *testing.T) {
	s, _, _ := newTestServer(t, 300, 100, 200)

	if ids := s.ShardIDs(); !reflect.DeepEqual(ids, []uint64{100, 200, 300}) {
		t.Errorf("Expected sorted shard ids, got %v", ids)
	}
	if _, ok := s.Handler(100); !ok {
		t.Error("Expected handler for shard 100")
	}
	if _, ok := s.Handler(400); ok {
		t.Error("Expected no handler for shard 400")
	}
	if _, err := s.StoreInfo(400); err == nil {
		t.Error("Expected error for store info of unknown shard")
	}
}

func TestTransportHandler(t *testing.T) {
	s, ft, ser := newTestServer(t, 1, 2)

	resp := roundTrip(t, ft, ser, 1, common.NewSetRequest("a", "1"))
	if resp.MsgType != common.MsgTSet || resp.Text == nil || *resp.Text != "OK" {
		t.Fatalf("Expected set acknowledgement, got %+v", resp)
	}

	resp = roundTrip(t, ft, ser, 1, common.NewGetRequest("a"))
	if !resp.Ok || resp.Value != "1" {
		t.Errorf("Expected a=1 on shard 1, got %+v", resp)
	}

	// shards do not share their stores
	resp = roundTrip(t, ft, ser, 2, common.NewGetRequest("a"))
	if resp.Ok {
		t.Errorf("Expected a to be missing on shard 2, got %+v", resp)
	}

	info, err := s.StoreInfo(1)
	if err != nil {
		t.Fatalf("StoreInfo returned error: %v", err)
	}
	if info.Keys != 1 {
		t.Errorf("Expected 1 key on shard 1, got %d", info.Keys)
	}
}

func TestTransportHandlerErrors(t *testing.T) {
	_, ft, ser := newTestServer(t, 1)

	resp := roundTrip(t, ft, ser, 9, common.NewGetRequest("a"))
	if resp.MsgType != common.MsgTError || resp.Code != common.ErrCodeUnknownShard {
		t.Errorf("Expected unknown shard error, got %+v", resp)
	}

	var bad common.Message
	if err := ser.Deserialize(ft.handler(1, []byte{1}), &bad); err != nil {
		t.Fatalf("Deserialize returned error: %v", err)
	}
	if bad.Code != common.ErrCodeBadRequest {
		t.Errorf("Expected bad request error, got %+v", bad)
	}

	resp = roundTrip(t, ft, ser, 1, common.NewPingRequest(nil))
	_, err := common.MessageToResponse(resp)
	if !errors.Is(err, pipeline.ErrRejected) {
		t.Errorf("Expected rejected ping, got %v", err)
	}
}

func TestAdapter(t *testing.T) {
	s, _, _ := newTestServer(t, 1)
	h, _ := s.Handler(1)
	adapter := NewPipelineServerAdapter()
	ctx := context.Background()

	testCases := []struct {
		name     string
		req      *common.Message
		expected *common.Message
	}{
		{
			name:     "ping echo",
			req:      &common.Message{MsgType: common.MsgTPing, Text: strPtr("hi"), Meta: []byte("id-1")},
			expected: &common.Message{MsgType: common.MsgTPing, Text: strPtr("hi"), Meta: []byte("id-1")},
		},
		{
			name:     "ping empty",
			req:      common.NewPingRequest(strPtr("")),
			expected: common.NewPingResponse("PONG"),
		},
		{
			name:     "get missing",
			req:      common.NewGetRequest("nope"),
			expected: common.NewGetResponse("", false),
		},
		{
			name:     "delete missing",
			req:      common.NewDeleteRequest([]string{"x", "y"}),
			expected: common.NewDeleteResponse(0),
		},
		{
			name:     "post",
			req:      common.NewPostRequest("item"),
			expected: common.NewPostResponse(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := adapter.Handle(ctx, tc.req, h)
			if !reflect.DeepEqual(resp, tc.expected) {
				t.Errorf("Expected %+v, got %+v", tc.expected, resp)
			}
		})
	}

	resp := adapter.Handle(ctx, &common.Message{MsgType: common.MsgTUnknown}, h)
	if resp.Code != common.ErrCodeUnsupported {
		t.Errorf("Expected unsupported error, got %+v", resp)
	}

	resp = adapter.Handle(ctx, common.NewGetRequest("a"), nil)
	if resp.Code != common.ErrCodeInternal {
		t.Errorf("Expected internal error for nil handler, got %+v", resp)
	}
}

func TestSharedMetrics(t *testing.T) {
	set := metrics.NewSet()
	ft := &fakeTransport{}
	ser := serializer.NewJSONSerializer()
	s, err := NewRPCServer(common.ServerConfig{Shards: []uint64{1, 2}}, ft, ser, WithMetricsSet(set))
	if err != nil {
		t.Fatalf("NewRPCServer returned error: %v", err)
	}
	if s.Metrics() != set {
		t.Fatal("Expected server to use the provided metrics set")
	}

	roundTrip(t, ft, ser, 1, common.NewGetRequest("a"))
	roundTrip(t, ft, ser, 2, common.NewGetRequest("a"))

	var sb strings.Builder
	set.WritePrometheus(&sb)
	if !strings.Contains(sb.String(), `kvgate_requests_total{method="get"} 2`) {
		t.Errorf("Expected aggregated get counter, got:\n%s", sb.String())
	}

	if err := s.Close(); err != nil || !ft.closed {
		t.Errorf("Expected Close to close the transport, got %v", err)
	}
}
