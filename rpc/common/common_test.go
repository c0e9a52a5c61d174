package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/lib/service"
)

func TestRequestMapping(t *testing.T) {
	requests := []pipeline.Request{
		service.NewPingRequest("hello"),
		service.NewPingRequest(""),
		&service.PingRequest{},
		&service.GetItemRequest{Key: "a"},
		&service.SetItemRequest{KV: service.KV{Key: "a", Value: "1"}},
		&service.DeleteItemRequest{Keys: []string{"a", "b"}},
		&service.PostItemRequest{Name: "item"},
	}

	for _, req := range requests {
		t.Run(fmt.Sprint(req), func(t *testing.T) {
			msg, err := RequestToMessage(req)
			if err != nil {
				t.Fatalf("RequestToMessage returned error: %v", err)
			}
			if msg.MsgType.String() != req.Method() {
				t.Errorf("Expected message type %s, got %s", req.Method(), msg.MsgType)
			}
			back, err := MessageToRequest(msg)
			if err != nil {
				t.Fatalf("MessageToRequest returned error: %v", err)
			}
			if !reflect.DeepEqual(req, back) {
				t.Errorf("Expected %#v, got %#v", req, back)
			}
		})
	}
}

func TestPingTextSurvivesJSON(t *testing.T) {
	empty := ""
	for _, text := range []*string{nil, &empty} {
		data, err := json.Marshal(NewPingRequest(text))
		if err != nil {
			t.Fatalf("Marshal returned error: %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Unmarshal returned error: %v", err)
		}
		if (text == nil) != (msg.Text == nil) {
			t.Errorf("Expected text presence %t, got message %s", text != nil, data)
		}
	}
}

func TestResponseMapping(t *testing.T) {
	responses := []pipeline.Response{
		&service.PingResponse{Message: service.PongMessage},
		&service.GetItemResponse{Value: "1", Found: true},
		&service.GetItemResponse{},
		&service.SetItemResponse{Message: service.SetOKMessage},
		&service.DeleteItemResponse{Count: 3},
		&service.PostItemResponse{},
	}

	for _, resp := range responses {
		msg, err := ResponseToMessage(resp)
		if err != nil {
			t.Fatalf("ResponseToMessage(%T) returned error: %v", resp, err)
		}
		back, err := MessageToResponse(msg)
		if err != nil {
			t.Fatalf("MessageToResponse(%T) returned error: %v", resp, err)
		}
		if !reflect.DeepEqual(resp, back) {
			t.Errorf("Expected %#v, got %#v", resp, back)
		}
	}
}

func TestUnknownMessageType(t *testing.T) {
	_, err := MessageToRequest(&Message{MsgType: MsgTUnknown})
	if !errors.Is(err, pipeline.ErrUnsupportedRequest) {
		t.Errorf("Expected ErrUnsupportedRequest, got %v", err)
	}

	_, err = MessageToResponse(&Message{MsgType: MsgTUnknown})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("Expected ErrInvalidMessage, got %v", err)
	}
}

func TestRemoteErrors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		code     ErrorCode
		sentinel error
	}{
		{"rejected", pipeline.ErrRejected, ErrCodeRejected, pipeline.ErrRejected},
		{"wrapped unsupported", fmt.Errorf("%w: x", pipeline.ErrUnsupportedRequest), ErrCodeUnsupported, pipeline.ErrUnsupportedRequest},
		{"internal", errors.New("disk on fire"), ErrCodeInternal, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCodeOf(tc.err)
			if code != tc.code {
				t.Fatalf("Expected code %s, got %s", tc.code, code)
			}

			_, err := MessageToResponse(NewErrorResponse(code, tc.err.Error()))
			if err == nil {
				t.Fatal("Expected error from error message")
			}
			if err.Error() != tc.err.Error() {
				t.Errorf("Expected error text %q, got %q", tc.err.Error(), err.Error())
			}
			if tc.sentinel != nil && !errors.Is(err, tc.sentinel) {
				t.Errorf("Expected error to unwrap to %v", tc.sentinel)
			}
			var remote *RemoteError
			if !errors.As(err, &remote) || remote.Code != tc.code {
				t.Errorf("Expected *RemoteError with code %s, got %#v", tc.code, err)
			}
		})
	}

	if ErrorCodeOf(nil) != ErrCodeNone {
		t.Error("Expected ErrCodeNone for nil error")
	}
}

func TestMessageTypeJSON(t *testing.T) {
	data, err := json.Marshal(NewDeleteRequest([]string{"a"}))
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !strings.Contains(string(data), `"msg_type":"delete"`) {
		t.Errorf("Expected message type as string, got %s", data)
	}

	var mt MessageType
	if err := json.Unmarshal([]byte(`"nope"`), &mt); err == nil {
		t.Error("Expected error for unknown message type")
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "DEBUG", ""} {
		if _, err := ParseLogLevel(level); err != nil {
			t.Errorf("ParseLogLevel(%q) returned error: %v", level, err)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestConfigString(t *testing.T) {
	server := ServerConfig{
		Shards:        []uint64{1, 2},
		Layers:        []string{"trace", "logging"},
		TimeoutSecond: 5,
		LogLevel:      "info",
		Transport:     ServerTransportConfig{Endpoint: "127.0.0.1:10818", WorkersPerConn: 4},
	}
	out := server.String()
	for _, expected := range []string{"127.0.0.1:10818", "trace -> logging", "5 sec"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected server config to contain %q:\n%s", expected, out)
		}
	}

	client := ClientConfig{Transport: ClientTransportConfig{Endpoints: []string{"a:1", "b:2"}}}
	out = client.String()
	if !strings.Contains(out, "a:1") || !strings.Contains(out, "b:2") {
		t.Errorf("Expected client config to list endpoints:\n%s", out)
	}
}
