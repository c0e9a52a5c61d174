package common

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/lib/service"
)

// ErrInvalidMessage is returned if a message can not be mapped to a request or response
var ErrInvalidMessage = errors.New("invalid message")

// --------------------------------------------------------------------------
// Request Mapping (client -> wire -> server)
// --------------------------------------------------------------------------

// RequestToMessage converts a request variant of the item service into a wire message
func RequestToMessage(req pipeline.Request) (*Message, error) {
	switch r := req.(type) {
	case *service.PingRequest:
		return NewPingRequest(r.Message), nil
	case *service.GetItemRequest:
		return NewGetRequest(r.Key), nil
	case *service.SetItemRequest:
		return NewSetRequest(r.KV.Key, r.KV.Value), nil
	case *service.DeleteItemRequest:
		return NewDeleteRequest(r.Keys), nil
	case *service.PostItemRequest:
		return NewPostRequest(r.Name), nil
	default:
		return nil, fmt.Errorf("%w: %T", pipeline.ErrUnsupportedRequest, req)
	}
}

// MessageToRequest converts a wire message into a request variant of the item service
func MessageToRequest(msg *Message) (pipeline.Request, error) {
	switch msg.MsgType {
	case MsgTPing:
		return &service.PingRequest{Message: msg.Text}, nil
	case MsgTGet:
		return &service.GetItemRequest{Key: msg.Key}, nil
	case MsgTSet:
		return &service.SetItemRequest{KV: service.KV{Key: msg.Key, Value: msg.Value}}, nil
	case MsgTDelete:
		return &service.DeleteItemRequest{Keys: msg.Keys}, nil
	case MsgTPost:
		return &service.PostItemRequest{Name: deref(msg.Text)}, nil
	default:
		return nil, fmt.Errorf("%w: %s request", pipeline.ErrUnsupportedRequest, msg.MsgType)
	}
}

// --------------------------------------------------------------------------
// Response Mapping (server -> wire -> client)
// --------------------------------------------------------------------------

// ResponseToMessage converts a response variant of the item service into a wire message
func ResponseToMessage(resp pipeline.Response) (*Message, error) {
	switch r := resp.(type) {
	case *service.PingResponse:
		return NewPingResponse(r.Message), nil
	case *service.GetItemResponse:
		return NewGetResponse(r.Value, r.Found), nil
	case *service.SetItemResponse:
		return NewSetResponse(r.Message), nil
	case *service.DeleteItemResponse:
		return NewDeleteResponse(r.Count), nil
	case *service.PostItemResponse:
		return NewPostResponse(), nil
	default:
		return nil, fmt.Errorf("%w: unknown response %T", ErrInvalidMessage, resp)
	}
}

// MessageToResponse converts a wire message into a response variant of the item service.
// Error messages are returned as *RemoteError.
func MessageToResponse(msg *Message) (pipeline.Response, error) {
	if err := ErrorFromMessage(msg); err != nil {
		return nil, err
	}

	switch msg.MsgType {
	case MsgTPing:
		return &service.PingResponse{Message: deref(msg.Text)}, nil
	case MsgTGet:
		return &service.GetItemResponse{Value: msg.Value, Found: msg.Ok}, nil
	case MsgTSet:
		return &service.SetItemResponse{Message: deref(msg.Text)}, nil
	case MsgTDelete:
		return &service.DeleteItemResponse{Count: msg.Count}, nil
	case MsgTPost:
		return &service.PostItemResponse{}, nil
	default:
		return nil, fmt.Errorf("%w: %s response", ErrInvalidMessage, msg.MsgType)
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
