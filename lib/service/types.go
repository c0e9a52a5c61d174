package service

import (
	"fmt"
	"strings"
)

// Method names of the item service, shared by requests, responses, metrics and logs.
const (
	MethodPing   = "ping"
	MethodGet    = "get"
	MethodSet    = "set"
	MethodDelete = "delete"
	MethodPost   = "post"
)

// PongMessage is returned by Ping when the request carries no message.
const PongMessage = "PONG"

// SetOKMessage acknowledges a successful SetItem.
const SetOKMessage = "OK"

// --------------------------------------------------------------------------
// Requests
// --------------------------------------------------------------------------

// KV is a single record
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type PingRequest struct {
	// Message is optional, nil means the caller sent no message at all
	Message *string
}

type GetItemRequest struct {
	Key string
}

type SetItemRequest struct {
	KV KV
}

type DeleteItemRequest struct {
	Keys []string
}

type PostItemRequest struct {
	Name string
}

// NewPingRequest creates a ping carrying msg
func NewPingRequest(msg string) *PingRequest {
	return &PingRequest{Message: &msg}
}

func (r *PingRequest) Method() string       { return MethodPing }
func (r *GetItemRequest) Method() string    { return MethodGet }
func (r *SetItemRequest) Method() string    { return MethodSet }
func (r *DeleteItemRequest) Method() string { return MethodDelete }
func (r *PostItemRequest) Method() string   { return MethodPost }

func (r *PingRequest) String() string {
	if r.Message == nil {
		return "PingRequest{message: None}"
	}
	return fmt.Sprintf("PingRequest{message: %q}", *r.Message)
}

func (r *GetItemRequest) String() string {
	return fmt.Sprintf("GetItemRequest{key: %q}", r.Key)
}

func (r *SetItemRequest) String() string {
	return fmt.Sprintf("SetItemRequest{kv: %q=%q}", r.KV.Key, r.KV.Value)
}

func (r *DeleteItemRequest) String() string {
	return fmt.Sprintf("DeleteItemRequest{keys: [%s]}", strings.Join(r.Keys, ", "))
}

func (r *PostItemRequest) String() string {
	return fmt.Sprintf("PostItemRequest{name: %q}", r.Name)
}

// --------------------------------------------------------------------------
// Responses
// --------------------------------------------------------------------------

type PingResponse struct {
	Message string
}

type GetItemResponse struct {
	// Value is empty if the key was not found
	Value string
	// Found distinguishes a missing key from a stored empty string
	Found bool
}

type SetItemResponse struct {
	Message string
}

type DeleteItemResponse struct {
	Count uint64
}

type PostItemResponse struct{}

func (r *PingResponse) Method() string       { return MethodPing }
func (r *GetItemResponse) Method() string    { return MethodGet }
func (r *SetItemResponse) Method() string    { return MethodSet }
func (r *DeleteItemResponse) Method() string { return MethodDelete }
func (r *PostItemResponse) Method() string   { return MethodPost }
