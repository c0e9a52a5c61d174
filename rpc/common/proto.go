package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string   `json:"key,omitempty"`   // Used for: Get, Set (request)
	Value string   `json:"value,omitempty"` // Used for: Set (request), Get (response)
	Keys  []string `json:"keys,omitempty"`  // Used for: Delete (request)
	Text  *string  `json:"text,omitempty"`  // Used for: Ping, Post (request), Ping, Set (response)

	// Response only fields
	Ok    bool      `json:"ok,omitempty"`    // Used for: Get responses (key found)
	Count uint64    `json:"count,omitempty"` // Used for: Delete responses
	Err   string    `json:"err,omitempty"`   // Empty if no error, otherwise contains the error message
	Code  ErrorCode `json:"code,omitempty"`  // Classifies Err

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Request id of the call
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewPingRequest creates a new Ping request, text may be nil
func NewPingRequest(text *string) *Message {
	return &Message{
		MsgType: MsgTPing,
		Text:    text,
	}
}

// NewPingResponse creates a new Ping response
func NewPingResponse(text string) *Message {
	return &Message{
		MsgType: MsgTPing,
		Text:    &text,
	}
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value string, ok bool) *Message {
	return &Message{
		MsgType: MsgTGet,
		Value:   value,
		Ok:      ok,
	}
}

// NewSetRequest creates a new Set request
func NewSetRequest(key, value string) *Message {
	return &Message{
		MsgType: MsgTSet,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(text string) *Message {
	return &Message{
		MsgType: MsgTSet,
		Text:    &text,
	}
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(keys []string) *Message {
	return &Message{
		MsgType: MsgTDelete,
		Keys:    keys,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(count uint64) *Message {
	return &Message{
		MsgType: MsgTDelete,
		Count:   count,
	}
}

// NewPostRequest creates a new Post request
func NewPostRequest(name string) *Message {
	return &Message{
		MsgType: MsgTPost,
		Text:    &name,
	}
}

// NewPostResponse creates a new Post response
func NewPostResponse() *Message {
	return &Message{
		MsgType: MsgTPost,
	}
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(code ErrorCode, err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Code:    code,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTPing:
		return "ping"
	case MsgTGet:
		return "get"
	case MsgTSet:
		return "set"
	case MsgTDelete:
		return "delete"
	case MsgTPost:
		return "post"
	case MsgTError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "ping":
		*t = MsgTPing
	case "get":
		*t = MsgTGet
	case "set":
		*t = MsgTSet
	case "delete":
		*t = MsgTDelete
	case "post":
		*t = MsgTPost
	case "error":
		*t = MsgTError
	case "unknown":
		*t = MsgTUnknown
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTError               // Indicates an error occurred

	// Item service operations

	MsgTPing   // Liveness check with optional echo text
	MsgTGet    // Get a value by key
	MsgTSet    // Set a key-value pair
	MsgTDelete // Delete a list of keys
	MsgTPost   // Reserved
)
