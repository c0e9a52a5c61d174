package common

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
)

// ErrorCode classifies the error carried by an error message
type ErrorCode uint8

const (
	ErrCodeNone        ErrorCode = iota
	ErrCodeInternal              // store or transport failure on the server
	ErrCodeRejected              // rejected by a pipeline layer
	ErrCodeUnsupported           // unknown message type or request variant
	ErrCodeUnknownShard          // shard id not served by the server
	ErrCodeBadRequest            // message could not be decoded
)

// String returns the string representation of an ErrorCode
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeInternal:
		return "internal"
	case ErrCodeRejected:
		return "rejected"
	case ErrCodeUnsupported:
		return "unsupported"
	case ErrCodeUnknownShard:
		return "unknown shard"
	case ErrCodeBadRequest:
		return "bad request"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}

// ErrorCodeOf returns the code used to send err over the wire
func ErrorCodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ErrCodeNone
	case errors.Is(err, pipeline.ErrRejected):
		return ErrCodeRejected
	case errors.Is(err, pipeline.ErrUnsupportedRequest):
		return ErrCodeUnsupported
	default:
		return ErrCodeInternal
	}
}

// RemoteError is an error returned by the server inside an error message.
// It unwraps to the matching pipeline error, so errors.Is(err, pipeline.ErrRejected)
// holds on both sides of the wire.
type RemoteError struct {
	Code ErrorCode
	Msg  string
}

func (e *RemoteError) Error() string {
	return e.Msg
}

func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case ErrCodeRejected:
		return pipeline.ErrRejected
	case ErrCodeUnsupported:
		return pipeline.ErrUnsupportedRequest
	default:
		return nil
	}
}

// ErrorFromMessage returns the error carried by msg, or nil if msg is not an error message
func ErrorFromMessage(msg *Message) error {
	if msg.MsgType != MsgTError && msg.Err == "" {
		return nil
	}
	text := msg.Err
	if text == "" {
		text = msg.Code.String()
	}
	return &RemoteError{Code: msg.Code, Msg: text}
}
