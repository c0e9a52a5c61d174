package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Factory is a function type that creates a new store.
// It lets the composition root decide which implementation backs a shard.
type Factory func() IStore

// IStore is the generic interface for interacting with a key–value store.
// All write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
type IStore interface {
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	// A missing key is not an error.
	Get(key string) (value string, loaded bool, err error)
	// Set inserts or updates a key–value pair.
	Set(key string, value string) (err error)
	// Delete removes all given keys that exist and returns how many were removed.
	// Keys that do not exist are skipped. The count is taken from a single consistent view of the store.
	Delete(keys []string) (count uint64, err error)
	// GetInfo returns metadata about the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetInfo() (info Info, err error)
}

// Info describes the current state of a store
type Info struct {
	Keys    int64   `json:"keys"`
	Gets    int64   `json:"gets"`
	Sets    int64   `json:"sets"`
	Deletes int64   `json:"deletes"`
	GetRate float64 `json:"get_rate_1m"`
	SetRate float64 `json:"set_rate_1m"`
}

// String returns a compact single line representation of the info
func (i Info) String() string {
	return fmt.Sprintf("keys=%d gets=%d sets=%d deletes=%d get/s(1m)=%.2f set/s(1m)=%.2f",
		i.Keys, i.Gets, i.Sets, i.Deletes, i.GetRate, i.SetRate)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the store.
	RetCInvalidOperation                    // 3: Invalid operation.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
