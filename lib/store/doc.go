// Package store provides a high-level interface for key-value storage operations
// with unified error handling. It is the only mutable shared resource of a kvgate
// server and is never exposed directly to callers: every access goes through the
// service layer in lib/service.
//
// The package focuses on:
//   - A unified interface (IStore) for key-value operations across different backends
//   - Pluggable storage backends through the Factory pattern
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining Get, Set and Delete plus an
//     informational GetInfo method. Absence of a key is reported through the
//     loaded flag of Get and never as an error. Delete works on a list of keys and
//     reports how many of them existed.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages. This system allows applications to make informed
//     decisions based on specific error conditions rather than generic errors.
//
//   - Info: Operation counters and the current key count of a store, collected by
//     the implementation and reported on server shutdown.
//
// Implementations:
//
//	- Local Store (lstore): A map guarded by a single mutex. Every operation holds
//	  the mutex for its whole duration, so readers and writers are mutually
//	  exclusive and no operation observes a partially applied mutation.
//	  Available in the "github.com/ValentinKolb/kvgate/lib/store/lstore" package.
//
// A conformance test suite for implementations lives in the
// "github.com/ValentinKolb/kvgate/lib/store/testing" package.
package store
