// Package service implements the item service of kvgate: the business logic that
// maps each request variant to a store operation and a response variant.
//
// The service performs no validation and no I/O besides the store. It is meant
// to be wrapped by the middleware pipeline (lib/pipeline), which adds logging,
// rejection rules and metrics without touching the code in this package.
//
// Operations:
//
//   - Ping: echoes the request message, or "PONG" if the request has none.
//   - GetItem: returns the stored value; a missing key yields an empty value
//     with Found=false.
//   - SetItem: upserts a record and answers "OK".
//   - DeleteItem: removes a list of keys and returns how many existed.
//   - PostItem: reserved, returns an empty response.
package service
