// Package cmd implements the command-line interface of kvgate. It provides a
// hierarchical command structure for running the server and the HTTP gateway
// and for interacting with a server as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts the RPC server, optionally with an embedded HTTP gateway
//   - gateway: Starts a standalone HTTP gateway in front of a server
//   - kv: Client commands (get, set, del, ping, post, repl, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set as environment variables with the prefix KVGATE_
// (e.g. KVGATE_LOG_LEVEL=debug), .env and .env.local files are loaded as well.
//
// See kvgate -help for a list of all commands.
package cmd
