// Package unix provides the framed transport of package base over Unix domain
// sockets, for clients running on the same machine as the server.
//
// Endpoints are socket paths, optionally prefixed with unix://. An existing
// socket file is removed before the server listens. The default server read
// buffer is 64 KB.
package unix
