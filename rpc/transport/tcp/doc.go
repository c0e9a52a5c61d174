// Package tcp provides the framed transport of package base over TCP.
//
// Endpoints are host:port addresses, optionally prefixed with tcp://. The
// socket options (TCP_NODELAY, keep alive, linger, buffer sizes) are taken from
// the TCPConf and SocketConf of the client or server config. The default server
// read buffer is 512 KB.
package tcp
