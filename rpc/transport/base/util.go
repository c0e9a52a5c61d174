package base

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
)

// Frame layout, all integers big endian:
//
//	| shardId uint64 | requestId uint64 | length uint32 | payload (length bytes) |
const (
	frameHeaderSize = 20

	// MaxFrameSize limits the payload of a single frame
	MaxFrameSize = 64 << 20
)

// ErrFrameTooLarge is returned if a payload exceeds MaxFrameSize
var ErrFrameTooLarge = errors.New("frame too large")

type frameHeader struct {
	shardID   uint64
	requestID uint64
	length    uint32
}

func (h frameHeader) encode(dst []byte) {
	binary.BigEndian.PutUint64(dst[0:8], h.shardID)
	binary.BigEndian.PutUint64(dst[8:16], h.requestID)
	binary.BigEndian.PutUint32(dst[16:20], h.length)
}

func decodeFrameHeader(src []byte) frameHeader {
	return frameHeader{
		shardID:   binary.BigEndian.Uint64(src[0:8]),
		requestID: binary.BigEndian.Uint64(src[8:16]),
		length:    binary.BigEndian.Uint32(src[16:20]),
	}
}

// writeFrame writes header and payload with a single vectored write
func writeFrame(conn net.Conn, shardID uint64, requestID uint64, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}

	header := make([]byte, frameHeaderSize)
	frameHeader{shardID: shardID, requestID: requestID, length: uint32(len(data))}.encode(header)

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads the next frame into buf.
// buf may be nil or too small, then a new slice is allocated. The returned
// payload aliases buf if it fits.
func readFrame(conn net.Conn, buf []byte) (uint64, uint64, []byte, error) {
	if len(buf) < frameHeaderSize {
		buf = make([]byte, frameHeaderSize)
	}

	if _, err := io.ReadFull(conn, buf[:frameHeaderSize]); err != nil {
		return 0, 0, nil, err
	}
	h := decodeFrameHeader(buf)

	if h.length == 0 {
		return h.shardID, h.requestID, []byte{}, nil
	}
	if h.length > MaxFrameSize {
		return 0, 0, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, h.length)
	}

	if len(buf) < int(h.length) {
		buf = make([]byte, h.length)
	}

	// a truncated payload is an unexpected EOF, not a clean close
	if _, err := io.ReadFull(conn, buf[:h.length]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, 0, nil, err
	}

	return h.shardID, h.requestID, buf[:h.length], nil
}
