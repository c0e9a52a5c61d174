package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/kvgate/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format.
//
// Layout: 1 byte MsgType, 1 byte flags, then every present field in flag order.
// Strings and byte slices are prefixed with a uint32 length, Keys with a
// uint32 count, Count is a uint64 and Err is prefixed with its 1 byte code.
// Ok has no payload, the flag itself is the value.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey   byte = 1 << 0
	hasValue byte = 1 << 1
	hasKeys  byte = 1 << 2
	hasText  byte = 1 << 3
	hasOk    byte = 1 << 4
	hasCount byte = 1 << 5
	hasErr   byte = 1 << 6
	hasMeta  byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Name() string {
	return "binary"
}

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	var flags byte
	pos := 2 // Start after MsgType and flags

	if msg.Key != "" {
		flags |= hasKey
		pos = putString(result, pos, msg.Key)
	}

	if msg.Value != "" {
		flags |= hasValue
		pos = putString(result, pos, msg.Value)
	}

	if len(msg.Keys) > 0 {
		flags |= hasKeys
		binary.BigEndian.PutUint32(result[pos:], uint32(len(msg.Keys)))
		pos += 4
		for _, key := range msg.Keys {
			pos = putString(result, pos, key)
		}
	}

	// Text is a pointer so an empty text is still sent
	if msg.Text != nil {
		flags |= hasText
		pos = putString(result, pos, *msg.Text)
	}

	if msg.Ok {
		flags |= hasOk
	}

	if msg.Count > 0 {
		flags |= hasCount
		binary.BigEndian.PutUint64(result[pos:], msg.Count)
		pos += 8
	}

	if msg.Err != "" || msg.Code != common.ErrCodeNone {
		flags |= hasErr
		result[pos] = byte(msg.Code)
		pos = putString(result, pos+1, msg.Err)
	}

	if len(msg.Meta) > 0 {
		flags |= hasMeta
		pos = putBytes(result, pos, msg.Meta)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	if pos != len(result) {
		return nil, fmt.Errorf("binary serializer: wrote %d of %d bytes", pos, len(result))
	}
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := data[1]
	r := &reader{data: data, pos: 2}

	var err error

	if flags&hasKey != 0 {
		if msg.Key, err = r.string("key"); err != nil {
			return err
		}
	}

	if flags&hasValue != 0 {
		if msg.Value, err = r.string("value"); err != nil {
			return err
		}
	}

	if flags&hasKeys != 0 {
		n, err := r.uint32("keys count")
		if err != nil {
			return err
		}
		// every key needs at least its length prefix
		if int(n) > r.remaining()/4 {
			return fmt.Errorf("data too short for %d keys", n)
		}
		msg.Keys = make([]string, n)
		for i := range msg.Keys {
			if msg.Keys[i], err = r.string("keys"); err != nil {
				return err
			}
		}
	}

	if flags&hasText != 0 {
		text, err := r.string("text")
		if err != nil {
			return err
		}
		msg.Text = &text
	}

	msg.Ok = flags&hasOk != 0

	if flags&hasCount != 0 {
		if msg.Count, err = r.uint64("count"); err != nil {
			return err
		}
	}

	if flags&hasErr != 0 {
		code, err := r.next(1, "error code")
		if err != nil {
			return err
		}
		msg.Code = common.ErrorCode(code[0])
		if msg.Err, err = r.string("error"); err != nil {
			return err
		}
	}

	if flags&hasMeta != 0 {
		meta, err := r.string("meta")
		if err != nil {
			return err
		}
		msg.Meta = []byte(meta)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Value != "" {
		size += 4 + len(msg.Value)
	}
	if len(msg.Keys) > 0 {
		size += 4 // count
		for _, key := range msg.Keys {
			size += 4 + len(key)
		}
	}
	if msg.Text != nil {
		size += 4 + len(*msg.Text)
	}
	if msg.Count > 0 {
		size += 8
	}
	if msg.Err != "" || msg.Code != common.ErrCodeNone {
		size += 1 + 4 + len(msg.Err) // code + length + error string
	}
	if len(msg.Meta) > 0 {
		size += 4 + len(msg.Meta)
	}

	return size
}

// putString writes a length prefixed string at pos and returns the new position
func putString(dst []byte, pos int, s string) int {
	binary.BigEndian.PutUint32(dst[pos:], uint32(len(s)))
	pos += 4
	return pos + copy(dst[pos:], s)
}

// putBytes writes a length prefixed byte slice at pos and returns the new position
func putBytes(dst []byte, pos int, b []byte) int {
	binary.BigEndian.PutUint32(dst[pos:], uint32(len(b)))
	pos += 4
	return pos + copy(dst[pos:], b)
}

// reader reads length prefixed fields with bounds checks
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) next(n int, field string) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, fmt.Errorf("data too short for %s", field)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) uint32(field string) (uint32, error) {
	b, err := r.next(4, field+" length")
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) uint64(field string) (uint64, error) {
	b, err := r.next(8, field)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) string(field string) (string, error) {
	n, err := r.uint32(field)
	if err != nil {
		return "", err
	}
	b, err := r.next(int(n), field+" data")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
