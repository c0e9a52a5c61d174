package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/ValentinKolb/kvgate/rpc/common"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// gob omits zero values, so an empty ping text is decoded as no text.
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

type gobSerializerImpl struct{}

// encode buffers are reused, the encoded bytes are copied out
var gobBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Name() string {
	return "gob"
}

func (g gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	buf := gobBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer gobBufferPool.Put(buf)

	if err := gob.NewEncoder(buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("gob serializer: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(msg); err != nil {
		return fmt.Errorf("gob serializer: %w", err)
	}
	return nil
}
