package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/kvgate/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding.
// The message type is encoded by name, e.g. {"msg_type":"get","key":"a"}.
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Name() string {
	return "json"
}

func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("json serializer: %w", err)
	}
	return b, nil
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	if err := json.Unmarshal(b, msg); err != nil {
		return fmt.Errorf("json serializer: %w", err)
	}
	return nil
}
