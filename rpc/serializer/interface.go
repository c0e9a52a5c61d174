package serializer

import "github.com/ValentinKolb/kvgate/rpc/common"

// IRPCSerializer converts a common.Message to bytes and back.
// Implementations are stateless and safe for concurrent use.
type IRPCSerializer interface {
	// Name returns the name used on the command line (json, gob, binary)
	Name() string
	// Serialize encodes msg
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg. Fields of msg that are not present in b are reset.
	Deserialize(b []byte, msg *common.Message) error
}
