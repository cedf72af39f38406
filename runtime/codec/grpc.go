package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the content subtype under which JSONCodec is registered.
const Name = "json"

// JSONCodec carries wire messages as JSON over gRPC. It is registered with
// the gRPC encoding registry on package load and forced on every call by
// the transport, so peers must accept application/grpc+json.
type JSONCodec struct{}

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

// Marshal implements encoding.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: marshal %T: %w", v, err)
	}
	return b, nil
}

// Unmarshal implements encoding.Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: unmarshal %T: %w", v, err)
	}
	return nil
}

// Name implements encoding.Codec.
func (JSONCodec) Name() string { return Name }
