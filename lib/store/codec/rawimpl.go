package codec

import (
	"fmt"
)

// NewRawCodec creates a codec that stores []byte and string values without any encoding
func NewRawCodec() ICodec {
	return &rawCodecImpl{}
}

// rawCodecImpl implements the ICodec interface without encoding
type rawCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (r rawCodecImpl) Encode(v any) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		out := make([]byte, len(val))
		copy(out, val)
		return out, nil
	case string:
		return []byte(val), nil
	default:
		return nil, fmt.Errorf("raw encoding only supports []byte and string, got %T", v)
	}
}

func (r rawCodecImpl) Decode(b []byte, v any) error {
	switch out := v.(type) {
	case *[]byte:
		*out = make([]byte, len(b))
		copy(*out, b)
		return nil
	case *string:
		*out = string(b)
		return nil
	default:
		return fmt.Errorf("raw encoding only decodes into *[]byte and *string, got %T", v)
	}
}

func (r rawCodecImpl) Encoding() Encoding {
	return EncodingRaw
}
