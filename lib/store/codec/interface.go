package codec

import "fmt"

// Encoding names a value encoding that can be selected per namespace
type Encoding string

const (
	EncodingJSON Encoding = "json" // structured, default
	EncodingYAML Encoding = "yaml" // structured, human readable
	EncodingGob  Encoding = "gob"  // structured, Go only
	EncodingRaw  Encoding = "raw"  // []byte and string values are stored as they are
)

// ICodec is the interface for all value codecs
type ICodec interface {
	// Encode encodes a value into a byte array
	Encode(v any) ([]byte, error)
	// Decode decodes a byte array into the value pointed to by v
	Decode(b []byte, v any) error
	// Encoding returns the name of the encoding
	Encoding() Encoding
}

// New returns the codec for the encoding
func New(enc Encoding) (ICodec, error) {
	switch enc {
	case EncodingJSON, "":
		return NewJSONCodec(), nil
	case EncodingYAML:
		return NewYAMLCodec(), nil
	case EncodingGob:
		return NewGOBCodec(), nil
	case EncodingRaw:
		return NewRawCodec(), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
}
