// Package codec provides the value encodings a store namespace can be opened with.
//
// Key Components:
//
//   - ICodec: Core interface that all codecs must satisfy.
//
//   - jsonCodecImpl: JSON encoding. The default, values are stored as structured
//     data so lists and maps round trip directly and stay readable in every backend.
//
//   - yamlCodecImpl: YAML encoding, useful when values are inspected by hand.
//
//   - gobCodecImpl: Go's gob encoding. Compact but only readable from Go.
//
//   - rawCodecImpl: No encoding at all, only []byte and string values are accepted.
//
// Thread Safety:
//
//	All codecs are stateless and safe for concurrent use.
//
// Usage:
//
//	c, err := codec.New(codec.EncodingJSON)
//	data, err := c.Encode([]string{"English", "French"})
//	var categories []string
//	err = c.Decode(data, &categories)
package codec
