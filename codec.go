package mockwire

// Codec provides content-type aware marshaling for descriptors and field
// payloads. Implementations must be safe for concurrent use.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/msgpack").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
