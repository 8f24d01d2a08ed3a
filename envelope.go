package mockwire

import (
	"bytes"

	"golang.org/x/crypto/blake2b"
)

// Envelope is the substitute written to the stream in place of a live
// proxy. It carries the proxy's fully encoded state and the durable
// metadata needed to regenerate an equivalent proxy type in the receiving
// process. Envelopes are created fresh on every successful substitution and
// consumed exactly once by Serializer.Resolve.
type Envelope struct {
	// Payload is the proxy's state as written by the marker-aware encoder.
	Payload []byte `json:"payload" msgpack:"payload" yaml:"payload"`

	// BaseType is the registry name of the interface the proxy stands in
	// for.
	BaseType string `json:"base_type" msgpack:"base_type" yaml:"base_type"`

	// ExtraInterfaces are the registry names of the extra capability
	// interfaces the regenerated proxy must implement.
	ExtraInterfaces []string `json:"extra_interfaces,omitempty" msgpack:"extra_interfaces,omitempty" yaml:"extra_interfaces,omitempty"`

	// Digest is the blake2b-256 sum of Payload, verified before decoding.
	Digest []byte `json:"digest" msgpack:"digest" yaml:"digest"`
}

// Registry names every serializer installs so both ends resolve the
// envelope and the hook marker identically without user registration.
const (
	envelopeName      = "mockwire.Envelope"
	substitutableName = "mockwire.Substitutable"
)

// digest computes the payload checksum stored in the envelope.
func digest(payload []byte) []byte {
	sum := blake2b.Sum256(payload)
	return sum[:]
}

// Verify checks the payload against the recorded digest.
func (e *Envelope) Verify() bool {
	return bytes.Equal(digest(e.Payload), e.Digest)
}
