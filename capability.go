package mockwire

// Capability is an explicit tag describing an ability a mock specification
// grants its proxies. Capabilities replace structural probing ("does the
// proxy implement marker interface X") with a direct check on the spec.
type Capability string

const (
	// CapabilitySubstitution marks a proxy whose encoding is routed through
	// the substitution hook. Added by Serializer.Enable when the spec is
	// serializable.
	CapabilitySubstitution Capability = "substitution"

	// CapabilityRegeneration marks a proxy whose type may be re-synthesized
	// in a receiving process from the spec's base type and extra interfaces.
	CapabilityRegeneration Capability = "regeneration"
)

// validCapabilities contains all known capabilities for validation.
var validCapabilities = map[Capability]bool{
	CapabilitySubstitution: true,
	CapabilityRegeneration: true,
}

// IsValidCapability checks if the given capability is known.
func IsValidCapability(c Capability) bool {
	return validCapabilities[c]
}

// CapabilitySet is a mutable set of capabilities on a specification.
type CapabilitySet map[Capability]struct{}

// Add inserts a capability. Adding an existing capability is a no-op.
func (s CapabilitySet) Add(c Capability) {
	s[c] = struct{}{}
}

// Has reports whether the capability is present.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}
