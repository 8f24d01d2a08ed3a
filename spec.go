package mockwire

import (
	"reflect"
	"sort"
)

// InterfaceSet is a mutable set of interface type identities. The zero value
// is not usable; construct with NewInterfaceSet. Enablement mutates the set
// in place, so specifications must be built with a live set.
type InterfaceSet map[reflect.Type]struct{}

// NewInterfaceSet builds a set from the given interface types.
func NewInterfaceSet(types ...reflect.Type) InterfaceSet {
	s := make(InterfaceSet, len(types))
	for _, t := range types {
		s.Add(t)
	}
	return s
}

// Add inserts an interface type. Panics if t is not an interface type;
// extra capabilities are interfaces by construction.
func (s InterfaceSet) Add(t reflect.Type) {
	if t.Kind() != reflect.Interface {
		panic("mockwire: extra interface must be an interface type, got " + t.String())
	}
	s[t] = struct{}{}
}

// Has reports whether the interface type is present.
func (s InterfaceSet) Has(t reflect.Type) bool {
	_, ok := s[t]
	return ok
}

// Types returns the members sorted by type name, giving a deterministic
// order for wire encoding and proxy generation.
func (s InterfaceSet) Types() []reflect.Type {
	out := make([]reflect.Type, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Specification describes how a mock proxy is to be constructed: the base
// type it stands in for, the extra interfaces it must implement, and
// whether it is serializable. The mock-configuration layer owns it;
// mockwire reads it and performs the single enablement mutation.
type Specification struct {
	// BaseType is the interface the proxy stands in for.
	BaseType reflect.Type

	// ExtraInterfaces are additional interfaces the generated proxy must
	// implement. Must be mutable (non-nil) at enablement time; a nil set
	// with Serializable set is a caller bug.
	ExtraInterfaces InterfaceSet

	// Capabilities are explicit ability tags granted to proxies of this
	// specification.
	Capabilities CapabilitySet

	// Serializable requests that proxies of this specification survive
	// serialization across processes.
	Serializable bool
}

// SpecificationOption configures a Specification.
type SpecificationOption func(*Specification)

// WithExtraInterfaces adds extra capability interfaces to the specification.
func WithExtraInterfaces(types ...reflect.Type) SpecificationOption {
	return func(s *Specification) {
		for _, t := range types {
			s.ExtraInterfaces.Add(t)
		}
	}
}

// WithSerializable marks the specification as serializable.
func WithSerializable() SpecificationOption {
	return func(s *Specification) {
		s.Serializable = true
	}
}

// NewSpecification builds a specification for the given base interface type
// with live (mutable) interface and capability sets.
func NewSpecification(base reflect.Type, opts ...SpecificationOption) *Specification {
	s := &Specification{
		BaseType:        base,
		ExtraInterfaces: NewInterfaceSet(),
		Capabilities:    make(CapabilitySet),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
