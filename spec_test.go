package mockwire

import (
	"reflect"
	"testing"
)

func TestInterfaceSet_AddAndHas(t *testing.T) {
	s := NewInterfaceSet()
	s.Add(widgetType)

	if !s.Has(widgetType) {
		t.Error("added interface should be present")
	}
	if s.Has(SubstitutableType) {
		t.Error("absent interface should not be present")
	}
}

func TestInterfaceSet_AddNonInterfacePanics(t *testing.T) {
	s := NewInterfaceSet()
	defer func() {
		if recover() == nil {
			t.Error("adding a struct type should panic")
		}
	}()
	s.Add(gadgetType)
}

func TestInterfaceSet_TypesDeterministic(t *testing.T) {
	s := NewInterfaceSet(SubstitutableType, widgetType, ImposterType)

	first := s.Types()
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(s.Types(), first) {
			t.Fatal("Types() order must be stable across calls")
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].String() >= first[i].String() {
			t.Errorf("Types() not sorted: %v before %v", first[i-1], first[i])
		}
	}
}

func TestNewSpecification(t *testing.T) {
	spec := NewSpecification(widgetType,
		WithSerializable(),
		WithExtraInterfaces(SubstitutableType))

	if spec.BaseType != widgetType {
		t.Errorf("BaseType = %v", spec.BaseType)
	}
	if !spec.Serializable {
		t.Error("WithSerializable should mark the spec")
	}
	if !spec.ExtraInterfaces.Has(SubstitutableType) {
		t.Error("WithExtraInterfaces should populate the set")
	}
	if spec.Capabilities == nil {
		t.Error("capability set should be live")
	}
}

func TestCapabilities(t *testing.T) {
	set := make(CapabilitySet)
	set.Add(CapabilitySubstitution)

	if !set.Has(CapabilitySubstitution) {
		t.Error("added capability should be present")
	}
	if set.Has(CapabilityRegeneration) {
		t.Error("absent capability should not be present")
	}

	if !IsValidCapability(CapabilitySubstitution) || !IsValidCapability(CapabilityRegeneration) {
		t.Error("known capabilities should validate")
	}
	if IsValidCapability(Capability("telepathy")) {
		t.Error("unknown capability should not validate")
	}
}
