package mockwire

import (
	"testing"
)

func TestIsValidTag(t *testing.T) {
	tests := []struct {
		name string
		tag  Tag
		want bool
	}{
		{"ordinary", TagOrdinary, true},
		{"synthesized proxy", TagSynthesizedProxy, true},
		{"zero", Tag(0x00), false},
		{"unknown high", Tag(0xFF), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTag(tt.tag); got != tt.want {
				t.Errorf("IsValidTag(0x%02x) = %v, want %v", byte(tt.tag), got, tt.want)
			}
		})
	}
}

func TestDescribe_StructFields(t *testing.T) {
	r := freshRegistry()
	r.RegisterName("mockwire_test.gadget", gadget{})

	d := describe(r, gadgetType)

	if d.RecordedName != "mockwire_test.gadget" {
		t.Errorf("RecordedName = %q, want %q", d.RecordedName, "mockwire_test.gadget")
	}
	want := map[string]string{"Label": "string", "Count": "int"}
	if len(d.Fields) != len(want) {
		t.Fatalf("captured %d fields, want %d: %+v", len(d.Fields), len(want), d.Fields)
	}
	for _, f := range d.Fields {
		typ, ok := want[f.Name]
		if !ok {
			t.Errorf("unexpected field %q", f.Name)
			continue
		}
		if f.Type != typ {
			t.Errorf("field %s type = %q, want %q", f.Name, f.Type, typ)
		}
	}
}

func TestDescribe_SkipsHookBindings(t *testing.T) {
	r := freshRegistry()
	d := describe(r, stubProxyType)

	// The embedded marker interfaces carry bindings, not state; only the
	// state map is a wire field.
	if len(d.Fields) != 1 || d.Fields[0].Name != "State" {
		t.Fatalf("fields = %+v, want only State", d.Fields)
	}
}

func TestDescribe_InterfaceHasNoFields(t *testing.T) {
	r := freshRegistry()
	d := describe(r, widgetType)

	if d.RecordedName != "mockwire_test.widget" {
		t.Errorf("RecordedName = %q, want registered name", d.RecordedName)
	}
	if len(d.Fields) != 0 {
		t.Errorf("interface descriptor should carry no fields, got %+v", d.Fields)
	}
}

func TestDescribe_UnregisteredFallsBackToTypeString(t *testing.T) {
	r := NewRegistry()
	d := describe(r, gadgetType)

	if d.RecordedName != "mockwire.gadget" {
		t.Errorf("RecordedName = %q, want type string fallback", d.RecordedName)
	}
}

func TestDescriptor_Resolve(t *testing.T) {
	d := &Descriptor{RecordedName: "mockwire_test.gadget"}

	if d.ResolvedType() != nil {
		t.Fatal("fresh descriptor should have no resolved type")
	}

	d.Resolve("mockwire.gadget", gadgetType)

	if d.ResolvedName != "mockwire.gadget" {
		t.Errorf("ResolvedName = %q, want %q", d.ResolvedName, "mockwire.gadget")
	}
	if d.ResolvedType() != gadgetType {
		t.Errorf("ResolvedType() = %v, want %v", d.ResolvedType(), gadgetType)
	}
	// The recorded name stays what the encoder wrote.
	if d.RecordedName != "mockwire_test.gadget" {
		t.Errorf("Resolve must not touch RecordedName, got %q", d.RecordedName)
	}

	// Resolve is overwritable: a later resolution wins.
	d.Resolve("mockwire.stubProxy", stubProxyType)
	if d.ResolvedName != "mockwire.stubProxy" || d.ResolvedType() != stubProxyType {
		t.Error("second Resolve should overwrite the first")
	}
}
