package mockwire

import (
	"reflect"

	"github.com/zoobzio/sentinel"
)

// Tag classifies the class descriptor that follows it in the stream.
type Tag byte

const (
	// TagOrdinary precedes a descriptor for a registered, named type that
	// the decoder resolves by recorded name.
	TagOrdinary Tag = 0x01

	// TagSynthesizedProxy precedes a descriptor for a type belonging to the
	// generator's family; the decoder regenerates it instead of resolving
	// the recorded name.
	TagSynthesizedProxy Tag = 0x02
)

// IsValidTag checks if the given tag is known to this protocol.
func IsValidTag(t Tag) bool {
	return t == TagOrdinary || t == TagSynthesizedProxy
}

// FieldDescriptor records a single field's identity within a descriptor.
type FieldDescriptor struct {
	Name string `json:"name" msgpack:"name" yaml:"name"`
	Type string `json:"type" msgpack:"type" yaml:"type"`
}

// Descriptor is the protocol record describing a type's identity within the
// stream. RecordedName is what the encoder wrote; ResolvedName is filled in
// during decoding and is intentionally mutable: for a synthesized proxy the
// decoder overwrites it with the regenerated type's name so downstream field
// matching sees a consistent record.
type Descriptor struct {
	RecordedName string            `json:"recorded" msgpack:"recorded" yaml:"recorded"`
	Fields       []FieldDescriptor `json:"fields,omitempty" msgpack:"fields,omitempty" yaml:"fields,omitempty"`

	// Decode-side only, never on the wire.
	ResolvedName string `json:"-" msgpack:"-" yaml:"-"`
	resolvedType reflect.Type
}

// Resolve patches the descriptor to reference a resolved type. The rest of
// decoding reads fields by matching recorded names against this type.
func (d *Descriptor) Resolve(name string, t reflect.Type) {
	d.ResolvedName = name
	d.resolvedType = t
}

// ResolvedType returns the type patched in by Resolve, or nil.
func (d *Descriptor) ResolvedType() reflect.Type {
	return d.resolvedType
}

// describe builds the wire descriptor for a type, capturing exported field
// metadata. Named struct types already scanned by sentinel reuse its cached
// metadata; everything else gets a direct scan.
func describe(r *Registry, t reflect.Type) *Descriptor {
	d := &Descriptor{RecordedName: r.NameOf(t)}

	meta := metadataFor(t)
	if meta == nil {
		return d
	}
	for _, f := range meta.Fields {
		d.Fields = append(d.Fields, FieldDescriptor{Name: f.Name, Type: f.Type})
	}
	return d
}

// metadataFor returns sentinel metadata for struct types, nil otherwise.
func metadataFor(t reflect.Type) *sentinel.Metadata {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	// sentinel caches by bare type name; synthesized types are unnamed and
	// never cached.
	if name := t.Name(); name != "" {
		if meta, ok := sentinel.Lookup(name); ok {
			return &meta
		}
	}

	meta := sentinel.Metadata{
		TypeName:    t.Name(),
		PackageName: t.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, t.NumField()),
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		// Embedded interface fields are hook markers, not serializable
		// state. Named interface fields record composition and stay.
		if sf.Anonymous && sf.Type.Kind() == reflect.Interface {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
		}
		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Pointer:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}
		meta.Fields = append(meta.Fields, fm)
	}
	return &meta
}
