package mockwire

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
)

// Encoder writes objects to a stream as (descriptor, field data) records.
// The marker-aware implementation additionally writes a Tag immediately
// before every descriptor so the decoder knows whether the upcoming type is
// ordinary or synthesized.
type Encoder interface {
	// WriteDescriptor writes a class descriptor record.
	WriteDescriptor(d *Descriptor) error

	// WriteObject writes one object: its descriptor followed by its field
	// data. Values exposing the substitution hook are routed through it
	// first.
	WriteObject(ctx context.Context, v any) error
}

var (
	_ Encoder = (*streamEncoder)(nil)
	_ Encoder = (*markerEncoder)(nil)
)

// streamEncoder is the base encoder: length-framed descriptor and field
// records produced by the configured codec, no tagging.
type streamEncoder struct {
	w        io.Writer
	codec    Codec
	registry *Registry
}

func newStreamEncoder(w io.Writer, codec Codec, registry *Registry) *streamEncoder {
	return &streamEncoder{w: w, codec: codec, registry: registry}
}

// writeFrame writes a uvarint length prefix followed by data.
func (e *streamEncoder) writeFrame(data []byte) error {
	var head [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(head[:], uint64(len(data)))
	if _, err := e.w.Write(head[:n]); err != nil {
		return err
	}
	_, err := e.w.Write(data)
	return err
}

func (e *streamEncoder) WriteDescriptor(d *Descriptor) error {
	data, err := e.codec.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal descriptor %s: %w", d.RecordedName, err)
	}
	return e.writeFrame(data)
}

// WriteFields writes the object's field data record. Imposters serialize
// their recorded state map; everything else serializes as-is.
func (e *streamEncoder) WriteFields(v any) error {
	payload := v
	if im, ok := v.(Imposter); ok {
		payload = im.ImposterState()
	}
	data, err := e.codec.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal fields of %s: %w", typeNameOf(v), err)
	}
	return e.writeFrame(data)
}

func (e *streamEncoder) WriteObject(ctx context.Context, v any) error {
	if v == nil {
		return fmt.Errorf("cannot encode nil value")
	}
	if err := e.WriteDescriptor(e.describeValue(v)); err != nil {
		return err
	}
	return e.WriteFields(v)
}

// describeValue builds the descriptor for a value. Imposters describe the
// synthesized type standing behind them, which carries the wire family and
// composition; pointers record their element type so the decoder
// materializes the registered type directly.
func (e *streamEncoder) describeValue(v any) *Descriptor {
	if im, ok := v.(Imposter); ok {
		if t := im.ImposterType(); t != nil {
			d := describe(e.registry, t)
			d.resolvedType = t
			return d
		}
	}
	t := reflect.TypeOf(v)
	named := t
	for named.Kind() == reflect.Pointer {
		named = named.Elem()
	}
	d := describe(e.registry, named)
	d.resolvedType = t
	return d
}

// markerEncoder composes the base encoder, prefixing every descriptor with
// a classification tag and routing hook-bearing values through their
// substitution hook.
type markerEncoder struct {
	base   *streamEncoder
	family func(reflect.Type) bool
}

func newMarkerEncoder(w io.Writer, codec Codec, registry *Registry, gen Generator) *markerEncoder {
	return &markerEncoder{
		base:   newStreamEncoder(w, codec, registry),
		family: gen.Generated,
	}
}

// WriteDescriptor writes exactly one tag, then the descriptor. The tag is
// SYNTHESIZED_PROXY when the descriptor's type belongs to the generator's
// family, ORDINARY otherwise, so the decoder can always read it before
// deciding how to resolve what follows.
func (e *markerEncoder) WriteDescriptor(d *Descriptor) error {
	tag := TagOrdinary
	if t := d.ResolvedType(); t != nil && e.family(t) {
		tag = TagSynthesizedProxy
	}
	if _, err := e.base.w.Write([]byte{byte(tag)}); err != nil {
		return err
	}
	return e.base.WriteDescriptor(d)
}

func (e *markerEncoder) WriteObject(ctx context.Context, v any) error {
	if v == nil {
		return fmt.Errorf("cannot encode nil value")
	}
	if sub, ok := v.(Substitutable); ok {
		replacement, err := sub.WriteReplace(ctx)
		if err != nil {
			return err
		}
		// The hook returning the original value is the recursion-halt
		// signal: fall through to default handling for it.
		if !sameValue(replacement, v) {
			return e.WriteObject(ctx, replacement)
		}
	}
	if err := e.WriteDescriptor(e.base.describeValue(v)); err != nil {
		return err
	}
	return e.base.WriteFields(v)
}

// sameValue reports whether two values are the same object. Reference kinds
// compare by identity, comparable values by equality.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	}
	if !ra.Comparable() || !rb.Comparable() {
		return false
	}
	return a == b
}

func typeNameOf(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
