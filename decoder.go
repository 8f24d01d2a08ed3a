package mockwire

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
)

// Decoder reads records written by an Encoder. The marker-aware
// implementation reads the tag preceding each descriptor and regenerates
// proxy types instead of resolving their recorded names.
type Decoder interface {
	// ResolveClass resolves a descriptor to a live type and patches the
	// descriptor's ResolvedName.
	ResolveClass(d *Descriptor) (reflect.Type, error)

	// ReadObject reads one object from the stream.
	ReadObject(ctx context.Context) (any, error)
}

var (
	_ Decoder = (*streamDecoder)(nil)
	_ Decoder = (*markerDecoder)(nil)
)

// streamDecoder is the base decoder: length-framed records, registry
// resolution by recorded name, no tag awareness.
type streamDecoder struct {
	r        *bufio.Reader
	codec    Codec
	registry *Registry
}

func newStreamDecoder(r io.Reader, codec Codec, registry *Registry) *streamDecoder {
	return &streamDecoder{r: bufio.NewReader(r), codec: codec, registry: registry}
}

// readFrame reads a uvarint length prefix and the data that follows.
func (d *streamDecoder) readFrame() ([]byte, error) {
	n, err := binary.ReadUvarint(d.r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadTag reads one classification tag.
func (d *streamDecoder) ReadTag() (Tag, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	t := Tag(b)
	if !IsValidTag(t) {
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, b)
	}
	return t, nil
}

// ReadDescriptor reads one class descriptor record.
func (d *streamDecoder) ReadDescriptor() (*Descriptor, error) {
	data, err := d.readFrame()
	if err != nil {
		return nil, err
	}
	var desc Descriptor
	if err := d.codec.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("unmarshal descriptor: %w", err)
	}
	return &desc, nil
}

// ResolveClass resolves the recorded name through the registry, the
// ordinary-class behavior.
func (d *streamDecoder) ResolveClass(desc *Descriptor) (reflect.Type, error) {
	t, ok := d.registry.TypeOf(desc.RecordedName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, desc.RecordedName)
	}
	desc.Resolve(desc.RecordedName, t)
	return t, nil
}

// ReadFields reads the field data record and materializes a value of the
// descriptor's resolved type.
func (d *streamDecoder) ReadFields(desc *Descriptor) (any, error) {
	data, err := d.readFrame()
	if err != nil {
		return nil, err
	}
	t := desc.ResolvedType()
	if t == nil {
		return nil, fmt.Errorf("%w: descriptor %q has no resolved type", ErrNotRegistered, desc.RecordedName)
	}
	if err := checkFields(desc, t); err != nil {
		return nil, err
	}
	pv := reflect.New(t)
	if err := d.codec.Unmarshal(data, pv.Interface()); err != nil {
		return nil, fmt.Errorf("unmarshal fields of %s: %w", desc.ResolvedName, err)
	}
	return pv.Elem().Interface(), nil
}

func (d *streamDecoder) ReadObject(ctx context.Context) (any, error) {
	desc, err := d.ReadDescriptor()
	if err != nil {
		return nil, err
	}
	if _, err := d.ResolveClass(desc); err != nil {
		return nil, err
	}
	return d.ReadFields(desc)
}

// checkFields verifies that every field recorded in the descriptor exists
// in the resolved type, the consistency the rest of decoding relies on.
func checkFields(desc *Descriptor, t reflect.Type) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || len(desc.Fields) == 0 {
		return nil
	}
	for _, f := range desc.Fields {
		if _, ok := t.FieldByName(f.Name); !ok {
			return fmt.Errorf("recorded field %s.%s not present in resolved type %s",
				desc.RecordedName, f.Name, desc.ResolvedName)
		}
	}
	return nil
}

// markerDecoder composes the base decoder. It is constructed over a byte
// source with the base type and extra interfaces captured in the envelope;
// all three are immutable for the decoder's lifetime.
type markerDecoder struct {
	base      *streamDecoder
	generator Generator
	sub       Substituter
	baseType  reflect.Type
	extras    []reflect.Type
}

func newMarkerDecoder(r io.Reader, codec Codec, registry *Registry, gen Generator, sub Substituter, baseType reflect.Type, extras []reflect.Type) *markerDecoder {
	return &markerDecoder{
		base:      newStreamDecoder(r, codec, registry),
		generator: gen,
		sub:       sub,
		baseType:  baseType,
		extras:    extras,
	}
}

func (d *markerDecoder) ResolveClass(desc *Descriptor) (reflect.Type, error) {
	return d.base.ResolveClass(desc)
}

// ReadObject reads the tag, then the descriptor, then dispatches on the
// tag: ordinary descriptors resolve exactly as the base decoder would,
// synthesized-proxy descriptors are regenerated through the generator and
// the descriptor patched to reference the new type.
func (d *markerDecoder) ReadObject(ctx context.Context) (any, error) {
	tag, err := d.base.ReadTag()
	if err != nil {
		return nil, err
	}
	desc, err := d.base.ReadDescriptor()
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagOrdinary:
		if _, err := d.base.ResolveClass(desc); err != nil {
			return nil, newInvalidObjectError(ErrTypeResolution, err)
		}
		return d.base.ReadFields(desc)

	case TagSynthesizedProxy:
		return d.readProxy(ctx, desc)
	}
	return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, byte(tag))
}

// readProxy regenerates the proxy type from the decoder's base type and
// extra interfaces, patches the descriptor, binds a live instance, and
// restores its recorded state from the field data.
func (d *markerDecoder) readProxy(ctx context.Context, desc *Descriptor) (any, error) {
	if d.baseType == nil {
		return nil, newInvalidObjectError(ErrTypeResolution,
			fmt.Errorf("synthesized proxy outside an envelope: no base type in decode context"))
	}
	if !d.generator.CanGenerate(d.baseType) {
		return nil, newInvalidObjectError(ErrTypeResolution,
			fmt.Errorf("%w: %s", ErrCannotGenerate, d.baseType))
	}

	t, err := d.generator.Generate(d.baseType, d.extras)
	if err != nil {
		return nil, newInvalidObjectError(ErrTypeResolution, err)
	}
	desc.Resolve(t.String(), t)
	if err := checkFields(desc, t); err != nil {
		return nil, newInvalidObjectError(ErrTypeResolution, err)
	}

	spec := NewSpecification(d.baseType, WithSerializable(), WithExtraInterfaces(d.extras...))
	spec.Capabilities.Add(CapabilitySubstitution)
	spec.Capabilities.Add(CapabilityRegeneration)

	obj, err := d.generator.Bind(t, spec, d.sub)
	if err != nil {
		return nil, newInvalidObjectError(ErrTypeResolution, err)
	}

	data, err := d.base.readFrame()
	if err != nil {
		return nil, err
	}
	state := make(map[string]any)
	if err := d.base.codec.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal proxy state: %w", err)
	}
	im, ok := obj.(Imposter)
	if !ok {
		return nil, newInvalidObjectError(ErrTypeResolution,
			fmt.Errorf("generated type %s does not expose imposter state", t))
	}
	recorded := im.ImposterState()
	for k, v := range state {
		recorded[k] = v
	}

	emitProxyRegenerated(ctx, d.baseType.String(), len(d.extras), desc.ResolvedName)
	return obj, nil
}

