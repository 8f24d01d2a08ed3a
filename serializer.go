package mockwire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// Serializer drives mock proxy serialization: it is the substituter bound
// into proxy hooks, the resolution side for envelopes, and the entry point
// callers use to encode and decode values containing proxies.
//
// Serializers are safe for concurrent use. Concurrent serialization
// attempts on the same proxy are serialized through its guard; only genuine
// recursive re-entry within one session is halted.
type Serializer struct {
	codec     Codec
	generator Generator
	registry  *Registry

	// One guard per proxy instance, keyed by proxy identity.
	guards *xsync.Map[uintptr, *guard]
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithRegistry uses r instead of the package registry for ordinary class
// resolution and envelope type names.
func WithRegistry(r *Registry) Option {
	return func(s *Serializer) {
		s.registry = r
	}
}

// New creates a Serializer over the given payload codec and proxy
// generator. The Envelope type is registered so both ends resolve it under
// the same name.
func New(codec Codec, gen Generator, opts ...Option) (*Serializer, error) {
	if codec == nil {
		return nil, fmt.Errorf("mockwire: codec is nil")
	}
	if gen == nil {
		return nil, fmt.Errorf("mockwire: generator is nil")
	}

	s := &Serializer{
		codec:     codec,
		generator: gen,
		registry:  defaultRegistry,
		guards:    xsync.NewMap[uintptr, *guard](),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Both ends must resolve the envelope and the hook marker by the same
	// names without user registration.
	s.registry.RegisterName(envelopeName, Envelope{})
	s.registry.RegisterName(substitutableName, (*Substitutable)(nil))
	primeMetadata[Envelope]()

	emitSerializerCreated(context.Background(), codec.ContentType())
	return s, nil
}

// Enable performs the enablement step on a mock specification: when the
// spec requests serializability, the hook-capability marker interface joins
// its extra interfaces so generated proxies expose WriteReplace.
//
// The spec's ExtraInterfaces set must be mutable; calling Enable on a
// serializable spec with a nil set is a caller bug and panics.
func (s *Serializer) Enable(spec *Specification) {
	if !spec.Serializable {
		return
	}
	spec.ExtraInterfaces.Add(SubstitutableType)
	spec.Capabilities.Add(CapabilitySubstitution)
	spec.Capabilities.Add(CapabilityRegeneration)
}

// guardFor returns the reentrancy guard for a proxy instance. Proxies are
// pointers, so identity keys the guard table; a non-reference value gets a
// private untracked guard since no alias can re-enter it. tracked reports
// whether the guard lives in the table and must be evicted on retirement.
func (s *Serializer) guardFor(proxy any) (g *guard, key uintptr, tracked bool) {
	rv := reflect.ValueOf(proxy)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		key = rv.Pointer()
		g, _ = s.guards.LoadOrStore(key, newGuard())
		return g, key, true
	}
	return newGuard(), 0, false
}

// Substitute packages a live proxy into its substitute Envelope. This is
// the writeReplace path: the generic encoder invokes it when it meets a
// value exposing the substitution hook.
//
// Packaging encodes the proxy's own state through the marker-aware encoder,
// which re-enters this method for the same proxy; the guard detects the
// same session token and returns the proxy unchanged, so the nested encode
// falls through to default handling and the recursion terminates at depth
// two. The guard is released on every exit path, and when release retires
// the guard its table entry is dropped so finished proxies leave no trace.
func (s *Serializer) Substitute(ctx context.Context, proxy any) (any, error) {
	token, ctx := sessionToken(ctx)
	g, key, tracked := s.guardFor(proxy)
	for {
		ok, retired := g.enter(token)
		if retired {
			// Lost a race with retirement; the table entry is gone or
			// going, so acquire a fresh guard through the table.
			g, key, tracked = s.guardFor(proxy)
			continue
		}
		if !ok {
			emitSubstituteHalted(ctx, typeNameOf(proxy), token)
			return proxy, nil
		}
		break
	}
	defer func() {
		if g.exit(token) && tracked {
			s.guards.Delete(key)
		}
	}()

	start := time.Now()
	emitSubstituteStart(ctx, typeNameOf(proxy), token)

	env, err := s.buildEnvelope(ctx, proxy)
	size := 0
	if env != nil {
		size = len(env.Payload)
	}
	emitSubstituteDone(ctx, typeNameOf(proxy), size, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// buildEnvelope captures the proxy's specification and encoded state.
func (s *Serializer) buildEnvelope(ctx context.Context, proxy any) (*Envelope, error) {
	im, ok := proxy.(Imposter)
	if !ok {
		return nil, newNotSerializableError(typeNameOf(proxy),
			fmt.Errorf("value does not expose a mock specification"))
	}
	spec := im.ImposterSpec()

	var buf bytes.Buffer
	enc := newMarkerEncoder(&buf, s.codec, s.registry, s.generator)
	if err := enc.WriteObject(ctx, proxy); err != nil {
		return nil, newNotSerializableError(typeNameOf(proxy), err)
	}

	payload := buf.Bytes()
	extras := spec.ExtraInterfaces.Types()
	names := make([]string, 0, len(extras))
	for _, t := range extras {
		names = append(names, s.registry.NameOf(t))
	}

	return &Envelope{
		Payload:         payload,
		BaseType:        s.registry.NameOf(spec.BaseType),
		ExtraInterfaces: names,
		Digest:          digest(payload),
	}, nil
}

// Resolve turns a decoded Envelope back into a live proxy. This is the
// readResolve path: it opens a byte source over the payload, constructs a
// marker-aware decoder parameterized with the envelope's base type and
// extra interfaces, and decodes one object.
func (s *Serializer) Resolve(ctx context.Context, env *Envelope) (any, error) {
	start := time.Now()
	baseName := "<nil>"
	if env != nil {
		baseName = env.BaseType
	}
	extraCount := 0
	if env != nil {
		extraCount = len(env.ExtraInterfaces)
	}
	emitResolveStart(ctx, baseName, extraCount)

	obj, err := s.resolve(ctx, env)
	emitResolveDone(ctx, baseName, time.Since(start), err)
	return obj, err
}

func (s *Serializer) resolve(ctx context.Context, env *Envelope) (any, error) {
	if env == nil {
		return nil, newInvalidObjectError(ErrPayload, fmt.Errorf("nil envelope"))
	}
	if !env.Verify() {
		return nil, newInvalidObjectError(ErrPayload,
			fmt.Errorf("payload digest mismatch, %d bytes", len(env.Payload)))
	}

	baseType, ok := s.registry.TypeOf(env.BaseType)
	if !ok {
		return nil, newInvalidObjectError(ErrTypeResolution,
			fmt.Errorf("%w: base type %q", ErrNotRegistered, env.BaseType))
	}
	extras := make([]reflect.Type, 0, len(env.ExtraInterfaces))
	for _, name := range env.ExtraInterfaces {
		t, ok := s.registry.TypeOf(name)
		if !ok {
			return nil, newInvalidObjectError(ErrTypeResolution,
				fmt.Errorf("%w: extra interface %q", ErrNotRegistered, name))
		}
		extras = append(extras, t)
	}

	dec := newMarkerDecoder(bytes.NewReader(env.Payload), s.codec, s.registry, s.generator, s, baseType, extras)
	obj, err := dec.ReadObject(ctx)
	if err != nil {
		if _, ok := err.(*InvalidObjectError); ok {
			return nil, err
		}
		return nil, newInvalidObjectError(ErrPayload, err)
	}
	return obj, nil
}

// Encode serializes one value to w. Values exposing the substitution hook
// are replaced by their envelope; everything else is written as an ordinary
// tagged record.
func (s *Serializer) Encode(ctx context.Context, w io.Writer, v any) error {
	enc := newMarkerEncoder(w, s.codec, s.registry, s.generator)
	return enc.WriteObject(ctx, v)
}

// Decode reads one value from r. A decoded Envelope resolves into a live
// proxy before being returned.
func (s *Serializer) Decode(ctx context.Context, r io.Reader) (any, error) {
	dec := newMarkerDecoder(r, s.codec, s.registry, s.generator, s, nil, nil)
	obj, err := dec.ReadObject(ctx)
	if err != nil {
		return nil, err
	}
	switch env := obj.(type) {
	case Envelope:
		return s.Resolve(ctx, &env)
	case *Envelope:
		return s.Resolve(ctx, env)
	}
	return obj, nil
}

// Marshal is a convenience over Encode returning the encoded bytes.
func (s *Serializer) Marshal(ctx context.Context, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(ctx, &buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is a convenience over Decode reading from data.
func (s *Serializer) Unmarshal(ctx context.Context, data []byte) (any, error) {
	return s.Decode(ctx, bytes.NewReader(data))
}
