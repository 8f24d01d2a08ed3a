// Package mockwire serializes runtime-synthesized mock proxies so they can
// be reconstructed in another process.
//
// A mock proxy's concrete type is synthesized at runtime and does not exist,
// by name, in the receiving process. Generic serialization records concrete
// type identity and replays it verbatim on decode, which fails for such a
// type. mockwire instead replaces the live proxy with a substitute
// [Envelope] during encoding: the envelope carries the proxy's fully encoded
// state plus the durable metadata (base type, extra interfaces) needed to
// regenerate an equivalent proxy type on the receiving side.
//
// # Substitution
//
// A serializable mock specification gains the [Substitutable] hook interface
// via [Serializer.Enable]. When the encoder meets a value implementing the
// hook, it invokes [Serializer.Substitute], which packages the proxy into an
// envelope. Packaging re-enters the encoder to capture the proxy's own
// state; a per-proxy reentrancy guard, keyed by a session token on the
// context, detects that re-entry and returns the proxy unchanged so the
// nested encode falls through to default handling instead of recursing.
//
// # Tagged wire format
//
// The encoder writes a one-byte tag immediately before every class
// descriptor: TagOrdinary for registered types, TagSynthesizedProxy for
// types belonging to the generator's family. On decode, an ordinary tag
// resolves the recorded name through the type [Registry]; a proxy tag asks
// the [Generator] to synthesize a fresh type from the envelope's base type
// and extra interfaces, then patches the descriptor's ResolvedName so the
// rest of decoding proceeds as if that type had been recorded.
//
// # Basic usage
//
//	gen := imposter.New()
//	wire, _ := mockwire.New(msgpack.New(), gen)
//
//	spec := mockwire.NewSpecification(reflect.TypeOf((*Widget)(nil)).Elem(),
//	    mockwire.WithSerializable())
//	wire.Enable(spec)
//
//	proxy, _ := gen.NewProxy(spec, wire)
//
//	var buf bytes.Buffer
//	_ = wire.Encode(ctx, &buf, proxy)
//
//	// elsewhere, with the same registrations in place
//	again, _ := wire.Decode(ctx, &buf)
//	im := again.(mockwire.Imposter)   // state and spec restored
//	im.ImposterState()                // what the sender recorded
//
// # Codec providers
//
// Field payloads and descriptors are encoded by a pluggable [Codec].
// Implementations are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - yaml - YAML encoding (application/yaml)
//
// # Errors
//
// Encoding failures surface as [NotSerializableError] identifying the
// proxy's declared type. Decoding failures surface as [InvalidObjectError]
// carrying the underlying cause, with a captured stack trace attached for
// diagnostics. Both are terminal for the call that raised them; there is no
// internal retry.
package mockwire
