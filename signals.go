package mockwire

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for mockwire events.
var (
	SignalSerializerCreated = capitan.NewSignal("mockwire.serializer.created", "Serializer instantiated")
	SignalSubstituteStart   = capitan.NewSignal("mockwire.substitute.start", "Substitution hook entered")
	SignalSubstituteHalted  = capitan.NewSignal("mockwire.substitute.halted", "Recursive substitution halted, proxy returned unchanged")
	SignalSubstituteDone    = capitan.NewSignal("mockwire.substitute.complete", "Substitute envelope built")
	SignalResolveStart      = capitan.NewSignal("mockwire.resolve.start", "Envelope resolution beginning")
	SignalResolveDone       = capitan.NewSignal("mockwire.resolve.complete", "Envelope resolution finished")
	SignalProxyRegenerated  = capitan.NewSignal("mockwire.proxy.regenerated", "Proxy type synthesized during decode")
)

// Keys for typed event data.
var (
	KeyContentType = capitan.NewStringKey("content_type")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyBaseType    = capitan.NewStringKey("base_type")
	KeyExtraCount  = capitan.NewIntKey("extra_count")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
	KeySession     = capitan.NewIntKey("session")
)

// emitSerializerCreated emits an event when a serializer is created.
func emitSerializerCreated(ctx context.Context, contentType string) {
	capitan.Emit(ctx, SignalSerializerCreated,
		KeyContentType.Field(contentType),
	)
}

// emitSubstituteStart emits an event when substitution begins.
func emitSubstituteStart(ctx context.Context, typeName string, session uint64) {
	capitan.Emit(ctx, SignalSubstituteStart,
		KeyTypeName.Field(typeName),
		KeySession.Field(int(session)),
	)
}

// emitSubstituteHalted emits an event when the guard detects recursion.
func emitSubstituteHalted(ctx context.Context, typeName string, session uint64) {
	capitan.Emit(ctx, SignalSubstituteHalted,
		KeyTypeName.Field(typeName),
		KeySession.Field(int(session)),
	)
}

// emitSubstituteDone emits an event when substitution finishes.
func emitSubstituteDone(ctx context.Context, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSubstituteDone, fields...)
	} else {
		capitan.Emit(ctx, SignalSubstituteDone, fields...)
	}
}

// emitResolveStart emits an event when envelope resolution begins.
func emitResolveStart(ctx context.Context, baseType string, extras int) {
	capitan.Emit(ctx, SignalResolveStart,
		KeyBaseType.Field(baseType),
		KeyExtraCount.Field(extras),
	)
}

// emitResolveDone emits an event when envelope resolution finishes.
func emitResolveDone(ctx context.Context, baseType string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyBaseType.Field(baseType),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalResolveDone, fields...)
	} else {
		capitan.Emit(ctx, SignalResolveDone, fields...)
	}
}

// emitProxyRegenerated emits an event when a proxy type is synthesized
// during decode.
func emitProxyRegenerated(ctx context.Context, baseType string, extras int, typeName string) {
	capitan.Emit(ctx, SignalProxyRegenerated,
		KeyBaseType.Field(baseType),
		KeyExtraCount.Field(extras),
		KeyTypeName.Field(typeName),
	)
}
