package mockwire

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
)

// Shared fixtures for in-package tests: a JSON-backed codec, a failing
// codec, and a statically declared stand-in for a generated proxy type so
// protocol mechanics can be tested without the imposter package.

type testCodec struct{}

func (testCodec) ContentType() string { return "application/json" }

func (testCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (testCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// failCodec simulates a low-level encoding failure.
type failCodec struct{ testCodec }

func (failCodec) Marshal(v any) ([]byte, error) { return nil, errors.New("marshal exploded") }

// widget is the base interface test proxies stand in for.
type widget interface {
	Spin() int
}

var widgetType = reflect.TypeOf((*widget)(nil)).Elem()

// gadget is a plain registered type for ordinary-record tests.
type gadget struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

var gadgetType = reflect.TypeOf(gadget{})

// stubProxy mimics the shape of a generated proxy type.
type stubProxy struct {
	Imposter
	Substitutable
	State map[string]any `json:"state"`
}

var stubProxyType = reflect.TypeOf(stubProxy{})

// stubBinding backs a stubProxy's marker interfaces.
type stubBinding struct {
	spec  *Specification
	sub   Substituter
	state map[string]any
	self  any
}

func (b *stubBinding) ImposterSpec() *Specification { return b.spec }

func (b *stubBinding) ImposterState() map[string]any { return b.state }

func (b *stubBinding) ImposterType() reflect.Type { return stubProxyType }

func (b *stubBinding) WriteReplace(ctx context.Context) (any, error) {
	if b.sub == nil {
		return b.self, nil
	}
	return b.sub.Substitute(ctx, b.self)
}

// stubGenerator hands out stubProxy as its one family member.
type stubGenerator struct {
	generateErr error
	bindErr     error
}

func (g *stubGenerator) CanGenerate(base reflect.Type) bool {
	return base != nil && base.Kind() == reflect.Interface
}

func (g *stubGenerator) Generate(base reflect.Type, extras []reflect.Type) (reflect.Type, error) {
	if g.generateErr != nil {
		return nil, g.generateErr
	}
	return stubProxyType, nil
}

func (g *stubGenerator) Bind(t reflect.Type, spec *Specification, sub Substituter) (any, error) {
	if g.bindErr != nil {
		return nil, g.bindErr
	}
	b := &stubBinding{spec: spec, sub: sub, state: make(map[string]any)}
	p := &stubProxy{Imposter: b, Substitutable: b, State: b.state}
	b.self = p
	return p, nil
}

func (g *stubGenerator) Generated(t reflect.Type) bool {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t == stubProxyType
}

// newStubProxy builds a bound stub proxy for the given substituter.
func newStubProxy(spec *Specification, sub Substituter) *stubProxy {
	b := &stubBinding{spec: spec, sub: sub, state: make(map[string]any)}
	p := &stubProxy{Imposter: b, Substitutable: b, State: b.state}
	b.self = p
	return p
}

// freshRegistry returns a registry with the fixture types installed.
func freshRegistry() *Registry {
	r := NewRegistry()
	r.RegisterName("mockwire_test.widget", (*widget)(nil))
	r.RegisterName("mockwire_test.gadget", gadget{})
	r.RegisterName(envelopeName, Envelope{})
	r.RegisterName(substitutableName, (*Substitutable)(nil))
	return r
}
