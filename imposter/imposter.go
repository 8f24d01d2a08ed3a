// Package imposter synthesizes proxy type identities at runtime.
//
// A generated type is a struct built with reflect.StructOf recording the
// proxy's composition: the mockwire.Imposter marker, a field per composed
// interface, and the recorded-state field. Because the type is synthesized
// per call, its identity does not exist by name in any other process;
// mockwire regenerates it on the receiving side from the envelope's base
// type and extra interfaces.
//
// Runtime-created types cannot carry callable method sets for arbitrary
// interfaces (reflect.StructOf does not produce them), so the synthesized
// type is identity only. The live value is a *Proxy: a declared type that
// implements the hook interfaces directly, points at its synthesized type,
// and answers composition questions through Satisfies.
package imposter

import (
	"context"
	"fmt"
	"reflect"

	"github.com/mockwire/mockwire"
)

// Imposterizer implements mockwire.Generator using reflect.StructOf.
type Imposterizer struct{}

// New returns an Imposterizer.
func New() *Imposterizer {
	return &Imposterizer{}
}

var _ mockwire.Generator = (*Imposterizer)(nil)

// stateType is the recorded-state field every generated type carries.
var stateType = reflect.TypeOf(map[string]any(nil))

// CanGenerate reports whether base can be stood in for: it must be an
// interface type.
func (g *Imposterizer) CanGenerate(base reflect.Type) bool {
	return base != nil && base.Kind() == reflect.Interface
}

// Generate synthesizes a struct type recording the proxy's composition: the
// embedded Imposter marker first, then a named field per composed interface,
// then the recorded-state field. The marker is the only anonymous field, so
// the family check stays a single Field(0) inspection.
func (g *Imposterizer) Generate(base reflect.Type, extras []reflect.Type) (rt reflect.Type, err error) {
	if !g.CanGenerate(base) {
		return nil, fmt.Errorf("cannot imposterize %v: base must be an interface", base)
	}

	fields := []reflect.StructField{{
		Name:      mockwire.ImposterType.Name(),
		Type:      mockwire.ImposterType,
		Anonymous: true,
	}}
	seen := map[string]bool{mockwire.ImposterType.Name(): true}

	add := func(t reflect.Type) error {
		if t.Kind() != reflect.Interface {
			return fmt.Errorf("extra capability %s is not an interface", t)
		}
		name := t.Name()
		if name == "" {
			return fmt.Errorf("cannot record unnamed interface %s", t)
		}
		if seen[name] {
			return nil
		}
		seen[name] = true
		fields = append(fields, reflect.StructField{Name: name, Type: t})
		return nil
	}

	if err := add(base); err != nil {
		return nil, err
	}
	for _, t := range extras {
		if err := add(t); err != nil {
			return nil, err
		}
	}
	fields = append(fields, reflect.StructField{
		Name: "State",
		Type: stateType,
		Tag:  `json:"state" msgpack:"state" yaml:"state"`,
	})

	// StructOf panics on fields it cannot accept, such as interfaces with
	// unexported methods. Surface that as a generation failure.
	defer func() {
		if r := recover(); r != nil {
			rt, err = nil, fmt.Errorf("cannot imposterize %s: %v", base, r)
		}
	}()
	return reflect.StructOf(fields), nil
}

// Bind constructs the live proxy for a generated type. The returned value is
// a *Proxy carrying the synthesized type as its wire identity; the hook
// interfaces are on the Proxy itself.
func (g *Imposterizer) Bind(t reflect.Type, spec *mockwire.Specification, sub mockwire.Substituter) (any, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if !g.Generated(t) {
		return nil, fmt.Errorf("%s is not a generated proxy type", t)
	}
	return &Proxy{typ: t, spec: spec, sub: sub, state: make(map[string]any)}, nil
}

// Generated reports whether t belongs to this generator's family: a struct
// whose first field embeds the Imposter marker.
func (g *Imposterizer) Generated(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.NumField() == 0 {
		return false
	}
	f := t.Field(0)
	return f.Anonymous && f.Type == mockwire.ImposterType
}

// NewProxy generates a type for the specification and binds a live proxy in
// one step.
func (g *Imposterizer) NewProxy(spec *mockwire.Specification, sub mockwire.Substituter) (*Proxy, error) {
	t, err := g.Generate(spec.BaseType, spec.ExtraInterfaces.Types())
	if err != nil {
		return nil, err
	}
	p, err := g.Bind(t, spec, sub)
	if err != nil {
		return nil, err
	}
	return p.(*Proxy), nil
}

// Proxy is the live value standing behind a synthesized type. It holds
// everything the substitution hook needs: the specification, the recorded
// state, and the substituter.
type Proxy struct {
	typ   reflect.Type
	spec  *mockwire.Specification
	sub   mockwire.Substituter
	state map[string]any
}

var (
	_ mockwire.Imposter      = (*Proxy)(nil)
	_ mockwire.Substitutable = (*Proxy)(nil)
)

func (p *Proxy) ImposterSpec() *mockwire.Specification { return p.spec }

func (p *Proxy) ImposterState() map[string]any { return p.state }

// ImposterType returns the synthesized type the proxy stands behind.
func (p *Proxy) ImposterType() reflect.Type { return p.typ }

// Satisfies reports whether the proxy's composition covers iface: the hook
// interfaces it implements directly, or any interface recorded as a field of
// its synthesized type.
func (p *Proxy) Satisfies(iface reflect.Type) bool {
	if iface == nil || iface.Kind() != reflect.Interface {
		return false
	}
	if iface == mockwire.ImposterType || iface == mockwire.SubstitutableType {
		return true
	}
	for i := 0; i < p.typ.NumField(); i++ {
		if p.typ.Field(i).Type == iface {
			return true
		}
	}
	return false
}

// WriteReplace delegates to the substituter. Without one the proxy stands
// for itself, which tells the encoder to use default handling.
func (p *Proxy) WriteReplace(ctx context.Context) (any, error) {
	if p.sub == nil {
		return p, nil
	}
	return p.sub.Substitute(ctx, p)
}
