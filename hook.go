package mockwire

import (
	"context"
	"reflect"
)

// Hook interfaces carried by generated proxies. The proxy value a Generator
// binds implements these directly; calling code detects them with plain type
// assertions instead of structural probing.

// Substitutable is the hook-capability marker interface. Enable adds it to a
// serializable specification's extra interfaces, so the generated proxy
// exposes WriteReplace and the encoder routes it through substitution.
type Substitutable interface {
	// WriteReplace returns the value to serialize in place of the receiver.
	// Returning the receiver itself tells the encoder to fall through to
	// default handling.
	WriteReplace(ctx context.Context) (any, error)
}

// Imposter is implemented by every proxy a Generator produces. It gives the
// substitution hook access to the proxy's construction metadata and
// recorded state, and identifies the family of synthesized types.
type Imposter interface {
	// ImposterSpec returns the specification the proxy was built from.
	ImposterSpec() *Specification

	// ImposterState returns the proxy's mutable recorded state. The map is
	// what travels inside the substitute envelope's payload.
	ImposterState() map[string]any

	// ImposterType returns the synthesized type identity standing behind the
	// proxy. Descriptors for the proxy are recorded against this type, which
	// is how both ends agree on the proxy's wire family and composition.
	ImposterType() reflect.Type
}

// Substituter packages a live proxy into its serialized substitute. It is
// the contract a Generator binds into each proxy's WriteReplace hook;
// Serializer implements it.
type Substituter interface {
	Substitute(ctx context.Context, proxy any) (any, error)
}

// SubstitutableType is the reflect identity of the hook marker interface,
// as added to a specification's extra interfaces by Enable.
var SubstitutableType = reflect.TypeOf((*Substitutable)(nil)).Elem()

// ImposterType is the reflect identity of the Imposter marker interface.
var ImposterType = reflect.TypeOf((*Imposter)(nil)).Elem()

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	anyType = reflect.TypeOf((*any)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// IsWriteReplace reports whether m has the reserved substitution-hook shape:
// named WriteReplace, taking only a context, returning (any, error). The
// dispatch layer uses this to decide whether an intercepted call routes into
// Substitute.
func IsWriteReplace(m reflect.Method) bool {
	if m.Name != "WriteReplace" {
		return false
	}
	t := m.Type
	// m.Type includes the receiver as input 0 for methods obtained from a
	// concrete type.
	in := t.NumIn()
	if in != 1 && in != 2 {
		return false
	}
	if t.In(in-1) != ctxType {
		return false
	}
	return t.NumOut() == 2 && t.Out(0) == anyType && t.Out(1) == errType
}
