package mockwire

import "reflect"

// Generator is the proxy-generation collaborator. Given a base interface
// and a set of extra capability interfaces, it synthesizes a fresh concrete
// type and builds live instances of it. mockwire consumes this contract to
// regenerate proxies on the receiving side; the imposter subpackage provides
// the standard implementation.
type Generator interface {
	// CanGenerate reports whether base is a type this generator can stand
	// in for.
	CanGenerate(base reflect.Type) bool

	// Generate synthesizes a type recording base and every extra interface
	// in its composition. Each call may return a brand-new type; callers
	// must not assume identity across calls.
	Generate(base reflect.Type, extras []reflect.Type) (reflect.Type, error)

	// Bind constructs the live proxy for a generated type, wiring its hook
	// to the given substituter. The returned value implements Imposter and
	// reports the generated type through ImposterType.
	Bind(t reflect.Type, spec *Specification, sub Substituter) (any, error)

	// Generated reports whether t belongs to this generator's family of
	// synthesized types. The encoder uses it to classify descriptors.
	Generated(t reflect.Type) bool
}
