package mockwire

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zoobzio/sentinel"
)

// Registry associates type identities with durable names. Ordinary class
// descriptors resolve by recorded name through a registry, and envelope
// metadata (base type, extra interfaces) travels as registry names, so both
// processes must register the same types under the same names.
//
// Interface types register via a pointer-to-interface value:
//
//	mockwire.Register((*Widget)(nil))
//
// Registries are safe for concurrent use.
type Registry struct {
	byName *xsync.Map[string, reflect.Type]
	byType *xsync.Map[reflect.Type, string]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: xsync.NewMap[string, reflect.Type](),
		byType: xsync.NewMap[reflect.Type, string](),
	}
}

// RegistryEntry is a single (name, type) association in a registry snapshot.
type RegistryEntry struct {
	Name string
	Type reflect.Type
}

// normalizeType unwraps a pointer-to-interface to the interface itself, so
// Register((*Widget)(nil)) registers the Widget interface identity.
func normalizeType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface {
		return t.Elem()
	}
	return t
}

// RegisterName associates the value's type with an explicit name.
// Re-registering the same pair is idempotent; a conflicting re-registration
// panics, since it means two processes would disagree about the wire.
func (r *Registry) RegisterName(name string, v any) {
	if name == "" {
		panic("mockwire: attempt to register type with empty name")
	}
	t := normalizeType(v)
	if prev, loaded := r.byName.LoadOrStore(name, t); loaded && prev != t {
		panic(fmt.Sprintf("mockwire: name %q already registered for %s", name, prev))
	}
	if prev, loaded := r.byType.LoadOrStore(t, name); loaded && prev != name {
		panic(fmt.Sprintf("mockwire: type %s already registered as %q", t, prev))
	}
}

// Register associates the value's type with its default name, the type's
// string representation.
func (r *Registry) Register(v any) {
	r.RegisterName(normalizeType(v).String(), v)
}

// TypeOf resolves a recorded name to its registered type.
func (r *Registry) TypeOf(name string) (reflect.Type, bool) {
	return r.byName.Load(name)
}

// NameOf returns the registered name for a type, or its string
// representation when unregistered.
func (r *Registry) NameOf(t reflect.Type) string {
	if name, ok := r.byType.Load(t); ok {
		return name
	}
	return t.String()
}

// Lookup returns the registered name for a type if present.
func (r *Registry) Lookup(t reflect.Type) (string, bool) {
	return r.byType.Load(t)
}

// Entries returns a snapshot for diagnostics. Order is unspecified.
func (r *Registry) Entries() []RegistryEntry {
	var out []RegistryEntry
	r.byName.Range(func(name string, t reflect.Type) bool {
		out = append(out, RegistryEntry{Name: name, Type: t})
		return true
	})
	return out
}

// Reset clears all entries. This is primarily useful for test isolation.
func (r *Registry) Reset() {
	r.byName.Clear()
	r.byType.Clear()
}

// defaultRegistry backs the package-level registration functions and any
// Serializer built without WithRegistry.
var defaultRegistry = NewRegistry()

// Register associates v's type with its default name in the package
// registry and primes its descriptor metadata.
func Register[T any](v T) {
	defaultRegistry.Register(v)
	primeMetadata[T]()
}

// RegisterName associates v's type with name in the package registry and
// primes its descriptor metadata.
func RegisterName[T any](name string, v T) {
	defaultRegistry.RegisterName(name, v)
	primeMetadata[T]()
}

// primeMetadata scans struct types at registration time so descriptor
// construction hits sentinel's cache instead of re-walking fields.
func primeMetadata[T any]() {
	if reflect.TypeFor[T]().Kind() == reflect.Struct {
		sentinel.Scan[T]()
	}
}

// ResetRegistry clears the package registry. Test isolation only.
func ResetRegistry() {
	defaultRegistry.Reset()
}
