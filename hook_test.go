package mockwire

import (
	"context"
	"reflect"
	"testing"
)

type hookShape struct{}

func (hookShape) WriteReplace(ctx context.Context) (any, error) { return nil, nil }

type hookWrongName struct{}

func (hookWrongName) Replace(ctx context.Context) (any, error) { return nil, nil }

type hookNoContext struct{}

func (hookNoContext) WriteReplace(n int) (any, error) { return nil, nil }

type hookWrongReturns struct{}

func (hookWrongReturns) WriteReplace(ctx context.Context) error { return nil }

type hookConcreteReturn struct{}

func (hookConcreteReturn) WriteReplace(ctx context.Context) (string, error) { return "", nil }

func methodOf(t *testing.T, v any, name string) reflect.Method {
	t.Helper()
	m, ok := reflect.TypeOf(v).MethodByName(name)
	if !ok {
		t.Fatalf("%T has no method %s", v, name)
	}
	return m
}

func TestIsWriteReplace(t *testing.T) {
	tests := []struct {
		name   string
		method reflect.Method
		want   bool
	}{
		{"concrete hook shape", methodOf(t, hookShape{}, "WriteReplace"), true},
		{"wrong name", methodOf(t, hookWrongName{}, "Replace"), false},
		{"no context parameter", methodOf(t, hookNoContext{}, "WriteReplace"), false},
		{"wrong return count", methodOf(t, hookWrongReturns{}, "WriteReplace"), false},
		{"concrete first return", methodOf(t, hookConcreteReturn{}, "WriteReplace"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWriteReplace(tt.method); got != tt.want {
				t.Errorf("IsWriteReplace() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsWriteReplace_InterfaceMethod(t *testing.T) {
	// Interface method types carry no receiver parameter; the shape check
	// must accept both forms.
	m, ok := SubstitutableType.MethodByName("WriteReplace")
	if !ok {
		t.Fatal("Substitutable should declare WriteReplace")
	}
	if !IsWriteReplace(m) {
		t.Error("interface hook method should match the reserved shape")
	}
}

func TestHookDetection_TypeAssertion(t *testing.T) {
	proxy := newStubProxy(NewSpecification(widgetType, WithSerializable()), nil)

	if _, ok := any(proxy).(Substitutable); !ok {
		t.Error("bound proxy should expose the substitution hook")
	}
	if _, ok := any(proxy).(Imposter); !ok {
		t.Error("bound proxy should expose imposter metadata")
	}
	if _, ok := any(gadget{}).(Substitutable); ok {
		t.Error("plain value should not expose the hook")
	}
}
