package aspects

import (
	"fmt"
	"reflect"

	"github.com/reglet-dev/reglet-aspects/capability"
)

// Call invokes method of capability interface iface on the composite.
func (c *Composite) Call(iface reflect.Type, method string, args ...any) ([]any, error) {
	sig, err := capability.LookupSignature(iface, method)
	if err != nil {
		return nil, &UnsupportedCapabilityError{Signature: capability.Signature{Interface: iface, Method: method}}
	}
	return c.Invoke(sig, args...)
}

// Invoke dispatches sig to its provider and returns exactly what the provider
// returned. An unbound or undeclared signature yields an
// *UnsupportedCapabilityError. Unbound fmt.Stringer and fmt.GoStringer methods
// are answered by the first provider instead.
func (c *Composite) Invoke(sig capability.Signature, args ...any) ([]any, error) {
	in, err := argValues(sig.Func, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sig, err)
	}
	out, err := c.invoke(sig, in)
	if err != nil {
		return nil, err
	}
	return interfaces(out), nil
}

func (c *Composite) invoke(sig capability.Signature, in []reflect.Value) ([]reflect.Value, error) {
	b, ok := c.routing[sig]
	if !ok {
		if capability.IsBaseSignature(sig) {
			return c.base(sig), nil
		}
		return nil, &UnsupportedCapabilityError{Signature: sig}
	}
	out, err := c.handler(&Invocation{
		Signature: sig,
		Provider:  b.provider,
		Args:      in,
		fn:        b.fn,
	})
	if err != nil {
		return nil, err
	}
	if len(out) != sig.Func.NumOut() {
		return nil, &ResultMismatchError{Signature: sig, Got: len(out)}
	}
	return out, nil
}

// base answers an identity/representation method through the first provider.
func (c *Composite) base(sig capability.Signature) []reflect.Value {
	if len(c.providers) == 0 {
		return []reflect.Value{reflect.ValueOf("aspects.Composite{}")}
	}
	return formatBase(c.providers[0].rv, sig.Method)
}

// formatBase calls String or GoString on v when it has one with the base
// signature, and formats v with fmt otherwise.
func formatBase(v reflect.Value, method string) []reflect.Value {
	if m := v.MethodByName(method); m.IsValid() && capability.IsBase(method, m.Type()) {
		return m.Call(nil)
	}
	verb := "%v"
	if method == "GoString" {
		verb = "%#v"
	}
	return []reflect.Value{reflect.ValueOf(fmt.Sprintf(verb, v.Interface()))}
}

// argValues converts args to call arguments for func type fn. Nil arguments
// become the zero value of the parameter type.
func argValues(fn reflect.Type, args []any) ([]reflect.Value, error) {
	if fn == nil {
		return nil, fmt.Errorf("missing method type")
	}
	n := fn.NumIn()
	if fn.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("got %d arguments, want at least %d", len(args), n-1)
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("got %d arguments, want %d", len(args), n)
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := paramType(fn, i)
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("argument %d: %v is not assignable to %v", i, v.Type(), pt)
		}
		in[i] = v
	}
	return in, nil
}

func paramType(fn reflect.Type, i int) reflect.Type {
	n := fn.NumIn()
	if fn.IsVariadic() && i >= n-1 {
		return fn.In(n - 1).Elem()
	}
	return fn.In(i)
}

func interfaces(vals []reflect.Value) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v.Interface()
	}
	return out
}
