package capability

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Signature identifies one method of one capability interface.
// Two signatures are equal only when interface, method name and func type all
// match; the same method on two unrelated interfaces is two capabilities.
type Signature struct {
	// Interface is the capability interface declaring the method.
	Interface reflect.Type

	// Method is the method name.
	Method string

	// Func is the method's func type without receiver.
	Func reflect.Type
}

// SignatureOf returns the signature of method on interface type T.
func SignatureOf[T any](method string) (Signature, error) {
	return LookupSignature(reflect.TypeFor[T](), method)
}

// MustSignatureOf is like SignatureOf but panics on error.
func MustSignatureOf[T any](method string) Signature {
	sig, err := SignatureOf[T](method)
	if err != nil {
		panic(err)
	}
	return sig
}

// LookupSignature returns the signature of method on iface.
func LookupSignature(iface reflect.Type, method string) (Signature, error) {
	if iface == nil || iface.Kind() != reflect.Interface {
		return Signature{}, fmt.Errorf("capability: %v is not an interface type", iface)
	}
	m, ok := iface.MethodByName(method)
	if !ok {
		return Signature{}, fmt.Errorf("capability: interface %v has no method %q", iface, method)
	}
	return Signature{Interface: iface, Method: m.Name, Func: m.Type}, nil
}

// Signatures returns every method signature declared by iface, in method order.
func Signatures(iface reflect.Type) []Signature {
	sigs := make([]Signature, 0, iface.NumMethod())
	for i := range iface.NumMethod() {
		m := iface.Method(i)
		sigs = append(sigs, Signature{Interface: iface, Method: m.Name, Func: m.Type})
	}
	return sigs
}

// Params returns the ordered parameter types.
func (s Signature) Params() []reflect.Type {
	if s.Func == nil {
		return nil
	}
	params := make([]reflect.Type, s.Func.NumIn())
	for i := range params {
		params[i] = s.Func.In(i)
	}
	return params
}

// IsZero reports whether s is the zero signature.
func (s Signature) IsZero() bool {
	return s.Interface == nil && s.Method == "" && s.Func == nil
}

// String renders the signature as "pkg.Iface.Method(params) results".
func (s Signature) String() string {
	if s.IsZero() {
		return "<nil>"
	}
	var b strings.Builder
	if s.Interface != nil {
		b.WriteString(s.Interface.String())
		b.WriteByte('.')
	}
	b.WriteString(s.Method)
	if s.Func != nil {
		// func(string) int -> (string) int
		b.WriteString(strings.TrimPrefix(s.Func.String(), "func"))
	}
	return b.String()
}

// SortSignatures orders sigs by their string form.
func SortSignatures(sigs []Signature) {
	sort.SliceStable(sigs, func(i, j int) bool {
		return sigs[i].String() < sigs[j].String()
	})
}
