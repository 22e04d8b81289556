package capability

import (
	"fmt"
	"reflect"
)

// Descriptor is the capability view of one concrete type: the registered
// interfaces it implements and, for every method of those interfaces, the
// index of the implementing method in the type's method set.
type Descriptor struct {
	// Type is the concrete type described.
	Type reflect.Type

	// Interfaces lists the implemented capability interfaces, ordered by name.
	Interfaces []reflect.Type

	// Signatures lists every capability signature in interface order.
	Signatures []Signature

	methods map[Signature]int
}

// MethodNotFoundError is returned when a type claims an interface but the
// interface's method cannot be found in the type's method set.
type MethodNotFoundError struct {
	Type      reflect.Type
	Signature Signature
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("capability: %v implements %v but method %s is missing from its method set",
		e.Type, e.Signature.Interface, e.Signature.Method)
}

func describe(t reflect.Type, ifaces []reflect.Type) (*Descriptor, error) {
	d := &Descriptor{
		Type:    t,
		methods: make(map[Signature]int),
	}
	for _, iface := range ifaces {
		if !t.Implements(iface) {
			continue
		}
		d.Interfaces = append(d.Interfaces, iface)
		for _, sig := range Signatures(iface) {
			m, ok := t.MethodByName(sig.Method)
			if !ok {
				return nil, &MethodNotFoundError{Type: t, Signature: sig}
			}
			d.Signatures = append(d.Signatures, sig)
			d.methods[sig] = m.Index
		}
	}
	return d, nil
}

// Implements reports whether the described type implements iface.
func (d *Descriptor) Implements(iface reflect.Type) bool {
	for _, i := range d.Interfaces {
		if i == iface {
			return true
		}
	}
	return false
}

// Has reports whether sig is one of the described type's capabilities.
func (d *Descriptor) Has(sig Signature) bool {
	_, ok := d.methods[sig]
	return ok
}

// MethodIndex returns the index of the method implementing sig.
func (d *Descriptor) MethodIndex(sig Signature) (int, bool) {
	i, ok := d.methods[sig]
	return i, ok
}
