package registry

import "reflect"

// AdapterRegistry manages adapter constructors for target interfaces.
type AdapterRegistry[H any] interface {
	// Register adds a constructor for the interface type iface.
	Register(iface reflect.Type, ctor Constructor[H]) error

	// Get returns the constructor registered for iface.
	Get(iface reflect.Type) (Constructor[H], bool)

	// List returns all registered interface types.
	List() []reflect.Type
}
