package aspects

import (
	"reflect"

	"github.com/reglet-dev/reglet-aspects/capability"
)

// compositeOf returns the composite behind v, following any chain of views.
func compositeOf(v any) (*Composite, error) {
	cur := v
	for {
		switch t := cur.(type) {
		case *Composite:
			if t == nil {
				return nil, &NotACompositeError{Type: reflect.TypeOf(v)}
			}
			return t, nil
		case viewer:
			cur = t.aspectsView().origin
		default:
			return nil, &NotACompositeError{Type: reflect.TypeOf(v)}
		}
	}
}

// IsComposite reports whether v is a composite or a view over one.
func IsComposite(v any) bool {
	_, err := compositeOf(v)
	return err == nil
}

// Add adds providers to the composite behind target. See Composite.Add.
func Add(target any, providers ...any) ([]capability.Signature, error) {
	comp, err := compositeOf(target)
	if err != nil {
		return nil, err
	}
	return comp.Add(providers...)
}

// Remove removes providers from the composite behind target and returns the
// capabilities left unbound. See Composite.Remove.
func Remove(target any, targets ...any) ([]capability.Signature, error) {
	comp, err := compositeOf(target)
	if err != nil {
		return nil, err
	}
	return comp.Remove(targets...), nil
}

// ProvidersOf returns the provider list of the composite behind v.
func ProvidersOf(v any) ([]*Provider, error) {
	comp, err := compositeOf(v)
	if err != nil {
		return nil, err
	}
	return comp.Providers(), nil
}

// RoutingOf returns the routing table of the composite behind v.
func RoutingOf(v any) (map[capability.Signature]*Provider, error) {
	comp, err := compositeOf(v)
	if err != nil {
		return nil, err
	}
	return comp.Routing(), nil
}

// UnwrapView follows a chain of views back to the object the first view was
// created over.
func UnwrapView(v any) (any, error) {
	vw, ok := v.(viewer)
	if !ok {
		return nil, &NotAViewError{Type: reflect.TypeOf(v)}
	}
	return vw.aspectsView().Unwrap(), nil
}

// IsView reports whether v is a view or an adapter wrapping one.
func IsView(v any) bool {
	_, ok := v.(viewer)
	return ok
}
