package aspects

import (
	"reflect"

	"github.com/reglet-dev/reglet-aspects/registry"
)

var views = registry.New[*View]()

// RegisterView registers the adapter As uses to present a *View as T.
// Registering the same interface twice is an error.
//
// An adapter embeds the view and forwards each method through Call:
//
//	type readWriter struct{ *aspects.View }
//
//	func (rw readWriter) Read() string {
//	    return aspects.Result[string](rw.Call("Read"), 0)
//	}
//
//	func (rw readWriter) Write(s string) int {
//	    return aspects.Result[int](rw.Call("Write", s), 0)
//	}
//
//	aspects.RegisterView(func(v *aspects.View) ReadWriter { return readWriter{v} })
func RegisterView[T any](ctor func(*View) T) error {
	return views.Register(reflect.TypeFor[T](), func(v *View) any { return ctor(v) })
}

// MustRegisterView is like RegisterView but panics on error.
func MustRegisterView[T any](ctor func(*View) T) {
	if err := RegisterView(ctor); err != nil {
		panic(err)
	}
}

// RegisteredViews returns the interfaces that have a view adapter.
func RegisteredViews() []reflect.Type {
	return views.List()
}
