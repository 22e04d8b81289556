// Package registry implements an in-memory registry of adapter constructors
// keyed by the interface type they produce.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// ErrAlreadyRegistered is returned in strict mode when an interface already
// has a constructor.
var ErrAlreadyRegistered = errors.New("adapter already registered")

// Constructor builds a value implementing the registered interface from a
// handle of type H.
type Constructor[H any] func(handle H) any

// Registry implements AdapterRegistry using in-memory storage.
type Registry[H any] struct {
	ctors      map[reflect.Type]Constructor[H]
	mu         sync.RWMutex
	strictMode bool
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	strictMode bool
}

// WithStrictMode rejects re-registration of an interface when enabled, which
// is the default. When disabled a later registration replaces the earlier one.
func WithStrictMode(strict bool) Option {
	return func(o *options) {
		o.strictMode = strict
	}
}

// New creates an empty registry.
func New[H any](opts ...Option) *Registry[H] {
	o := options{strictMode: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[H]{
		ctors:      make(map[reflect.Type]Constructor[H]),
		strictMode: o.strictMode,
	}
}

// Register adds a constructor for iface.
func (r *Registry[H]) Register(iface reflect.Type, ctor Constructor[H]) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return fmt.Errorf("registry: %v is not an interface type", iface)
	}
	if ctor == nil {
		return fmt.Errorf("registry: nil constructor for %v", iface)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ctors[iface]; exists && r.strictMode {
		return fmt.Errorf("%w: %v", ErrAlreadyRegistered, iface)
	}
	r.ctors[iface] = ctor
	return nil
}

// Get returns the constructor registered for iface.
func (r *Registry[H]) Get(iface reflect.Type) (Constructor[H], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.ctors[iface]
	return c, ok
}

// Unregister removes the constructor for iface and reports whether one existed.
func (r *Registry[H]) Unregister(iface reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ctors[iface]
	delete(r.ctors, iface)
	return ok
}

// List returns the registered interface types ordered by name.
func (r *Registry[H]) List() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]reflect.Type, 0, len(r.ctors))
	for k := range r.ctors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

var _ AdapterRegistry[struct{}] = (*Registry[struct{}])(nil)
