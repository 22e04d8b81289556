// Package capability describes capability interfaces and the concrete types
// implementing them. It holds the signature model, the per-type descriptor
// index, the opt-out marker and the structural compatibility check.
package capability

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// ErrNotInterface is returned when registering a non-interface type.
var ErrNotInterface = errors.New("capability: not an interface type")

// Index maps concrete types to their capability descriptors.
//
// Descriptors are computed lazily, once per type, and never evicted. Lookups
// of an already described type take no lock; the first description of a type
// is exclusive for that type only. Registering a new interface starts a fresh
// memo so that types are re-described against the enlarged interface set.
type Index struct {
	mu     sync.RWMutex
	ifaces []reflect.Type
	known  map[reflect.Type]struct{}
	memo   atomic.Pointer[sync.Map]
}

type memoEntry struct {
	once sync.Once
	desc *Descriptor
	err  error
}

var defaultIndex = NewIndex()

// DefaultIndex returns the process-wide index.
func DefaultIndex() *Index {
	return defaultIndex
}

// NewIndex creates an index with the given capability interfaces registered.
// It panics if any of them is not a valid capability interface.
func NewIndex(ifaces ...reflect.Type) *Index {
	x := &Index{known: make(map[reflect.Type]struct{})}
	x.memo.Store(new(sync.Map))
	if err := x.Register(ifaces...); err != nil {
		panic(err)
	}
	return x
}

// Register adds capability interfaces. Re-registering an interface is a no-op.
// Interfaces with unexported methods are rejected because their methods cannot
// be routed from outside their package.
func (x *Index) Register(ifaces ...reflect.Type) error {
	for _, iface := range ifaces {
		if err := validateInterface(iface); err != nil {
			return err
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	added := false
	for _, iface := range ifaces {
		if _, ok := x.known[iface]; ok {
			continue
		}
		x.known[iface] = struct{}{}
		x.ifaces = append(x.ifaces, iface)
		added = true
	}
	if !added {
		return nil
	}
	sort.SliceStable(x.ifaces, func(i, j int) bool {
		return x.ifaces[i].String() < x.ifaces[j].String()
	})
	x.memo.Store(new(sync.Map))
	return nil
}

// Register adds interface type T to the default index.
func Register[T any]() error {
	return RegisterWith[T](defaultIndex)
}

// MustRegister is like Register but panics on error.
func MustRegister[T any]() {
	if err := Register[T](); err != nil {
		panic(err)
	}
}

// RegisterWith adds interface type T to x.
func RegisterWith[T any](x *Index) error {
	return x.Register(reflect.TypeFor[T]())
}

func validateInterface(iface reflect.Type) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %v", ErrNotInterface, iface)
	}
	if iface.NumMethod() == 0 {
		return fmt.Errorf("capability: interface %v declares no methods", iface)
	}
	for i := range iface.NumMethod() {
		if m := iface.Method(i); !m.IsExported() {
			return fmt.Errorf("capability: interface %v has unexported method %s", iface, m.Name)
		}
	}
	return nil
}

// Interfaces returns the registered interfaces ordered by name.
func (x *Index) Interfaces() []reflect.Type {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]reflect.Type, len(x.ifaces))
	copy(out, x.ifaces)
	return out
}

// IsRegistered reports whether iface is a registered capability interface.
func (x *Index) IsRegistered(iface reflect.Type) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.known[iface]
	return ok
}

// Describe returns the descriptor of concrete type t.
func (x *Index) Describe(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, errors.New("capability: cannot describe nil type")
	}
	memo := x.memo.Load()

	v, ok := memo.Load(t)
	if !ok {
		v, _ = memo.LoadOrStore(t, &memoEntry{})
	}
	e := v.(*memoEntry)
	e.once.Do(func() {
		e.desc, e.err = describe(t, x.Interfaces())
	})
	return e.desc, e.err
}

// DescribeValue returns the descriptor of v's dynamic type.
func (x *Index) DescribeValue(v any) (*Descriptor, error) {
	return x.Describe(reflect.TypeOf(v))
}
