package registry_test

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/reglet-dev/reglet-aspects/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct{ name string }

type named struct{ h handle }

func (n named) String() string { return n.h.name }

func stringer(h handle) any { return named{h: h} }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := registry.New[handle]()
	iface := reflect.TypeFor[fmt.Stringer]()

	require.NoError(t, r.Register(iface, stringer))

	ctor, ok := r.Get(iface)
	require.True(t, ok)
	s, ok := ctor(handle{name: "x"}).(fmt.Stringer)
	require.True(t, ok)
	assert.Equal(t, "x", s.String())

	_, ok = r.Get(reflect.TypeFor[io.Reader]())
	assert.False(t, ok)
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := registry.New[handle]()

	assert.Error(t, r.Register(reflect.TypeFor[handle](), stringer))
	assert.Error(t, r.Register(nil, stringer))
	assert.Error(t, r.Register(reflect.TypeFor[fmt.Stringer](), nil))
	assert.Empty(t, r.List())
}

func TestRegistry_StrictMode(t *testing.T) {
	iface := reflect.TypeFor[fmt.Stringer]()

	t.Run("strict by default", func(t *testing.T) {
		r := registry.New[handle]()
		require.NoError(t, r.Register(iface, stringer))

		err := r.Register(iface, stringer)
		assert.True(t, errors.Is(err, registry.ErrAlreadyRegistered))
	})

	t.Run("non-strict replaces", func(t *testing.T) {
		r := registry.New[handle](registry.WithStrictMode(false))
		require.NoError(t, r.Register(iface, stringer))
		require.NoError(t, r.Register(iface, func(handle) any { return named{h: handle{name: "replaced"}} }))

		ctor, ok := r.Get(iface)
		require.True(t, ok)
		assert.Equal(t, "replaced", ctor(handle{}).(fmt.Stringer).String())
	})
}

func TestRegistry_ListAndUnregister(t *testing.T) {
	r := registry.New[handle]()
	for _, iface := range []reflect.Type{
		reflect.TypeFor[io.Writer](),
		reflect.TypeFor[fmt.Stringer](),
		reflect.TypeFor[io.Reader](),
	} {
		require.NoError(t, r.Register(iface, stringer))
	}

	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[fmt.Stringer](),
		reflect.TypeFor[io.Reader](),
		reflect.TypeFor[io.Writer](),
	}, r.List())

	assert.True(t, r.Unregister(reflect.TypeFor[io.Reader]()))
	assert.False(t, r.Unregister(reflect.TypeFor[io.Reader]()))
	assert.Len(t, r.List(), 2)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := registry.New[handle](registry.WithStrictMode(false))
	iface := reflect.TypeFor[fmt.Stringer]()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register(iface, stringer)
		}()
		go func() {
			defer wg.Done()
			_, _ = r.Get(iface)
			_ = r.List()
		}()
	}
	wg.Wait()

	_, ok := r.Get(iface)
	assert.True(t, ok)
}
