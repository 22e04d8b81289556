package aspects_test

import (
	"errors"
	"reflect"
	"testing"

	aspects "github.com/reglet-dev/reglet-aspects"
	"github.com/reglet-dev/reglet-aspects/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemove_FallbackPrefersMostRecent(t *testing.T) {
	a := &scaledWriter{factor: 1}
	b := &scaledWriter{factor: 2}
	c := &scaledWriter{factor: 3}

	comp, err := newComposer().Compose(a, b, c)
	require.NoError(t, err)
	require.Same(t, c, routedTo(t, comp, writeSig))

	unfilled := comp.Remove(b)
	assert.Empty(t, unfilled)
	assert.Same(t, c, routedTo(t, comp, writeSig))

	unfilled = comp.Remove(c)
	assert.Empty(t, unfilled)
	assert.Same(t, a, routedTo(t, comp, writeSig))

	unfilled = comp.Remove(a)
	assert.Equal(t, []capability.Signature{writeSig}, unfilled)
	assert.False(t, comp.Bound(writeSig))
	assert.Empty(t, comp.Providers())

	_, err = comp.Invoke(writeSig, "x")
	assert.True(t, errors.Is(err, aspects.ErrUnsupportedCapability))
}

func TestRemove_FallbackSkipsOptedOutProviders(t *testing.T) {
	w := &writer{name: "w"}
	comp, err := newComposer().Compose(&reader{}, &lazyWriter{name: "lazy"}, w)
	require.NoError(t, err)

	unfilled := comp.Remove(w)
	assert.Equal(t, []capability.Signature{writeSig}, unfilled)
	assert.False(t, comp.Bound(writeSig))
}

func TestRemove_ByTypeRemovesEveryInstance(t *testing.T) {
	w := &writer{name: "w"}
	comp, err := newComposer().Compose(w, &scaledWriter{factor: 2}, &scaledWriter{factor: 5})
	require.NoError(t, err)

	unfilled := comp.Remove(reflect.TypeOf(&scaledWriter{}))
	assert.Empty(t, unfilled)
	assert.Same(t, w, routedTo(t, comp, writeSig))
	assert.Len(t, comp.Providers(), 1)
}

func TestRemove_NoMatchIsNoop(t *testing.T) {
	w := &writer{name: "w"}
	comp, err := newComposer().Compose(w)
	require.NoError(t, err)

	assert.Nil(t, comp.Remove(&writer{name: "other"}, reflect.TypeOf(&reader{})))
	assert.Same(t, w, routedTo(t, comp, writeSig))
	assert.Len(t, comp.Providers(), 1)
}

// sliceWriter is a non-comparable value provider.
type sliceWriter struct {
	tags []string
}

func (w sliceWriter) Write(s string) int { return len(w.tags) }

func TestRemove_NonComparableValue(t *testing.T) {
	w := &writer{name: "w"}
	comp, err := newComposer().Compose(w, sliceWriter{tags: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, sliceWriter{tags: []string{"a"}}, routedTo(t, comp, writeSig))

	assert.Nil(t, comp.Remove(sliceWriter{tags: []string{"b"}}))
	assert.Len(t, comp.Providers(), 2)

	assert.Empty(t, comp.Remove(sliceWriter{tags: []string{"a"}}))
	assert.Len(t, comp.Providers(), 1)
	assert.Same(t, w, routedTo(t, comp, writeSig))
}

func TestRemove_ByProviderHandle(t *testing.T) {
	w := &writer{name: "w"}
	ow := &otherWriter{name: "ow"}
	comp, err := newComposer().Compose(w, ow)
	require.NoError(t, err)

	handle := comp.Providers()[1]
	assert.Empty(t, comp.Remove(handle))
	assert.Same(t, w, routedTo(t, comp, writeSig))
}

func TestAdd_OverridesDeclaredCapabilities(t *testing.T) {
	r := &reader{content: "hi"}
	w := &writer{name: "w"}
	comp, err := newComposer().Compose(r, w)
	require.NoError(t, err)

	ow := &otherWriter{name: "ow"}
	overridden, err := comp.Add(ow)
	require.NoError(t, err)
	assert.Equal(t, []capability.Signature{writeSig}, overridden)
	assert.Same(t, ow, routedTo(t, comp, writeSig))

	providers := comp.Providers()
	require.Len(t, providers, 3)
	assert.Same(t, ow, providers[2].Value())
}

func TestAdd_IgnoresUndeclaredCapabilities(t *testing.T) {
	comp, err := newComposer().Compose(&reader{content: "hi"})
	require.NoError(t, err)

	overridden, err := comp.Add(&closer{}, &writer{name: "w"})
	require.NoError(t, err)
	assert.Empty(t, overridden)
	assert.False(t, comp.Bound(closeSig))
	assert.False(t, comp.Bound(writeSig))
	assert.Len(t, comp.Providers(), 1)
	assert.Equal(t, []reflect.Type{reflect.TypeFor[Reader]()}, comp.Declared())
}

func TestAdd_RespectsOptOut(t *testing.T) {
	w := &writer{name: "w"}
	comp, err := newComposer().Compose(w)
	require.NoError(t, err)

	overridden, err := comp.Add(&lazyWriter{name: "lazy"})
	require.NoError(t, err)
	assert.Empty(t, overridden)
	assert.Same(t, w, routedTo(t, comp, writeSig))
}

func TestAdd_RefillsUnboundCapability(t *testing.T) {
	comp, err := newComposer().Compose(&reader{}, &lazyWriter{name: "lazy"})
	require.NoError(t, err)
	require.False(t, comp.Bound(writeSig))

	w := &writer{name: "w"}
	overridden, err := comp.Add(w)
	require.NoError(t, err)
	assert.Equal(t, []capability.Signature{writeSig}, overridden)
	assert.Same(t, w, routedTo(t, comp, writeSig))
}

func TestAddThenRemove_InstanceAndTypeConverge(t *testing.T) {
	build := func(t *testing.T) (*aspects.Composite, *otherWriter) {
		comp, err := newComposer().Compose(&reader{content: "hi"}, &writer{name: "w"})
		require.NoError(t, err)
		ow := &otherWriter{name: "ow"}
		_, err = comp.Add(ow)
		require.NoError(t, err)
		return comp, ow
	}

	byInstance, ow := build(t)
	byInstance.Remove(ow)

	byType, _ := build(t)
	byType.Remove(reflect.TypeOf(&otherWriter{}))

	assert.Equal(t, byInstance.Interfaces(), byType.Interfaces())
	assert.Equal(t, len(byInstance.Providers()), len(byType.Providers()))
	for sig, p := range byInstance.Routing() {
		other, ok := byType.ProviderFor(sig)
		require.True(t, ok)
		assert.Equal(t, p.Type(), other.Type())
	}

	out, err := byType.Invoke(writeSig, "test")
	require.NoError(t, err)
	assert.Equal(t, []any{4}, out)
}

func TestPackageLevelMutators(t *testing.T) {
	t.Run("reject plain objects", func(t *testing.T) {
		_, err := aspects.Add(&writer{}, &otherWriter{})
		assert.True(t, errors.Is(err, aspects.ErrNotAComposite))

		_, err = aspects.Remove(&writer{}, &otherWriter{})
		assert.True(t, errors.Is(err, aspects.ErrNotAComposite))

		var notComposite *aspects.NotACompositeError
		require.ErrorAs(t, err, &notComposite)
		assert.Equal(t, reflect.TypeOf(&writer{}), notComposite.Type)
	})

	t.Run("reach the composite behind a view", func(t *testing.T) {
		comp, err := newComposer().Compose(&reader{content: "hi"}, &writer{name: "w"})
		require.NoError(t, err)
		both, err := aspects.As[Both](comp)
		require.NoError(t, err)

		assert.True(t, aspects.IsComposite(both))
		assert.False(t, aspects.IsComposite(&writer{}))

		providers, err := aspects.ProvidersOf(both)
		require.NoError(t, err)
		assert.Len(t, providers, 2)

		routing, err := aspects.RoutingOf(both)
		require.NoError(t, err)
		assert.Len(t, routing, 2)

		_, err = aspects.RoutingOf(42)
		assert.True(t, errors.Is(err, aspects.ErrNotAComposite))
	})
}
