package aspects

import (
	"reflect"

	"github.com/reglet-dev/reglet-aspects/capability"
)

// Provider is one entry of a composite's provider list: the provider value,
// its capability descriptor and the methods it opted out of.
//
// A provider value may be shared by several composites; a composite only owns
// the reference.
type Provider struct {
	value  any
	rv     reflect.Value
	desc   *capability.Descriptor
	optOut capability.OptOutSet
}

// ProviderOption configures a Provider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	notImplemented []string
}

// WithNotImplemented opts the provider out of the named methods, in addition
// to whatever the value declares through capability.NotImplementer.
func WithNotImplemented(methods ...string) ProviderOption {
	return func(c *providerConfig) {
		c.notImplemented = append(c.notImplemented, methods...)
	}
}

// NewProvider wraps v so it can be passed to Compose or Add with options.
// The descriptor is resolved when the provider is composed.
func NewProvider(v any, opts ...ProviderOption) *Provider {
	var cfg providerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	optOut := capability.OptOutsOf(v)
	if len(cfg.notImplemented) > 0 {
		if optOut == nil {
			optOut = capability.NewOptOutSet()
		}
		optOut.Add(cfg.notImplemented...)
	}
	return &Provider{
		value:  v,
		rv:     reflect.ValueOf(v),
		optOut: optOut,
	}
}

// Value returns the provider object.
func (p *Provider) Value() any {
	return p.value
}

// Type returns the provider's concrete type.
func (p *Provider) Type() reflect.Type {
	return p.rv.Type()
}

// Descriptor returns the capability descriptor, or nil before composition.
func (p *Provider) Descriptor() *capability.Descriptor {
	return p.desc
}

// NotImplemented reports whether the provider opted out of sig.
func (p *Provider) NotImplemented(sig capability.Signature) bool {
	return p.optOut.Excludes(sig)
}

// Offers reports whether the provider implements sig and did not opt out.
func (p *Provider) Offers(sig capability.Signature) bool {
	return p.desc != nil && p.desc.Has(sig) && !p.NotImplemented(sig)
}

// method returns the bound method value implementing sig.
func (p *Provider) method(sig capability.Signature) (reflect.Value, bool) {
	if p.desc == nil {
		return reflect.Value{}, false
	}
	i, ok := p.desc.MethodIndex(sig)
	if !ok {
		return reflect.Value{}, false
	}
	return p.rv.Method(i), true
}

// matches reports whether target selects this provider: the same value, the
// same *Provider handle, or the provider's concrete type.
func (p *Provider) matches(target any) bool {
	switch t := target.(type) {
	case *Provider:
		return t == p || sameValue(t.value, p.value)
	case reflect.Type:
		return p.Type() == t
	default:
		return sameValue(target, p.value)
	}
}

func sameValue(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() || ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	}
	if ra.Comparable() {
		return ra.Equal(rb)
	}
	return reflect.DeepEqual(a, b)
}
