package aspects

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/reglet-dev/reglet-aspects/capability"
)

// Composite routes each capability to the provider implementing it.
//
// A Composite is a stable reference whose behaviour is redirected by mutating
// its routing table. It is not safe for concurrent use: callers sharing one
// composite between goroutines must serialise Add, Remove and dispatch
// themselves.
type Composite struct {
	index   *capability.Index
	logger  *slog.Logger
	handler Handler

	declared    []reflect.Type
	declaredSet map[reflect.Type]struct{}
	routing     map[capability.Signature]*binding
	providers   []*Provider
}

// binding is one routing table entry: the provider and its pre-resolved
// method value.
type binding struct {
	provider *Provider
	fn       reflect.Value
}

var stringerSignature = capability.MustSignatureOf[fmt.Stringer]("String")

func (c *Composite) declare(iface reflect.Type) {
	if _, ok := c.declaredSet[iface]; ok {
		return
	}
	c.declaredSet[iface] = struct{}{}
	c.declared = append(c.declared, iface)
}

func (c *Composite) isDeclared(iface reflect.Type) bool {
	_, ok := c.declaredSet[iface]
	return ok
}

func (c *Composite) bind(sig capability.Signature, p *Provider) error {
	fn, ok := p.method(sig)
	if !ok {
		return &ReflectionInconsistencyError{
			Type: p.Type(),
			Err:  &capability.MethodNotFoundError{Type: p.Type(), Signature: sig},
		}
	}
	c.routing[sig] = &binding{provider: p, fn: fn}
	return nil
}

// Declared returns the capability interfaces the composite was built with,
// ordered by name. Only their signatures are eligible for Add.
func (c *Composite) Declared() []reflect.Type {
	return sortedTypes(c.declared)
}

// Interfaces returns the capability interfaces that currently have at least
// one bound signature, ordered by name.
func (c *Composite) Interfaces() []reflect.Type {
	seen := make(map[reflect.Type]struct{})
	var out []reflect.Type
	for sig := range c.routing {
		if _, ok := seen[sig.Interface]; ok {
			continue
		}
		seen[sig.Interface] = struct{}{}
		out = append(out, sig.Interface)
	}
	return sortedTypes(out)
}

// Providers returns a copy of the provider list in insertion order.
func (c *Composite) Providers() []*Provider {
	out := make([]*Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// Routing returns a copy of the routing table.
func (c *Composite) Routing() map[capability.Signature]*Provider {
	out := make(map[capability.Signature]*Provider, len(c.routing))
	for sig, b := range c.routing {
		out[sig] = b.provider
	}
	return out
}

// Bound reports whether sig currently resolves to a provider.
func (c *Composite) Bound(sig capability.Signature) bool {
	_, ok := c.routing[sig]
	return ok
}

// ProviderFor returns the provider sig is routed to.
func (c *Composite) ProviderFor(sig capability.Signature) (*Provider, bool) {
	b, ok := c.routing[sig]
	if !ok {
		return nil, false
	}
	return b.provider, true
}

// Unbound returns the declared signatures that have no provider, sorted.
func (c *Composite) Unbound() []capability.Signature {
	var out []capability.Signature
	for _, iface := range c.declared {
		for _, sig := range capability.Signatures(iface) {
			if _, ok := c.routing[sig]; !ok {
				out = append(out, sig)
			}
		}
	}
	capability.SortSignatures(out)
	return out
}

// String answers through the String capability, falling back to the first
// provider.
func (c *Composite) String() string {
	out, err := c.invoke(stringerSignature, nil)
	if err != nil || len(out) != 1 {
		return "aspects.Composite"
	}
	return out[0].String()
}

func sortedTypes(in []reflect.Type) []reflect.Type {
	out := make([]reflect.Type, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
