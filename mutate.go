package aspects

import (
	"github.com/reglet-dev/reglet-aspects/capability"
)

// Add routes capabilities the composite already declares to the given
// providers, overriding current bindings. It never introduces interfaces the
// composite was not built with. A provider joins the provider list only if it
// overrode at least one capability.
//
// Composite arguments contribute their providers in order. Add returns the
// overridden signatures in the order they were claimed.
func (c *Composite) Add(providers ...any) ([]capability.Signature, error) {
	prepared := make([]*Provider, 0, len(providers))
	for _, arg := range providers {
		if nested, ok := arg.(*Composite); ok {
			prepared = append(prepared, nested.providers...)
			continue
		}
		p, err := prepareProvider(c.index, arg)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}

	var overridden []capability.Signature
	seen := make(map[capability.Signature]struct{})
	for _, p := range prepared {
		contributed := false
		for _, sig := range p.desc.Signatures {
			if !c.isDeclared(sig.Interface) || p.NotImplemented(sig) {
				continue
			}
			if err := c.bind(sig, p); err != nil {
				return overridden, err
			}
			contributed = true
			if _, ok := seen[sig]; !ok {
				seen[sig] = struct{}{}
				overridden = append(overridden, sig)
			}
			c.logger.Debug("capability overridden",
				"signature", sig.String(),
				"provider", p.Type().String())
		}
		if contributed {
			c.providers = append(c.providers, p)
		}
	}
	return overridden, nil
}

// Remove drops every provider matching one of targets. A target is a provider
// value, a *Provider handle, or a reflect.Type matching the provider's concrete
// type. Pointer-like values match by identity; other values match by equality,
// deep equality for values that are not comparable.
//
// Capabilities left without a provider are re-resolved against the remaining
// providers, most recently added first, skipping providers that opted out.
// Remove returns the signatures no remaining provider could take over.
func (c *Composite) Remove(targets ...any) []capability.Signature {
	removed := make(map[*Provider]struct{})
	kept := make([]*Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if matchesAny(p, targets) {
			removed[p] = struct{}{}
			continue
		}
		kept = append(kept, p)
	}
	if len(removed) == 0 {
		return nil
	}
	c.providers = kept

	var vacated []capability.Signature
	for sig, b := range c.routing {
		if _, ok := removed[b.provider]; ok {
			delete(c.routing, sig)
			vacated = append(vacated, sig)
		}
	}
	capability.SortSignatures(vacated)

	var unfilled []capability.Signature
	for _, sig := range vacated {
		if p := c.fallback(sig); p != nil {
			// fallback only returns providers whose descriptor holds sig.
			_ = c.bind(sig, p)
			c.logger.Debug("capability refilled",
				"signature", sig.String(),
				"provider", p.Type().String())
			continue
		}
		unfilled = append(unfilled, sig)
		c.logger.Warn("capability left without provider", "signature", sig.String())
	}
	return unfilled
}

// fallback finds the most recently added provider offering sig.
func (c *Composite) fallback(sig capability.Signature) *Provider {
	for i := len(c.providers) - 1; i >= 0; i-- {
		if p := c.providers[i]; p.Offers(sig) {
			return p
		}
	}
	return nil
}

func matchesAny(p *Provider, targets []any) bool {
	for _, t := range targets {
		if p.matches(t) {
			return true
		}
	}
	return false
}
