package aspects

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/reglet-dev/reglet-aspects/capability"
)

// Composer builds composites. The zero configuration uses the default
// capability index and slog.Default().
type Composer struct {
	index      *capability.Index
	logger     *slog.Logger
	middleware []Middleware
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithIndex sets the capability index used to describe providers.
func WithIndex(index *capability.Index) ComposerOption {
	return func(c *Composer) { c.index = index }
}

// WithLogger sets the logger handed to every composite built.
func WithLogger(l *slog.Logger) ComposerOption {
	return func(c *Composer) { c.logger = l }
}

// WithMiddleware appends dispatch middleware. Middleware executes in FIFO
// order: the first registered is the outermost.
func WithMiddleware(mw ...Middleware) ComposerOption {
	return func(c *Composer) { c.middleware = append(c.middleware, mw...) }
}

// NewComposer creates a composer with the given options.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{
		index: capability.DefaultIndex(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultComposer = NewComposer()

// Compose joins providers with the default composer.
func Compose(providers ...any) (*Composite, error) {
	return defaultComposer.Compose(providers...)
}

// Compose joins providers into a new composite exposing the union of their
// capability interfaces.
//
// Each argument is a provider value, a *Provider carrying options, or a
// *Composite whose routing and providers are merged in place. When several
// providers implement the same capability the later argument wins. Methods a
// provider opted out of are never routed to it. The arguments are not
// modified.
func (c *Composer) Compose(providers ...any) (*Composite, error) {
	comp := c.newComposite()
	for i, arg := range providers {
		if nested, ok := arg.(*Composite); ok {
			comp.merge(nested)
			continue
		}

		p, err := c.prepare(arg)
		if err != nil {
			return nil, fmt.Errorf("provider %d: %w", i, err)
		}
		comp.providers = append(comp.providers, p)
		for _, iface := range p.desc.Interfaces {
			comp.declare(iface)
		}
		for _, sig := range p.desc.Signatures {
			if p.NotImplemented(sig) {
				comp.logger.Debug("capability not implemented by provider",
					"signature", sig.String(),
					"provider", p.Type().String())
				continue
			}
			if err := comp.bind(sig, p); err != nil {
				return nil, err
			}
		}
	}
	comp.logger.Debug("composite built",
		"providers", len(comp.providers),
		"interfaces", len(comp.declared),
		"bound", len(comp.routing))
	return comp, nil
}

func (c *Composer) newComposite() *Composite {
	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}
	comp := &Composite{
		index:       c.indexOrDefault(),
		logger:      logger,
		declaredSet: make(map[reflect.Type]struct{}),
		routing:     make(map[capability.Signature]*binding),
	}
	comp.handler = chain(c.middleware, callProvider)
	return comp
}

// prepare wraps arg into a described Provider owned by the caller's composite.
func (c *Composer) prepare(arg any) (*Provider, error) {
	return prepareProvider(c.indexOrDefault(), arg)
}

func (c *Composer) indexOrDefault() *capability.Index {
	if c.index == nil {
		return capability.DefaultIndex()
	}
	return c.index
}

func prepareProvider(index *capability.Index, arg any) (*Provider, error) {
	var p Provider
	switch v := arg.(type) {
	case nil:
		return nil, ErrNilProvider
	case *Provider:
		if v == nil || !v.rv.IsValid() {
			return nil, ErrNilProvider
		}
		p = *v
	default:
		p = *NewProvider(arg)
	}

	desc, err := index.Describe(p.rv.Type())
	if err != nil {
		return nil, &ReflectionInconsistencyError{Type: p.rv.Type(), Err: err}
	}
	p.desc = desc
	return &p, nil
}

// merge folds another composite into c: its providers join the list in order
// and its bindings override earlier ones.
func (c *Composite) merge(other *Composite) {
	c.providers = append(c.providers, other.providers...)
	for _, iface := range other.declared {
		c.declare(iface)
	}
	for sig, b := range other.routing {
		c.routing[sig] = b
	}
}
