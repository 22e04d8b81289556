// Package catalog keeps named, versioned provider factories and turns
// manifests into composites.
package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	aspects "github.com/reglet-dev/reglet-aspects"
	"github.com/reglet-dev/reglet-aspects/manifest"
)

// Factory builds a fresh provider value.
type Factory func() (any, error)

// Entry is one registered provider version.
type Entry struct {
	Name    Name
	Version *semver.Version
	factory Factory
}

// New calls the entry's factory.
func (e *Entry) New() (any, error) {
	v, err := e.factory()
	if err != nil {
		return nil, fmt.Errorf("instantiating %s@%s: %w", e.Name, e.Version.Original(), err)
	}
	return v, nil
}

// Catalog is an in-memory provider catalog safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string][]*Entry
	logger  *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = l
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		entries: make(map[string][]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Register adds a factory under name and version.
func (c *Catalog) Register(name, version string, f Factory) error {
	n, err := NewName(name)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version %q for %s: %w", version, n, err)
	}
	if f == nil {
		return fmt.Errorf("nil factory for %s@%s", n, version)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries[n.String()] {
		if e.Version.Equal(v) {
			return fmt.Errorf("%w: %s@%s", ErrAlreadyRegistered, n, version)
		}
	}
	c.entries[n.String()] = append(c.entries[n.String()], &Entry{Name: n, Version: v, factory: f})
	c.logger.Debug("provider registered", "name", n.String(), "version", v.Original())
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(name, version string, f Factory) {
	if err := c.Register(name, version, f); err != nil {
		panic(err)
	}
}

// Names returns the registered names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Versions returns the versions registered under name, ascending.
func (c *Catalog) Versions(name string) []string {
	c.mu.RLock()
	entries := c.entries[name]
	versions := make([]*semver.Version, 0, len(entries))
	for _, e := range entries {
		versions = append(versions, e.Version)
	}
	c.mu.RUnlock()

	sort.Sort(semver.Collection(versions))
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.Original()
	}
	return out
}

// Resolve returns the highest version of name satisfying constraint.
func (c *Catalog) Resolve(name, constraint string) (*Entry, error) {
	con, err := parseConstraint(constraint)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.resolveLocked(name, con)
	if !ok {
		return nil, &ProviderNotFoundError{Pattern: name, Constraint: constraintOrLatest(constraint)}
	}
	return e, nil
}

// Match resolves pattern, a name or a doublestar glob, returning the highest
// satisfying version of every matching name in name order. Names with no
// satisfying version are skipped; matching nothing is an error.
func (c *Catalog) Match(pattern, constraint string) ([]*Entry, error) {
	if !isGlob(pattern) {
		e, err := c.Resolve(pattern, constraint)
		if err != nil {
			return nil, err
		}
		return []*Entry{e}, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", ErrInvalidName, pattern)
	}
	con, err := parseConstraint(constraint)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		if ok, _ := doublestar.Match(pattern, n); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	var out []*Entry
	for _, n := range names {
		if e, ok := c.resolveLocked(n, con); ok {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, &ProviderNotFoundError{Pattern: pattern, Constraint: constraintOrLatest(constraint)}
	}
	return out, nil
}

func (c *Catalog) resolveLocked(name string, con *semver.Constraints) (*Entry, bool) {
	byVersion := make(map[*semver.Version]*Entry)
	var valid []*semver.Version
	for _, e := range c.entries[name] {
		if con.Check(e.Version) {
			valid = append(valid, e.Version)
			byVersion[e.Version] = e
		}
	}
	v, ok := highest(valid)
	if !ok {
		return nil, false
	}
	return byVersion[v], true
}

// Providers instantiates every entry ps selects, each wrapped with the
// methods ps opts out of.
func (c *Catalog) Providers(ps manifest.ProviderSpec) ([]*aspects.Provider, error) {
	entries, err := c.Match(ps.Name, ps.Constraint())
	if err != nil {
		return nil, err
	}
	out := make([]*aspects.Provider, 0, len(entries))
	for _, e := range entries {
		v, err := e.New()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("%s@%s: %w", e.Name, e.Version.Original(), aspects.ErrNilProvider)
		}
		c.logger.Debug("provider resolved",
			"request", ps.Name,
			"name", e.Name.String(),
			"version", e.Version.Original())
		out = append(out, aspects.NewProvider(v, aspects.WithNotImplemented(ps.NotImplemented...)))
	}
	return out, nil
}

// Compose validates m, instantiates its providers in manifest order and
// composes them. A glob contributes its matches in name order.
func (c *Catalog) Compose(m *manifest.Manifest, opts ...aspects.ComposerOption) (*aspects.Composite, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var providers []any
	for i, ps := range m.Providers {
		built, err := c.Providers(ps)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: providers[%d]: %w", m.Name, i, err)
		}
		for _, p := range built {
			providers = append(providers, p)
		}
	}

	comp, err := aspects.NewComposer(opts...).Compose(providers...)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", m.Name, err)
	}
	c.logger.Info("manifest composed",
		"manifest", m.Name,
		"providers", len(providers),
		"interfaces", len(comp.Interfaces()))
	return comp, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func constraintOrLatest(constraint string) string {
	if constraint == "" {
		return Latest
	}
	return constraint
}
