// Package manifest describes composites declaratively: a named, ordered list
// of catalog providers with their version constraints and opted-out methods.
package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for manifest handling.
var (
	// ErrInvalidManifest is returned when a manifest fails validation.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrNotFound is returned when no manifest exists at a path.
	ErrNotFound = errors.New("manifest not found")
)

// Manifest is the document form of a composite.
type Manifest struct {
	Name        string         `json:"name" yaml:"name" jsonschema:"minLength=1,description=Name of the composite"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" jsonschema:"description=Free-form description"`
	Providers   []ProviderSpec `json:"providers" yaml:"providers" jsonschema:"minItems=1,description=Providers in composition order; later entries override earlier ones"`
}

// ProviderSpec selects catalog providers by name or glob and version
// constraint.
type ProviderSpec struct {
	Name           string   `json:"name" yaml:"name" jsonschema:"minLength=1,description=Catalog name or glob"`
	Version        string   `json:"version,omitempty" yaml:"version,omitempty" jsonschema:"description=Semver constraint or latest"`
	NotImplemented []string `json:"not_implemented,omitempty" yaml:"not_implemented,omitempty" jsonschema:"description=Methods the provider opts out of"`
}

// Constraint returns the version constraint, defaulting to "latest".
func (p ProviderSpec) Constraint() string {
	if strings.TrimSpace(p.Version) == "" {
		return "latest"
	}
	return p.Version
}

// ValidationError lists every problem found in a manifest.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid manifest: %s", strings.Join(e.Problems, "; "))
}

// Is implements error matching for errors.Is() checks.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidManifest
}

// Validate checks the manifest's structural rules.
func (m *Manifest) Validate() error {
	if m == nil {
		return &ValidationError{Problems: []string{"manifest is nil"}}
	}

	var problems []string
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, "name is required")
	}
	if len(m.Providers) == 0 {
		problems = append(problems, "at least one provider is required")
	}
	for i, p := range m.Providers {
		if strings.TrimSpace(p.Name) == "" {
			problems = append(problems, fmt.Sprintf("providers[%d]: name is required", i))
		}
		for j, method := range p.NotImplemented {
			if strings.TrimSpace(method) == "" {
				problems = append(problems, fmt.Sprintf("providers[%d].not_implemented[%d]: empty method", i, j))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
