package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrProviderNotFound is returned when no catalog entry matches a request.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAlreadyRegistered is returned when a name and version are registered twice.
	ErrAlreadyRegistered = errors.New("provider already registered")

	// ErrInvalidName is returned for names that fail validation.
	ErrInvalidName = errors.New("invalid provider name")
)

// ProviderNotFoundError names the pattern and constraint nothing satisfied.
type ProviderNotFoundError struct {
	Pattern    string
	Constraint string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider not found: %s@%s", e.Pattern, e.Constraint)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, catalog.ErrProviderNotFound)
func (e *ProviderNotFoundError) Is(target error) bool {
	return target == ErrProviderNotFound
}
