package aspects

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reglet-dev/reglet-aspects/capability"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrNotAComposite is returned when an operation needs a composite.
	ErrNotAComposite = errors.New("not a composite")

	// ErrIncompatibleView is returned when a target interface cannot be satisfied.
	ErrIncompatibleView = errors.New("incompatible view")

	// ErrNotAView is returned when unwrapping something that is not a view.
	ErrNotAView = errors.New("not a view")

	// ErrUnsupportedCapability is returned when calling an unbound capability.
	ErrUnsupportedCapability = errors.New("unsupported capability")

	// ErrReflectionInconsistency signals a defect in type introspection.
	// It is never recoverable.
	ErrReflectionInconsistency = errors.New("reflection inconsistency")

	// ErrNilProvider is returned when a nil value is offered as a provider.
	ErrNilProvider = errors.New("nil provider")

	// ErrNoViewAdapter is returned by As when no adapter is registered for the
	// target interface and the instance does not implement it directly.
	ErrNoViewAdapter = errors.New("no view adapter registered")

	// ErrResultMismatch is returned when the dispatch chain yields a result
	// list that does not fit the capability's method.
	ErrResultMismatch = errors.New("result count mismatch")
)

// NotACompositeError reports the type that was passed instead of a composite.
type NotACompositeError struct {
	Type reflect.Type
}

func (e *NotACompositeError) Error() string {
	return fmt.Sprintf("not a composite: %v", e.Type)
}

// Is implements error matching for errors.Is() checks.
func (e *NotACompositeError) Is(target error) bool {
	return target == ErrNotAComposite
}

// NotAViewError reports the type that was passed instead of a view.
type NotAViewError struct {
	Type reflect.Type
}

func (e *NotAViewError) Error() string {
	return fmt.Sprintf("not a view: %v", e.Type)
}

// Is implements error matching for errors.Is() checks.
func (e *NotAViewError) Is(target error) bool {
	return target == ErrNotAView
}

// IncompatibleViewError names the instance type, the target interface and the
// first method that could not be matched.
type IncompatibleViewError struct {
	Type   reflect.Type
	Target reflect.Type
	Method string
	Reason string
}

func (e *IncompatibleViewError) Error() string {
	msg := fmt.Sprintf("%v is not compatible with %v", e.Type, e.Target)
	if e.Method != "" {
		msg += fmt.Sprintf(": method %s", e.Method)
		if e.Reason != "" {
			msg += " " + e.Reason
		}
	}
	return msg
}

// Is implements error matching for errors.Is() checks.
func (e *IncompatibleViewError) Is(target error) bool {
	return target == ErrIncompatibleView
}

// UnsupportedCapabilityError names the signature that has no bound provider.
type UnsupportedCapabilityError struct {
	Signature capability.Signature
}

func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf("the composite does not support %s", e.Signature)
}

// Is implements error matching for errors.Is() checks.
func (e *UnsupportedCapabilityError) Is(target error) bool {
	return target == ErrUnsupportedCapability
}

// ReflectionInconsistencyError wraps the introspection failure that aborted an
// operation.
type ReflectionInconsistencyError struct {
	Type reflect.Type
	Err  error
}

func (e *ReflectionInconsistencyError) Error() string {
	return fmt.Sprintf("reflection inconsistency on %v: %v", e.Type, e.Err)
}

// Is implements error matching for errors.Is() checks.
func (e *ReflectionInconsistencyError) Is(target error) bool {
	return target == ErrReflectionInconsistency
}

// Unwrap returns the underlying introspection error.
func (e *ReflectionInconsistencyError) Unwrap() error {
	return e.Err
}

// ProviderPanicError carries a panic recovered from a provider by
// RecoveryMiddleware.
type ProviderPanicError struct {
	Signature capability.Signature
	Value     any
}

func (e *ProviderPanicError) Error() string {
	return fmt.Sprintf("provider panicked in %s: %v", e.Signature, e.Value)
}

// ResultMismatchError reports a dispatch chain that returned Got results for
// a method declaring a different number.
type ResultMismatchError struct {
	Signature capability.Signature
	Got       int
}

func (e *ResultMismatchError) Error() string {
	return fmt.Sprintf("%s: dispatch returned %d results, want %d", e.Signature, e.Got, e.Signature.Func.NumOut())
}

// Is implements error matching for errors.Is() checks.
func (e *ResultMismatchError) Is(target error) bool {
	return target == ErrResultMismatch
}
