package aspects

import (
	"log/slog"
	"reflect"
	"time"

	"github.com/reglet-dev/reglet-aspects/capability"
)

// Invocation describes one bound capability call on its way to the provider.
type Invocation struct {
	// Signature is the capability being called.
	Signature capability.Signature

	// Provider is the provider the signature is routed to.
	Provider *Provider

	// Args holds the call arguments.
	Args []reflect.Value

	fn reflect.Value
}

// Handler performs an invocation.
type Handler func(inv *Invocation) ([]reflect.Value, error)

// Middleware wraps a Handler to add cross-cutting behaviour to dispatch.
// Middleware executes in FIFO order (first registered wraps first, onion model).
// A middleware that short-circuits without an error must return one value per
// method result; otherwise dispatch fails with a *ResultMismatchError.
//
// Example usage:
//
//	timing := func(next aspects.Handler) aspects.Handler {
//	    return func(inv *aspects.Invocation) ([]reflect.Value, error) {
//	        start := time.Now()
//	        defer func() { log.Printf("%s took %s", inv.Signature, time.Since(start)) }()
//	        return next(inv)
//	    }
//	}
type Middleware func(next Handler) Handler

func callProvider(inv *Invocation) ([]reflect.Value, error) {
	return inv.fn.Call(inv.Args), nil
}

func chain(mws []Middleware, h Handler) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RecoveryMiddleware converts a provider panic into a *ProviderPanicError
// instead of unwinding through the caller.
func RecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(inv *Invocation) (out []reflect.Value, err error) {
			defer func() {
				if r := recover(); r != nil {
					out = nil
					err = &ProviderPanicError{Signature: inv.Signature, Value: r}
				}
			}()
			return next(inv)
		}
	}
}

// LoggingMiddleware logs every dispatched capability at debug level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(inv *Invocation) ([]reflect.Value, error) {
			start := time.Now()
			out, err := next(inv)
			attrs := []any{
				"signature", inv.Signature.String(),
				"provider", inv.Provider.Type().String(),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Warn("capability call failed", append(attrs, "error", err)...)
			} else {
				logger.Debug("capability called", attrs...)
			}
			return out, err
		}
	}
}
