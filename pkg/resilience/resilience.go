// Package resilience wraps synchronous cross-service calls with an explicit
// per-call-site degradation policy and a per-dependency circuit breaker. Call
// sites choose what a remote failure means instead of swallowing errors ad hoc.
package resilience

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"orderhub/pkg/apperr"
	"orderhub/pkg/logging"
)

type kind int

const (
	kindPropagate kind = iota
	kindFailOpen
	kindDegradeOptional
	kindAssumeDefault
)

// Policy is the tagged degradation variant for one call site.
type Policy[T any] struct {
	kind     kind
	fallback T
}

// Propagate defines no fallback: a remote failure surfaces as
// SERVICE_UNAVAILABLE to the caller.
func Propagate[T any]() Policy[T] { return Policy[T]{kind: kindPropagate} }

// FailOpen lets the primary operation proceed on remote failure; the zero
// value is returned and the failure is only logged.
func FailOpen[T any]() Policy[T] { return Policy[T]{kind: kindFailOpen} }

// DegradeOptional omits an optional enrichment on remote failure.
func DegradeOptional[T any]() Policy[T] { return Policy[T]{kind: kindDegradeOptional} }

// AssumeDefault substitutes a fixed default on remote failure, e.g.
// assume-exists = true for existence checks guarding writes.
func AssumeDefault[T any](v T) Policy[T] { return Policy[T]{kind: kindAssumeDefault, fallback: v} }

// Dependency is one named downstream service with its own breaker. Once the
// breaker is open, calls short-circuit to the policy without touching the
// network; a half-open probe closes it again on success.
type Dependency struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

func New(name string) *Dependency {
	return &Dependency{
		name: name,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && ratio >= 0.5
			},
		}),
	}
}

func (d *Dependency) Name() string { return d.name }

// Call runs fn through the dependency's breaker and applies the policy to any
// failure, breaker short-circuits included.
func Call[T any](ctx context.Context, dep *Dependency, policy Policy[T], fn func(context.Context) (T, error)) (T, error) {
	res, err := dep.cb.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err == nil {
		return res.(T), nil
	}

	l := logging.FromContext(ctx).With("dependency", dep.name, "breaker", dep.cb.State().String())

	var zero T
	switch policy.kind {
	case kindFailOpen:
		l.Warn("dependency call failed, proceeding fail-open", "error", err)
		return zero, nil
	case kindDegradeOptional:
		l.Warn("dependency call failed, omitting optional data", "error", err)
		return zero, nil
	case kindAssumeDefault:
		l.Warn("dependency call failed, assuming default", "error", err)
		return policy.fallback, nil
	default:
		l.Error("dependency call failed, no fallback policy", "error", err)
		return zero, apperr.ErrServiceUnavailable.WithCause(err)
	}
}
