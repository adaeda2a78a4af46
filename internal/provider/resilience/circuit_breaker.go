// Package resilience provides resilient HTTP client wrappers with circuit breakers,
// timeouts, and retry logic for external provider calls.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the circuit breaker for logging/metrics.
	Name string

	// MaxRequests is the maximum number of requests allowed in half-open state.
	// Default: 1
	MaxRequests uint32

	// Interval is the cyclic period for clearing internal counts when closed.
	// Default: 0 (disabled)
	Interval time.Duration

	// Timeout is the period of open state before switching to half-open.
	// Default: 60 seconds
	Timeout time.Duration

	// ReadyToTrip determines when to trip the circuit breaker.
	// If nil, uses DefaultReadyToTrip (50% failure rate with 5+ requests).
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange is called when the circuit breaker state changes.
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultCircuitBreakerConfig returns a sensible default configuration.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     60 * time.Second,
		ReadyToTrip: DefaultReadyToTrip,
	}
}

// FailFastCircuitBreakerConfig is used for upstreams that are never retried.
// Without retries a failing upstream produces one failure per caller request,
// so the breaker trips on a short run of consecutive failures instead of
// waiting for a failure ratio, and half-opens again sooner.
func FailFastCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: AnyOf(DefaultReadyToTrip, ConsecutiveFailureTrip(3)),
	}
}

// ConsecutiveFailureTrip trips once n requests in a row have failed.
func ConsecutiveFailureTrip(n uint32) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= n
	}
}

// AnyOf trips when any of the given policies would.
func AnyOf(policies ...func(gobreaker.Counts) bool) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		for _, p := range policies {
			if p(counts) {
				return true
			}
		}
		return false
	}
}

// DefaultReadyToTrip trips the circuit breaker when at least 5 requests have been made
// and the failure rate is 50% or higher.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < 5 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
// onChange, when set, is called after cfg.OnStateChange on every transition.
func NewCircuitBreaker[T any](cfg CircuitBreakerConfig, onChange ...func(name string, from, to gobreaker.State)) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: cfg.ReadyToTrip,
	}

	hooks := onChange
	if cfg.OnStateChange != nil {
		hooks = append([]func(string, gobreaker.State, gobreaker.State){cfg.OnStateChange}, onChange...)
	}
	if len(hooks) > 0 {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			for _, h := range hooks {
				h(name, from, to)
			}
		}
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}
