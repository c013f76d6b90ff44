package httpx

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// halfOpenProbes caps how many trial requests an open breaker lets through
// while deciding whether the upstream has recovered.
const halfOpenProbes = 5

// CircuitBreaker trips after repeated upstream failures so a dead scanner
// endpoint fails fast instead of stalling every prompt on its timeout.
type CircuitBreaker interface {
	Execute(fn func() error) error
}

type circuitBreakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker opens the circuit after maxFailures consecutive failures
// and keeps it open for timeout before probing the upstream again.
func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpenProbes,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &circuitBreakerWrapper{
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (g *circuitBreakerWrapper) Execute(fn func() error) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("circuit %q: %w", g.breaker.Name(), err)
	}
	return nil
}
