package httpx

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

type CircuitBreaker interface {
	Execute(fn func() error) error
	State() string
}

type circuitBreakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker opens after maxFailures consecutive failures and probes
// again once timeout has elapsed.
func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
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
	_, err := g.breaker.Execute(func() (out interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", g.breaker.Name(), err)
	}
	return nil
}

func (g *circuitBreakerWrapper) State() string {
	return g.breaker.State().String()
}

// IsBreakerOpen reports whether err was produced by a breaker refusing the call.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
