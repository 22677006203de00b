// Package circuitbreaker wraps sony/gobreaker with typed results and
// application defaults.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrOpen is returned while the breaker is rejecting calls.
var ErrOpen = errors.New("circuitbreaker: circuit open")

// Config controls trip and recovery behavior.
type Config struct {
	Name        string
	MaxRequests uint32        // half-open probe budget
	Interval    time.Duration // counter reset interval while closed
	Timeout     time.Duration // open -> half-open delay
	// MinRequests and FailureRatio define the trip condition: the breaker
	// opens once at least MinRequests calls were observed and the failure
	// ratio meets or exceeds FailureRatio.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultConfig returns conservative defaults for external HTTP feeds.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  3,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// CircuitBreaker is a typed wrapper around gobreaker.CircuitBreaker.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a breaker from cfg. onStateChange may be nil.
func New[T any](cfg Config, onStateChange func(name string, from, to gobreaker.State)) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
	}
	if onStateChange != nil {
		settings.OnStateChange = onStateChange
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, ErrOpen
	}
	return result, err
}

// State returns the breaker's current state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}
