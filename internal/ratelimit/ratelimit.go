// Package ratelimit provides a wrapper around golang.org/x/time/rate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces outbound requests to an upstream feed. Feed quotas are
// expressed in requests per second.
type Limiter struct {
	limiter *rate.Limiter
}

// NewWithBurst creates a new rate limiter with explicit burst.
func NewWithBurst(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}
