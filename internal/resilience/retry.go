// Package resilience provides retry with backoff for webhook delivery.
package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"time"
)

// transientError marks an error as safe to retry.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps an error as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether the error chain contains a transient
// marker or a network timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Policy controls retry attempts and backoff.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
	JitterFraction float64
}

// DefaultPolicy suits short webhook calls: three attempts with a half
// second base backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	}
}

// Do executes fn, retrying transient errors per the policy. Context
// cancellation stops retries immediately.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}

	backoff := p.InitialBackoff
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || !IsTransient(lastErr) || attempt >= p.MaxAttempts-1 {
			return lastErr
		}

		delay := backoff
		if p.JitterFraction > 0 {
			jitter := 1 + p.JitterFraction*(2*rand.Float64()-1)
			delay = time.Duration(float64(delay) * jitter)
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
		backoff = time.Duration(float64(backoff) * p.Multiplier)
	}
	return lastErr
}
