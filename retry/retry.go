// Package retry wraps a single fallible remote call with bounded backoff
// specialized for provider rate limits. The delay grows linearly with a
// large fixed floor because provider cool-down windows are long: with the
// defaults the waits are 80s, 100s, 120s, 140s.
package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRetriesExhausted is returned when every attempt failed with a rate-limit error
var ErrRetriesExhausted = errors.New("retries exhausted due to rate limits")

const (
	// DefaultMaxAttempts is the total attempt budget, first call included
	DefaultMaxAttempts = 5
	// DefaultBaseDelay scales with the attempt index
	DefaultBaseDelay = 20 * time.Second
	// DefaultFixedOffset is added to every wait to cover provider cool-down windows
	DefaultFixedOffset = 60 * time.Second
)

// Policy retries rate-limited calls. The zero value is not usable; use New.
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	fixedOffset time.Duration
	sleep       func(time.Duration)
}

// Option configures a Policy
type Option func(*Policy)

// WithMaxAttempts sets the total attempt budget
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		p.maxAttempts = n
	}
}

// WithBaseDelay sets the per-attempt delay multiplier
func WithBaseDelay(d time.Duration) Option {
	return func(p *Policy) {
		p.baseDelay = d
	}
}

// WithFixedOffset sets the fixed floor added to every wait
func WithFixedOffset(d time.Duration) Option {
	return func(p *Policy) {
		p.fixedOffset = d
	}
}

// WithSleep replaces the sleep function, for tests
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *Policy) {
		p.sleep = sleep
	}
}

// New creates a Policy with the default rate-limit budget.
func New(opts ...Option) *Policy {
	p := &Policy{
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		fixedOffset: DefaultFixedOffset,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsRateLimit reports whether err looks like a provider rate-limit rejection.
// Matches HTTP 429 and the textual markers the major providers use.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}

// Do runs fn until it succeeds, fails with a non-rate-limit error, or the
// attempt budget runs out. Only rate-limit errors are retried; anything else
// propagates immediately.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}
		lastErr = err
		if attempt < p.maxAttempts-1 {
			wait := p.baseDelay*time.Duration(attempt+1) + p.fixedOffset
			p.sleep(wait)
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, p.maxAttempts, lastErr)
}
