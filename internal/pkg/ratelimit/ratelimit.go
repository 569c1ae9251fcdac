// Package ratelimit implements sliding-window request limiting keyed by an
// arbitrary string (client IP, phone number, ...).
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidConfig is returned when a limiter is built with a non-positive window or limit.
var ErrInvalidConfig = errors.New("ratelimit: window and max attempts must be positive")

// Config describes one limit: at most MaxAttempts within WindowSize.
type Config struct {
	WindowSize  time.Duration
	MaxAttempts int
	// CleanupPeriod is how often the memory driver drops idle keys.
	CleanupPeriod time.Duration
}

func (c Config) validate() error {
	if c.WindowSize <= 0 || c.MaxAttempts <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Info is the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter records one attempt for key and reports whether it is within the limit.
// A rejected attempt is not recorded.
type Limiter interface {
	Allow(ctx context.Context, key string) (Info, error)
}
