// Package challenge stores outstanding OTP challenges.
//
// Three backends share one contract: memory for a single instance, redis for
// a fleet, and bbolt for a single node that must survive restarts. Expired
// records stay readable until they are deleted or swept so the verifier can
// tell an expired challenge apart from a missing one.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/watercan/internal/identity/entity"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverBbolt  = "bbolt"
)

var ErrUnknownDriver = errors.New("challenge: unknown store driver")

// Options carries what each backend needs. Unused fields are ignored.
type Options struct {
	Redis *redis.Client
	// Grace keeps an expired redis record around long enough for the verifier
	// to report it as expired.
	Grace     time.Duration
	BboltPath string
}

// Store is the contract every backend satisfies. IncrementAttempts and Delete
// only act when the stored challenge still carries id, so a caller holding a
// superseded challenge can never touch its replacement.
type Store interface {
	Put(ctx context.Context, key string, c entity.Challenge) error
	Get(ctx context.Context, key string) (*entity.Challenge, error)
	IncrementAttempts(ctx context.Context, key, id string) (int, error)
	Delete(ctx context.Context, key, id string) (bool, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// New builds the backend named by driver. The returned closer releases
// backend resources and is never nil.
func New(driver string, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch strings.TrimSpace(driver) {
	case DriverMemory, "":
		return NewMemory(), noop, nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, noop, fmt.Errorf("%w: redis client is required", ErrUnknownDriver)
		}
		return NewRedis(opts.Redis, opts.Grace), noop, nil
	case DriverBbolt:
		s, err := NewBbolt(opts.BboltPath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
