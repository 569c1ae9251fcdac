// Package idempotency guards side effects that must run at most once per key,
// such as delivering the SMS for one broker event that may be redelivered.
package idempotency

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

type State string

const (
	StateNone       State = "none"        // operation can proceed
	StateInProgress State = "in_progress" // another worker holds the key
	StateCompleted  State = "completed"   // operation already done
)

func (s State) String() string {
	return string(s)
}

// Idempotency runs fn once per key. A failed fn releases the key so a
// redelivered message can try again.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress key blocks other workers.
func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

// WithStateTTL sets how long a completed key is remembered.
func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = stateTTL
	}
}

func newExecOptions(opts ...Option) execOptions {
	eo := execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(&eo)
	}
	if eo.lockDuration <= 0 {
		eo.lockDuration = defaultLockDuration
	}
	if eo.stateTTL <= 0 {
		eo.stateTTL = defaultStateTTL
	}
	return eo
}

type store interface {
	acquire(ctx context.Context, key string, lock time.Duration) (State, error)
	complete(ctx context.Context, key string, ttl time.Duration) error
	release(ctx context.Context, key string) error
}

func exec(ctx context.Context, s store, key string, fn func(context.Context) error, opts ...Option) error {
	eo := newExecOptions(opts...)

	state, err := s.acquire(ctx, key, eo.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	}

	if err := fn(ctx); err != nil {
		return errors.Join(err, s.release(context.WithoutCancel(ctx), key))
	}

	return s.complete(context.WithoutCancel(ctx), key, eo.stateTTL)
}
