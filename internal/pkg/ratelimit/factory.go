package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

var ErrUnknownDriver = errors.New("ratelimit: unknown driver")

// Factory builds named limiters that share one backend.
type Factory struct {
	Driver string
	Redis  *redis.Client
	Clock  clock.Clocker
	// Start runs background loops such as the memory cleanup. It must return
	// promptly and stop the loop when its context is cancelled.
	Start func(run func(ctx context.Context) error)
}

// New builds the limiter called name with cfg.
func (f Factory) New(name string, cfg Config) (Limiter, error) {
	switch strings.TrimSpace(f.Driver) {
	case DriverMemory, "":
		m, err := NewMemory(cfg, f.Clock)
		if err != nil {
			return nil, err
		}
		if f.Start != nil {
			f.Start(m.Run)
		}
		return m, nil

	case DriverRedis:
		if f.Redis == nil {
			return nil, fmt.Errorf("%w: redis client is required", ErrUnknownDriver)
		}
		return NewRedis(f.Redis, cfg, f.Clock, name)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, f.Driver)
	}
}
