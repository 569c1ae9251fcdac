package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/watercan/internal/pkg/clock"
	"go.uber.org/atomic"
)

// Memory is a sliding-log limiter for a single instance.
type Memory struct {
	cfg   Config
	clock clock.Clocker

	mu       sync.Mutex
	attempts map[string][]time.Time

	rejected *atomic.Int64
}

// NewMemory builds an in-process limiter. Call Run to start the cleanup loop.
func NewMemory(cfg Config, clk clock.Clocker) (*Memory, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = cfg.WindowSize
	}

	return &Memory{
		cfg:      cfg,
		clock:    clk,
		attempts: make(map[string][]time.Time),
		rejected: atomic.NewInt64(0),
	}, nil
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, key string) (Info, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	log := prune(m.attempts[key], now.Add(-m.cfg.WindowSize))

	if len(log) >= m.cfg.MaxAttempts {
		m.attempts[key] = log
		m.rejected.Inc()

		reset := log[0].Add(m.cfg.WindowSize)
		return Info{
			Allowed:    false,
			Limit:      m.cfg.MaxAttempts,
			Remaining:  0,
			ResetTime:  reset,
			RetryAfter: reset.Sub(now),
		}, nil
	}

	log = append(log, now)
	m.attempts[key] = log

	return Info{
		Allowed:   true,
		Limit:     m.cfg.MaxAttempts,
		Remaining: m.cfg.MaxAttempts - len(log),
		ResetTime: log[0].Add(m.cfg.WindowSize),
	}, nil
}

// Rejected returns how many attempts were refused since start.
func (m *Memory) Rejected() int64 {
	return m.rejected.Load()
}

// Run drops idle keys every CleanupPeriod until ctx is cancelled.
func (m *Memory) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.cleanup(); n > 0 {
				slog.DebugContext(ctx, "rate limiter cleanup", "removed_keys", n)
			}
		}
	}
}

func (m *Memory) cleanup() int {
	cutoff := m.clock.Now().Add(-m.cfg.WindowSize)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, log := range m.attempts {
		log = prune(log, cutoff)
		if len(log) == 0 {
			delete(m.attempts, key)
			removed++
			continue
		}
		m.attempts[key] = log
	}
	return removed
}

// prune drops timestamps at or before cutoff; log is ordered oldest first.
func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return log
	}
	return append(log[:0], log[i:]...)
}
