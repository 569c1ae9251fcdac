package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/watercan/internal/pkg/clock"
)

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// Memory keeps key state in process. It only deduplicates within one instance.
type Memory struct {
	mu      sync.Mutex
	clock   clock.Clocker
	entries map[string]memoryEntry
}

func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{clock: clk, entries: map[string]memoryEntry{}}
}

func (m *Memory) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	return exec(ctx, m, key, fn, opts...)
}

func (m *Memory) acquire(_ context.Context, key string, lock time.Duration) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if e, ok := m.entries[key]; ok && now.Before(e.expiresAt) {
		return e.state, nil
	}

	m.entries[key] = memoryEntry{state: StateInProgress, expiresAt: now.Add(lock)}
	return StateNone, nil
}

func (m *Memory) complete(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.entries[key] = memoryEntry{state: StateCompleted, expiresAt: now.Add(ttl)}

	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *Memory) release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
