package challenge

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

// Memory keeps challenges in a map. Sweep takes the same lock as requests.
type Memory struct {
	mu    sync.Mutex
	items map[string]entity.Challenge
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]entity.Challenge)}
}

func (m *Memory) Put(_ context.Context, key string, c entity.Challenge) error {
	m.mu.Lock()
	m.items[key] = c
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (*entity.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.items[key]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &c, nil
}

func (m *Memory) IncrementAttempts(_ context.Context, key, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.items[key]
	if !ok || c.ID != id {
		return 0, goerror.ErrNotFound
	}
	c.Attempts++
	m.items[key] = c
	return c.Attempts, nil
}

func (m *Memory) Delete(_ context.Context, key, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.items[key]; !ok || c.ID != id {
		return false, nil
	}
	delete(m.items, key)
	return true, nil
}

func (m *Memory) Sweep(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, c := range m.items {
		if c.IsExpired(now) {
			delete(m.items, k)
			removed++
		}
	}
	return removed, nil
}

// Len reports how many challenges are held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
