// Package clock hides time.Now behind an interface so expiry, rate windows
// and session lifetimes can be tested at fixed instants.
package clock

import (
	"sync"
	"time"
)

// Clocker returns the current time.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock in UTC. Stored timestamps and token
// claims are compared in UTC everywhere.
type TimeClocker struct{}

func New() *TimeClocker {
	return &TimeClocker{}
}

func (*TimeClocker) Now() time.Time {
	return time.Now().UTC()
}

// Frozen stays at one instant until moved with Set or Advance. It is safe
// for concurrent use.
type Frozen struct {
	mu  sync.RWMutex
	now time.Time
}

func NewFrozen(at time.Time) *Frozen {
	return &Frozen{now: at}
}

func (f *Frozen) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

func (f *Frozen) Set(at time.Time) {
	f.mu.Lock()
	f.now = at
	f.mu.Unlock()
}

func (f *Frozen) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
