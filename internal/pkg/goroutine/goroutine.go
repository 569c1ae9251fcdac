// Package goroutine runs the process's long-lived background work: broker
// consumers, the challenge sweep and the rate limiter's cleanup loop.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/shandysiswandi/watercan/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

const DefaultMaxGoroutine int = 100

var (
	ErrInvalidInterval = errors.New("goroutine: interval must be positive")
	ErrPanicked        = errors.New("goroutine: task panicked")
)

// Manager bounds the number of concurrent tasks and collects their errors
// for Wait. Once Wait has been called no new task is accepted.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
	running atomic.Int64
}

// NewManager caps concurrency at maxGoroutine, or NumCPU*DefaultMaxGoroutine
// when maxGoroutine is not positive.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}
	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go starts f under name and reports whether it was started. A task is
// refused when the manager is closed or full. A task whose ctx is already
// done is started and returns immediately without running f.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, task refused", "task", name)
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine limit reached, task refused", "task", name, "limit", cap(g.sema))
		return false
	}

	g.running.Inc()
	g.wg.Go(func() {
		defer func() {
			g.running.Dec()
			<-g.sema

			if rvr := recover(); rvr != nil {
				stacktrace.LogPanic(ctx, "panic occurred in goroutine", rvr, "task", name)
				g.record(fmt.Errorf("%s: %w: %v", name, ErrPanicked, rvr))
			}
		}()

		if ctx.Err() != nil {
			slog.WarnContext(ctx, "task skipped, context done", "task", name, "because", ctx.Err())
			return
		}
		if err := f(ctx); err != nil {
			g.record(fmt.Errorf("%s: %w", name, err))
		}
	})

	return true
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Running returns the number of tasks currently executing.
func (g *Manager) Running() int64 {
	if g == nil {
		return 0
	}
	return g.running.Load()
}

// Wait closes the manager, blocks until every task returns and joins their
// errors. Each error is prefixed with its task name.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

// Every runs f on each tick of interval until ctx is cancelled. Errors from f
// are logged and do not stop the loop.
func Every(ctx context.Context, interval time.Duration, name string, f func(ctx context.Context) error) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "periodic job stopped", "job", name)
			return nil
		case <-ticker.C:
			if err := f(ctx); err != nil {
				slog.ErrorContext(ctx, "periodic job failed", "job", name, "error", err)
			}
		}
	}
}
