package messaging

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// ErrClosed is returned when publishing on a closed in-process bus.
var ErrClosed = errors.New("messaging: bus closed")

// Memory is an in-process bus. Each Consume call is its own group and gets
// every message published to the topic after it subscribed.
type Memory struct {
	mu     sync.Mutex
	subs   map[string][]chan *Message
	seq    int64
	closed bool
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string][]chan *Message)}
}

// Close stops accepting messages.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Publish delivers msg to every current subscriber of destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return PublishResult{}, ErrClosed
	}
	m.seq++
	id := strconv.FormatInt(m.seq, 10)
	subs := append([]chan *Message{}, m.subs[destination]...)
	m.mu.Unlock()

	now := time.Now()
	for _, ch := range subs {
		in := &Message{
			ID:        id,
			Topic:     destination,
			Body:      append([]byte{}, msg.Body...),
			Headers:   append([]Header{}, msg.Headers...),
			Timestamp: now,
		}
		select {
		case ch <- in:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: now}, nil
}

// Consume handles messages for source until ctx is cancelled.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	ch := make(chan *Message, max(co.maxInFlight, 64))

	m.mu.Lock()
	m.subs[source] = append(m.subs[source], ch)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for range concurrencyOrDefault(co.concurrency, 1) {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-ch:
					if err := callHandlerWithRecover(ctx, "memory", msg, func() error { return handler(ctx, msg) }); err != nil {
						slog.WarnContext(ctx, "memory bus handler failed", "topic", source, "error", err)
					}
				}
			}
		})
	}

	<-ctx.Done()
	wg.Wait()

	m.mu.Lock()
	subs := m.subs[source]
	for i := range subs {
		if subs[i] == ch {
			m.subs[source] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	return ctx.Err()
}

// Subscribers reports how many consumers are attached to topic.
func (m *Memory) Subscribers(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[topic])
}
