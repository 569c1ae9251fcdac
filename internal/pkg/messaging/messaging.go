package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrHandlerRequired is returned when Consume is called with a nil handler.
var ErrHandlerRequired = errors.New("messaging: handler is required")

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer blocks consuming messages from a source until ctx is cancelled.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg *Message) error

// Header is a key/value pair carried next to the body. Brokers without
// header support (NSQ) drop them.
type Header struct {
	Key   string
	Value []byte
}

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	Body []byte
	// Key is used by Kafka for partitioning.
	Key     []byte
	Headers []Header
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// Message is a received message.
type Message struct {
	ID        string
	Topic     string
	Body      []byte
	Headers   []Header
	Timestamp time.Time
}

// Header returns the first header value for key.
func (m *Message) Header(key string) (string, bool) {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}

// HeaderMap returns the headers keyed by name. Later duplicates win.
func (m *Message) HeaderMap() map[string]string {
	out := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

func concurrencyOrDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
