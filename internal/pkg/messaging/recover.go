package messaging

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/watercan/internal/pkg/stacktrace"
)

// callHandlerWithRecover turns a handler panic into an error so the backend
// can nack or drop the message instead of crashing the consumer loop.
func callHandlerWithRecover(ctx context.Context, backend string, msg *Message, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stacktrace.LogPanic(ctx, "panic in messaging handler", rvr, "backend", backend, "topic", msg.Topic, "message_id", msg.ID)
			err = fmt.Errorf("messaging: panic in %s handler for %s: %v", backend, msg.Topic, rvr)
		}
	}()

	return fn()
}
