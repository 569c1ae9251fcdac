// Package stacktrace turns a recovered panic into a short, log friendly list
// of the module's own frames.
package stacktrace

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

const maxFrames = 32

// Frames returns the caller's stack as "internal/<pkg>/<file>.go:<line>"
// entries. Frames outside an internal/ tree are dropped.
func Frames(skip int) []string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]string, 0, n)
	for {
		f, more := frames.Next()
		if idx := strings.LastIndex(f.File, "/internal/"); idx != -1 {
			out = append(out, f.File[idx+1:]+":"+strconv.Itoa(f.Line))
		}
		if !more {
			break
		}
	}
	return out
}

// LogPanic logs a recovered value with the module frames of the panicking
// goroutine. It must be called from the deferred function that recovered.
// When no module frame is found the full runtime stack is logged instead.
func LogPanic(ctx context.Context, msg string, rvr any, args ...any) {
	args = append(args, "panic", rvr)
	if frames := Frames(1); len(frames) > 0 {
		args = append(args, "stack", frames)
	} else {
		args = append(args, "stack", string(debug.Stack()))
	}
	slog.ErrorContext(ctx, msg, args...)
}
