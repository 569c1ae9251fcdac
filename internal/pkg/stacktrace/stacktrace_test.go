package stacktrace

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func panicky() {
	panic("boom")
}

func TestFrames_FromRecover(t *testing.T) {
	var frames []string
	func() {
		defer func() {
			if recover() != nil {
				frames = Frames(0)
			}
		}()
		panicky()
	}()

	if len(frames) == 0 {
		t.Fatal("Frames() returned nothing")
	}
	found := false
	for _, f := range frames {
		if !strings.HasPrefix(f, "internal/") {
			t.Fatalf("frame %q is not trimmed to internal/", f)
		}
		if strings.HasPrefix(f, "internal/pkg/stacktrace/stacktrace_test.go:") {
			found = true
		}
	}
	if !found {
		t.Fatalf("frames = %v, want the test file", frames)
	}
}

func TestLogPanic(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	func() {
		defer func() {
			if rvr := recover(); rvr != nil {
				LogPanic(context.Background(), "panic in worker", rvr, "worker", "sms")
			}
		}()
		panicky()
	}()

	out := buf.String()
	for _, want := range []string{`"msg":"panic in worker"`, `"panic":"boom"`, `"worker":"sms"`, "stacktrace_test.go"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %s missing %s", out, want)
		}
	}
}
