package inbound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/watercan/internal/notification/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goroutine"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/messaging"
	"github.com/shandysiswandi/watercan/internal/shared/event"
	"go.opentelemetry.io/otel/trace"
)

type fakeUUID struct{}

func (fakeUUID) Generate() string { return "generated-cid" }

type fakeUsecase struct {
	mu       sync.Mutex
	err      error
	got      []usecase.OTPDeliverInput
	cids     []string
	traceIDs []string
}

func (f *fakeUsecase) OTPDeliver(ctx context.Context, in usecase.OTPDeliverInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, in)
	f.cids = append(f.cids, instrument.GetCorrelationID(ctx))
	f.traceIDs = append(f.traceIDs, trace.SpanContextFromContext(ctx).TraceID().String())
	return f.err
}

func (f *fakeUsecase) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func newHandler(uc uc) *MQHandler {
	return &MQHandler{uc: uc, uuid: fakeUUID{}, ins: instrument.NewNoop()}
}

func TestMQHandler_OTPIssuedNotification(t *testing.T) {
	fuc := &fakeUsecase{}
	h := newHandler(fuc)

	msg := &messaging.Message{
		ID:    "1",
		Topic: event.OTPIssuedDestination,
		Body: []byte(`{"event_id":"evt-1","kind":"distributor","identifier":"9876543210",` +
			`"code":"042917","expires_at":"2026-03-14T09:05:00Z"}`),
		Headers: []messaging.Header{
			{Key: event.HeaderCorrelationID, Value: []byte("corr-1")},
			{Key: "traceparent", Value: []byte("00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")},
		},
	}

	if err := h.OTPIssuedNotification(context.Background(), msg); err != nil {
		t.Fatalf("OTPIssuedNotification() error = %v", err)
	}

	if fuc.calls() != 1 {
		t.Fatalf("calls = %d, want 1", fuc.calls())
	}
	got := fuc.got[0]
	want := usecase.OTPDeliverInput{
		EventID:    "evt-1",
		Kind:       "distributor",
		Identifier: "9876543210",
		Code:       "042917",
		ExpiresAt:  time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC),
	}
	if got.EventID != want.EventID || got.Kind != want.Kind || got.Identifier != want.Identifier ||
		got.Code != want.Code || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("input = %+v, want %+v", got, want)
	}
	if fuc.cids[0] != "corr-1" {
		t.Fatalf("correlation id = %q, want corr-1", fuc.cids[0])
	}
	if fuc.traceIDs[0] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("trace id = %q, want the publisher's trace", fuc.traceIDs[0])
	}
}

func TestMQHandler_GeneratesCorrelationID(t *testing.T) {
	fuc := &fakeUsecase{}
	h := newHandler(fuc)

	msg := &messaging.Message{Body: []byte(`{"event_id":"evt-1"}`)}
	if err := h.OTPIssuedNotification(context.Background(), msg); err != nil {
		t.Fatalf("OTPIssuedNotification() error = %v", err)
	}
	if fuc.cids[0] != "generated-cid" {
		t.Fatalf("correlation id = %q", fuc.cids[0])
	}
}

func TestMQHandler_BadBodyIsAcked(t *testing.T) {
	fuc := &fakeUsecase{}
	h := newHandler(fuc)

	if err := h.OTPIssuedNotification(context.Background(), &messaging.Message{Body: []byte("{not json")}); err != nil {
		t.Fatalf("OTPIssuedNotification() error = %v, want nil", err)
	}
	if fuc.calls() != 0 {
		t.Fatal("usecase must not be called for a bad body")
	}
}

func TestMQHandler_UsecaseErrorPropagates(t *testing.T) {
	fuc := &fakeUsecase{err: errors.New("retry me")}
	h := newHandler(fuc)

	err := h.OTPIssuedNotification(context.Background(), &messaging.Message{Body: []byte(`{"event_id":"evt-1"}`)})
	if !errors.Is(err, fuc.err) {
		t.Fatalf("OTPIssuedNotification() error = %v, want retry me", err)
	}
}

func TestRegisterMQConsumer(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		enabled bool
	}{
		{
			name:    "enabled",
			yaml:    "modules:\n  notification:\n    consumer_names:\n      - otp.issued.notification\n",
			enabled: true,
		},
		{
			name:    "disabled",
			yaml:    "modules:\n  notification:\n    consumer_names: []\n",
			enabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.NewViperFromBytes("yaml", []byte(tt.yaml))
			if err != nil {
				t.Fatalf("config: %v", err)
			}

			bus := messaging.NewMemory()
			gm := goroutine.NewManager(4)
			fuc := &fakeUsecase{}

			ctx, cancel := context.WithCancel(context.Background())
			RegisterMQConsumer(ctx, cfg, gm, bus, fakeUUID{}, fuc, instrument.NewNoop())

			if !tt.enabled {
				time.Sleep(20 * time.Millisecond)
				if n := bus.Subscribers(event.OTPIssuedDestination); n != 0 {
					t.Fatalf("subscribers = %d, want 0", n)
				}
				cancel()
				_ = gm.Wait()
				return
			}

			waitFor(t, func() bool { return bus.Subscribers(event.OTPIssuedDestination) == 1 })

			_, err = bus.Publish(ctx, event.OTPIssuedDestination, messaging.OutgoingMessage{
				Body: []byte(`{"event_id":"evt-9","kind":"user","identifier":"9876543210","code":"111111"}`),
			})
			if err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			waitFor(t, func() bool { return fuc.calls() == 1 })

			cancel()
			_ = gm.Wait()
		})
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
