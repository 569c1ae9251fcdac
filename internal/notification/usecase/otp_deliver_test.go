package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/idempotency"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type sentSMS struct {
	phone string
	text  string
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sentSMS
}

func (f *fakeSender) Send(_ context.Context, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{phone: phone, text: text})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type stuckIdempotency struct{}

func (stuckIdempotency) Exec(context.Context, string, func(context.Context) error, ...idempotency.Option) error {
	return idempotency.ErrAlreadyInProgress
}

func newTestUsecase(t *testing.T, yaml string, idem idempotency.Idempotency) (*Usecase, *fakeSender) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	clk := &fakeClock{now: testNow}
	if idem == nil {
		idem = idempotency.NewMemory(clk)
	}

	sender := &fakeSender{}
	uc := New(Dependency{
		RepoSMS:     sender,
		Idempotency: idem,
		Config:      cfg,
		Clock:       clk,
		Validator:   v,
		Instrument:  instrument.NewNoop(),
	})

	return uc, sender
}

func validInput() OTPDeliverInput {
	return OTPDeliverInput{
		EventID:    "evt-1",
		Kind:       "user",
		Identifier: "9876543210",
		Code:       "042917",
		ExpiresAt:  testNow.Add(5 * time.Minute),
	}
}

func TestOTPDeliver_SendsDefaultText(t *testing.T) {
	uc, sender := newTestUsecase(t, "app:\n  name: test\n", nil)

	if err := uc.OTPDeliver(context.Background(), validInput()); err != nil {
		t.Fatalf("OTPDeliver() error = %v", err)
	}

	if sender.count() != 1 {
		t.Fatalf("sent = %d, want 1", sender.count())
	}
	got := sender.sent[0]
	if got.phone != "9876543210" {
		t.Fatalf("phone = %q", got.phone)
	}
	want := "042917 is your Watercan login code. It expires in 5 minutes. Do not share it."
	if got.text != want {
		t.Fatalf("text = %q, want %q", got.text, want)
	}
}

func TestOTPDeliver_ConfiguredTemplate(t *testing.T) {
	yaml := "modules:\n  notification:\n    otp_sms_template: \"{{.Kind}} code {{.Code}} ({{.Minutes}}m)\"\n"
	uc, sender := newTestUsecase(t, yaml, nil)

	in := validInput()
	in.Kind = "distributor"
	in.ExpiresAt = testNow.Add(90 * time.Second)

	if err := uc.OTPDeliver(context.Background(), in); err != nil {
		t.Fatalf("OTPDeliver() error = %v", err)
	}
	if sender.sent[0].text != "distributor code 042917 (2m)" {
		t.Fatalf("text = %q", sender.sent[0].text)
	}
}

func TestOTPDeliver_BrokenTemplateDropped(t *testing.T) {
	yaml := "modules:\n  notification:\n    otp_sms_template: \"{{.Code\"\n"
	uc, sender := newTestUsecase(t, yaml, nil)

	if err := uc.OTPDeliver(context.Background(), validInput()); err != nil {
		t.Fatalf("OTPDeliver() error = %v, want nil", err)
	}
	if sender.count() != 0 {
		t.Fatal("broken template must not send")
	}
}

func TestOTPDeliver_DuplicateEventSentOnce(t *testing.T) {
	uc, sender := newTestUsecase(t, "", nil)

	for range 3 {
		if err := uc.OTPDeliver(context.Background(), validInput()); err != nil {
			t.Fatalf("OTPDeliver() error = %v", err)
		}
	}

	if sender.count() != 1 {
		t.Fatalf("sent = %d, want 1", sender.count())
	}

	in := validInput()
	in.EventID = "evt-2"
	if err := uc.OTPDeliver(context.Background(), in); err != nil {
		t.Fatalf("OTPDeliver() error = %v", err)
	}
	if sender.count() != 2 {
		t.Fatalf("sent = %d, want 2", sender.count())
	}
}

func TestOTPDeliver_Dropped(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *OTPDeliverInput)
	}{
		{name: "missing event id", mutate: func(in *OTPDeliverInput) { in.EventID = "" }},
		{name: "unknown kind", mutate: func(in *OTPDeliverInput) { in.Kind = "admin" }},
		{name: "bad phone", mutate: func(in *OTPDeliverInput) { in.Identifier = "12345" }},
		{name: "bad code", mutate: func(in *OTPDeliverInput) { in.Code = "12ab56" }},
		{name: "already expired", mutate: func(in *OTPDeliverInput) { in.ExpiresAt = testNow }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, sender := newTestUsecase(t, "", nil)

			in := validInput()
			tt.mutate(&in)

			if err := uc.OTPDeliver(context.Background(), in); err != nil {
				t.Fatalf("OTPDeliver() error = %v, want nil", err)
			}
			if sender.count() != 0 {
				t.Fatalf("sent = %d, want 0", sender.count())
			}
		})
	}
}

func TestOTPDeliver_SenderFailureAllowsRetry(t *testing.T) {
	uc, sender := newTestUsecase(t, "", nil)
	sender.err = errors.New("gateway down")

	err := uc.OTPDeliver(context.Background(), validInput())
	if err == nil || !strings.Contains(err.Error(), "gateway down") {
		t.Fatalf("OTPDeliver() error = %v, want gateway down", err)
	}

	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()

	if err := uc.OTPDeliver(context.Background(), validInput()); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if sender.count() != 1 {
		t.Fatalf("sent = %d, want 1", sender.count())
	}
}

func TestOTPDeliver_InProgressIsRetried(t *testing.T) {
	uc, sender := newTestUsecase(t, "", stuckIdempotency{})

	err := uc.OTPDeliver(context.Background(), validInput())
	if !errors.Is(err, idempotency.ErrAlreadyInProgress) {
		t.Fatalf("OTPDeliver() error = %v, want ErrAlreadyInProgress", err)
	}
	if sender.count() != 0 {
		t.Fatal("in progress event must not send")
	}
}
