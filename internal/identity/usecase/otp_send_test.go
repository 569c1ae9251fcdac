package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

func TestOTPSend(t *testing.T) {
	t.Run("invalid input", func(t *testing.T) {
		d := newTestUsecase(t, false)

		tests := []OTPSendInput{
			{Kind: entity.KindUser, Identifier: "12345"},
			{Kind: "admin", Identifier: "9876543210"},
			{Kind: entity.KindUser, Identifier: "98765abcde"},
		}
		for _, in := range tests {
			_, err := d.uc.OTPSend(context.Background(), in)
			assertStatus(t, err, http.StatusBadRequest)
		}

		if len(d.limiter.keys) != 0 {
			t.Fatalf("limiter consulted for invalid input: %v", d.limiter.keys)
		}
	})

	t.Run("stores hashed code and publishes plaintext", func(t *testing.T) {
		d := newTestUsecase(t, false)

		out, err := d.uc.OTPSend(context.Background(), OTPSendInput{Kind: entity.KindUser, Identifier: "9876543210"})
		if err != nil {
			t.Fatalf("OTPSend() error = %v", err)
		}
		if out.ExpiresIn != 5*time.Minute {
			t.Fatalf("ExpiresIn = %v, want 5m", out.ExpiresIn)
		}
		if out.Code != "" {
			t.Fatalf("Code echoed while disabled: %q", out.Code)
		}

		chal, ok := d.store.get("user:9876543210")
		if !ok {
			t.Fatal("challenge not stored")
		}
		if chal.Secret == "042917" || !d.hmac.Verify(chal.Secret, "042917") {
			t.Fatalf("stored secret %q is not the hashed code", chal.Secret)
		}
		if chal.ID != out.ChallengeID || chal.Attempts != 0 {
			t.Fatalf("challenge = %+v, want id %q with zero attempts", chal, out.ChallengeID)
		}
		if !chal.ExpiresAt.Equal(testNow.Add(5 * time.Minute)) {
			t.Fatalf("ExpiresAt = %v", chal.ExpiresAt)
		}

		ev := d.mq.last()
		if ev.Code != "042917" || ev.Identifier != "9876543210" || ev.Kind != entity.KindUser {
			t.Fatalf("published event = %+v", ev)
		}
		if ev.EventID == "" || ev.EventID == chal.ID {
			t.Fatalf("event id %q must be unique per send", ev.EventID)
		}
	})

	t.Run("echo code when enabled", func(t *testing.T) {
		d := newTestUsecase(t, true)

		out, err := d.uc.OTPSend(context.Background(), OTPSendInput{Kind: entity.KindDistributor, Identifier: "9876543210"})
		if err != nil {
			t.Fatalf("OTPSend() error = %v", err)
		}
		if out.Code != "042917" {
			t.Fatalf("Code = %q, want echoed code", out.Code)
		}
	})

	t.Run("overwrite resets attempts", func(t *testing.T) {
		d := newTestUsecase(t, false)
		ctx := context.Background()
		in := OTPSendInput{Kind: entity.KindUser, Identifier: "9876543210"}

		if _, err := d.uc.OTPSend(ctx, in); err != nil {
			t.Fatalf("first OTPSend() error = %v", err)
		}
		first, _ := d.store.get("user:9876543210")
		if _, err := d.store.IncrementAttempts(ctx, "user:9876543210", first.ID); err != nil {
			t.Fatalf("IncrementAttempts() error = %v", err)
		}

		d.code.code = "111111"
		d.clock.Advance(time.Minute)
		if _, err := d.uc.OTPSend(ctx, in); err != nil {
			t.Fatalf("second OTPSend() error = %v", err)
		}

		chal, _ := d.store.get("user:9876543210")
		if chal.Attempts != 0 {
			t.Fatalf("Attempts = %d, want 0", chal.Attempts)
		}
		if d.hmac.Verify(chal.Secret, "042917") || !d.hmac.Verify(chal.Secret, "111111") {
			t.Fatal("previous code still valid after resend")
		}
	})

	t.Run("kinds are isolated", func(t *testing.T) {
		d := newTestUsecase(t, false)
		ctx := context.Background()

		if _, err := d.uc.OTPSend(ctx, OTPSendInput{Kind: entity.KindUser, Identifier: "9876543210"}); err != nil {
			t.Fatalf("OTPSend() error = %v", err)
		}
		if _, ok := d.store.get("distributor:9876543210"); ok {
			t.Fatal("user send created a distributor challenge")
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		d := newTestUsecase(t, false)
		d.limiter.deny = true
		d.limiter.retryIn = 1500 * time.Millisecond

		_, err := d.uc.OTPSend(context.Background(), OTPSendInput{Kind: entity.KindUser, Identifier: "9876543210"})

		assertStatus(t, err, http.StatusTooManyRequests)
		assertReason(t, err, goerror.ReasonRateLimitExceeded)

		var gerr *goerror.Error
		errors.As(err, &gerr)
		if got := gerr.Meta()["retry_after_seconds"]; got != int64(2) {
			t.Fatalf("retry_after_seconds = %v, want 2", got)
		}
		if _, ok := d.store.get("user:9876543210"); ok {
			t.Fatal("challenge stored despite rate limit")
		}
		if len(d.mq.events) != 0 {
			t.Fatal("event published despite rate limit")
		}
	})

	t.Run("limiter failure is a server error", func(t *testing.T) {
		d := newTestUsecase(t, false)
		d.limiter.err = errors.New("redis down")

		_, err := d.uc.OTPSend(context.Background(), OTPSendInput{Kind: entity.KindUser, Identifier: "9876543210"})

		assertStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("publish failure removes challenge", func(t *testing.T) {
		d := newTestUsecase(t, false)
		d.mq.err = errors.New("broker down")

		_, err := d.uc.OTPSend(context.Background(), OTPSendInput{Kind: entity.KindUser, Identifier: "9876543210"})

		assertStatus(t, err, http.StatusInternalServerError)
		if _, ok := d.store.get("user:9876543210"); ok {
			t.Fatal("undeliverable challenge left in store")
		}
	})

	t.Run("store failure", func(t *testing.T) {
		d := newTestUsecase(t, false)
		d.store.putErr = errors.New("store down")

		_, err := d.uc.OTPSend(context.Background(), OTPSendInput{Kind: entity.KindUser, Identifier: "9876543210"})

		assertStatus(t, err, http.StatusInternalServerError)
		if len(d.mq.events) != 0 {
			t.Fatal("event published for unsaved challenge")
		}
	})

	t.Run("generator failure", func(t *testing.T) {
		d := newTestUsecase(t, false)
		d.code.err = errors.New("entropy")

		_, err := d.uc.OTPSend(context.Background(), OTPSendInput{Kind: entity.KindUser, Identifier: "9876543210"})

		assertStatus(t, err, http.StatusInternalServerError)
	})
}
