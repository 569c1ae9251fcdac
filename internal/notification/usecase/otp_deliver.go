package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shandysiswandi/watercan/internal/pkg/idempotency"
	"github.com/shandysiswandi/watercan/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type OTPDeliverInput struct {
	EventID    string `validate:"required"`
	Kind       string `validate:"required,oneof=user distributor"`
	Identifier string `validate:"required,phone"`
	Code       string `validate:"required,otpcode"`
	ExpiresAt  time.Time
}

// OTPDeliver texts the code to the identifier at most once per event.
// Malformed and already expired events are dropped; a returned error asks
// the broker to redeliver.
func (s *Usecase) OTPDeliver(ctx context.Context, in OTPDeliverInput) error {
	ctx, span := s.startSpan(ctx, "OTPDeliver")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "dropping invalid otp issued event", "event_id", in.EventID, "error", err)
		s.record(ctx, "invalid")
		return nil
	}

	remaining := in.ExpiresAt.Sub(s.clock.Now())
	if remaining <= 0 {
		slog.WarnContext(ctx, "dropping expired otp issued event", "event_id", in.EventID, "to", sms.MaskPhone(in.Identifier))
		s.record(ctx, "expired")
		return nil
	}

	tpl := strings.TrimSpace(s.cfg.GetString("modules.notification.otp_sms_template"))
	if tpl == "" {
		tpl = defaultOTPTemplate
	}

	text, err := s.renderTemplate("otp_sms", tpl, map[string]any{
		"Code":    in.Code,
		"Kind":    in.Kind,
		"Minutes": int64(math.Ceil(remaining.Minutes())),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render otp sms template", "error", err)
		s.record(ctx, "invalid")
		return nil
	}

	err = s.idempotency.Exec(ctx, "notification:otp_issued:"+in.EventID, func(ctx context.Context) error {
		return s.repoSMS.Send(ctx, in.Identifier, text)
	}, idempotency.WithLockDuration(time.Minute), idempotency.WithStateTTL(24*time.Hour))

	switch {
	case err == nil:
		slog.InfoContext(ctx, "otp sms delivered", "event_id", in.EventID, "to", sms.MaskPhone(in.Identifier))
		s.record(ctx, "sent")
		return nil

	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "otp sms already delivered", "event_id", in.EventID)
		s.record(ctx, "duplicate")
		return nil

	default:
		slog.ErrorContext(ctx, "failed to deliver otp sms", "event_id", in.EventID, "to", sms.MaskPhone(in.Identifier), "error", err)
		s.record(ctx, "failed")
		return err
	}
}

func (s *Usecase) record(ctx context.Context, result string) {
	if s.delivered != nil {
		s.delivered.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}
