package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type OTPSendInput struct {
	Kind       entity.Kind `validate:"required,oneof=user distributor"`
	Identifier string      `validate:"required,phone"`
}

type OTPSendOutput struct {
	ChallengeID string
	ExpiresIn   time.Duration
	// Code is only set when echoing is enabled for development.
	Code string
}

func (s *Usecase) OTPSend(ctx context.Context, in OTPSendInput) (*OTPSendOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPSend")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key := entity.ChallengeKey(in.Kind, in.Identifier)

	limit, err := s.identifierLimiter.Allow(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check identifier rate limit", "kind", in.Kind, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !limit.Allowed {
		slog.WarnContext(ctx, "otp send rate limited for identifier", "kind", in.Kind, "retry_after", limit.RetryAfter)
		return nil, goerror.NewRateLimited(map[string]any{
			"retry_after_seconds": int64(math.Ceil(limit.RetryAfter.Seconds())),
		})
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	secret, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	window := s.otpWindow()
	now := s.clock.Now()
	chal := entity.Challenge{
		ID:         s.uuid.Generate(),
		Identifier: in.Identifier,
		Kind:       in.Kind,
		Secret:     string(secret),
		IssuedAt:   now,
		ExpiresAt:  now.Add(window),
	}

	if err := s.repoChallenge.Put(ctx, key, chal); err != nil {
		slog.ErrorContext(ctx, "failed to repo put challenge", "kind", in.Kind, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		EventID:    s.uuid.Generate(),
		Kind:       in.Kind,
		Identifier: in.Identifier,
		Code:       code,
		ExpiresAt:  chal.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "kind", in.Kind, "error", err)
		if _, delErr := s.repoChallenge.Delete(context.WithoutCancel(ctx), key, chal.ID); delErr != nil {
			slog.ErrorContext(ctx, "failed to repo delete undelivered challenge", "kind", in.Kind, "error", delErr)
		}
		return nil, goerror.NewServer(err)
	}

	s.otpIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", in.Kind.String())))

	out := &OTPSendOutput{ChallengeID: chal.ID, ExpiresIn: window}
	if s.cfg.GetBool("modules.identity.otp.echo_code") {
		out.Code = code
	}

	return out, nil
}
