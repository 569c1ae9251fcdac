package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type OTPVerifyInput struct {
	Kind        entity.Kind `validate:"required,oneof=user distributor"`
	Identifier  string      `validate:"required,phone"`
	Code        string      `validate:"required,otpcode"`
	DisplayName string
}

type OTPVerifyOutput struct {
	Token     string
	Principal *entity.Principal
	IsNew     bool
}

func (s *Usecase) OTPVerify(ctx context.Context, in OTPVerifyInput) (*OTPVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	out, result, err := s.verify(ctx, in)
	s.otpVerify.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", in.Kind.String()),
		attribute.String("result", result),
	))

	return out, err
}

func (s *Usecase) verify(ctx context.Context, in OTPVerifyInput) (*OTPVerifyOutput, string, error) {
	key := entity.ChallengeKey(in.Kind, in.Identifier)
	maxAttempts := s.otpMaxAttempts()

	chal, err := s.repoChallenge.Get(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no pending challenge", "kind", in.Kind)
		return nil, "not_found", errChallengeNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get challenge", "kind", in.Kind, "error", err)
		return nil, "error", goerror.NewServer(err)
	}

	switch chal.State(s.clock.Now(), maxAttempts) {
	case entity.ChallengeExpired:
		s.discardChallenge(ctx, key, chal.ID)
		slog.WarnContext(ctx, "challenge expired", "kind", in.Kind, "challenge_id", chal.ID)
		return nil, "expired", errChallengeExpired()

	case entity.ChallengeLockedOut:
		s.discardChallenge(ctx, key, chal.ID)
		slog.WarnContext(ctx, "challenge locked out", "kind", in.Kind, "challenge_id", chal.ID)
		return nil, "locked_out", errTooManyAttempts()
	}

	if !s.hmac.Verify(chal.Secret, in.Code) {
		attempts, err := s.repoChallenge.IncrementAttempts(ctx, key, chal.ID)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "challenge consumed or replaced before attempt was counted", "kind", in.Kind, "challenge_id", chal.ID)
			return nil, "not_found", errChallengeNotFound()
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo increment attempts", "kind", in.Kind, "error", err)
			return nil, "error", goerror.NewServer(err)
		}

		if attempts >= maxAttempts {
			s.discardChallenge(ctx, key, chal.ID)
			slog.WarnContext(ctx, "challenge locked out after wrong code", "kind", in.Kind, "challenge_id", chal.ID)
			return nil, "locked_out", errTooManyAttempts()
		}

		return nil, "invalid", errInvalidChallenge(maxAttempts - attempts)
	}

	principal, isNew, err := s.resolvePrincipal(ctx, in.Kind, in.Identifier, in.DisplayName)
	if err != nil {
		if goerror.ReasonOf(err) == goerror.ReasonDisplayNameRequired {
			return nil, "display_name_required", err
		}
		return nil, "error", err
	}

	deleted, err := s.repoChallenge.Delete(ctx, key, chal.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete challenge", "kind", in.Kind, "error", err)
		return nil, "error", goerror.NewServer(err)
	}
	if !deleted {
		slog.WarnContext(ctx, "challenge consumed or replaced by a concurrent request", "kind", in.Kind, "challenge_id", chal.ID)
		return nil, "not_found", errChallengeNotFound()
	}

	token, err := s.issueSession(ctx, principal)
	if err != nil {
		return nil, "error", err
	}

	return &OTPVerifyOutput{Token: token, Principal: principal, IsNew: isNew}, "success", nil
}

// discardChallenge removes the challenge only while it is still the one the
// caller read, so a fresh resend survives.
func (s *Usecase) discardChallenge(ctx context.Context, key, id string) {
	if _, err := s.repoChallenge.Delete(ctx, key, id); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete challenge", "error", err)
	}
}
