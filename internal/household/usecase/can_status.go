package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/watercan/internal/household/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

// CanStatus returns the signed-in household's cans, creating the default row
// on first read.
func (s *Usecase) CanStatus(ctx context.Context) (*entity.CanStatus, error) {
	ctx, span := s.startSpan(ctx, "CanStatus")
	defer span.End()

	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.repoDB.GetOrCreateCanStatus(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user in session not found", "user_id", userID)
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get can status", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

type CanStatusUpdateInput struct {
	Can1Full *bool `validate:"required"`
	Can2Full *bool `validate:"required"`
	Can3Full *bool `validate:"required"`
}

func (s *Usecase) CanStatusUpdate(ctx context.Context, in CanStatusUpdateInput) (*entity.CanStatus, error) {
	ctx, span := s.startSpan(ctx, "CanStatusUpdate")
	defer span.End()

	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	out, err := s.repoDB.UpsertCanStatus(ctx, entity.CanStatus{
		UserID:   userID,
		Can1Full: *in.Can1Full,
		Can2Full: *in.Can2Full,
		Can3Full: *in.Can3Full,
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user in session not found", "user_id", userID)
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert can status", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "can status updated", "user_id", userID, "full", out.FullCount())
	return out, nil
}
