package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

type ProfileUpdateInput struct {
	Kind         entity.Kind
	DisplayName  *string
	PayoutHandle *string
	IsActive     *bool
}

type profileUpdateRules struct {
	DisplayName  string `validate:"omitempty,max=255"`
	PayoutHandle string `validate:"omitempty,payouthandle"`
}

func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) (*entity.Principal, error) {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	clm, err := s.authenticated(ctx, in.Kind)
	if err != nil {
		return nil, err
	}

	patch := entity.PrincipalPatch{DisplayName: in.DisplayName}
	if in.Kind == entity.KindDistributor {
		patch.PayoutHandle = in.PayoutHandle
		patch.IsActive = in.IsActive
	}
	if patch.IsEmpty() {
		return nil, goerror.NewInvalidInput(nil, "body", "at least one field must be provided")
	}

	var rules profileUpdateRules
	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if name == "" {
			return nil, goerror.NewInvalidInput(nil, "display_name", "display_name cannot be empty")
		}
		patch.DisplayName = &name
		rules.DisplayName = name
	}
	if patch.PayoutHandle != nil {
		handle := strings.TrimSpace(*patch.PayoutHandle)
		patch.PayoutHandle = &handle
		rules.PayoutHandle = handle
	}

	if err := s.validator.Validate(rules); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	p, err := s.repoDB.UpdatePrincipal(ctx, in.Kind, clm.PrincipalID, patch)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "principal in session not found", "kind", in.Kind, "principal_id", clm.PrincipalID)
		return nil, errPrincipalNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update principal", "kind", in.Kind, "principal_id", clm.PrincipalID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return p, nil
}
