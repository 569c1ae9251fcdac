package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

type ProfileInput struct {
	Kind entity.Kind
}

func (s *Usecase) Profile(ctx context.Context, in ProfileInput) (*entity.Principal, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm, err := s.authenticated(ctx, in.Kind)
	if err != nil {
		return nil, err
	}

	p, err := s.repoDB.GetPrincipalByID(ctx, in.Kind, clm.PrincipalID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "principal in session not found", "kind", in.Kind, "principal_id", clm.PrincipalID)
		return nil, errPrincipalNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get principal by id", "kind", in.Kind, "principal_id", clm.PrincipalID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return p, nil
}
