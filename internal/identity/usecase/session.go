package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

func (s *Usecase) issueSession(ctx context.Context, p *entity.Principal) (string, error) {
	token, err := s.jwt.Generate(p.ID, p.Phone, p.Kind.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "kind", p.Kind, "principal_id", p.ID, "error", err)
		return "", goerror.NewServer(err)
	}
	return token, nil
}
