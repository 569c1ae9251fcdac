package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

// resolvePrincipal finds the principal that owns identifier or creates it.
// A supplied name is ignored for existing principals.
func (s *Usecase) resolvePrincipal(ctx context.Context, kind entity.Kind, identifier, displayName string) (*entity.Principal, bool, error) {
	ctx, span := s.startSpan(ctx, "resolvePrincipal")
	defer span.End()

	p, err := s.repoDB.GetPrincipalByPhone(ctx, kind, identifier)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get principal by phone", "kind", kind, "error", err)
		return nil, false, goerror.NewServer(err)
	}

	name := normalizeDisplayName(displayName)
	if name == "" {
		slog.InfoContext(ctx, "new principal needs a display name", "kind", kind)
		return nil, false, errDisplayNameRequired()
	}

	p, err = s.repoDB.CreatePrincipal(ctx, entity.NewPrincipal{
		ID:          s.uid.Generate(),
		Kind:        kind,
		Phone:       identifier,
		DisplayName: name,
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.InfoContext(ctx, "principal created concurrently, reading it back", "kind", kind)

		p, err = s.repoDB.GetPrincipalByPhone(ctx, kind, identifier)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get principal after conflict", "kind", kind, "error", err)
			return nil, false, goerror.NewServer(err)
		}
		return p, false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create principal", "kind", kind, "error", err)
		return nil, false, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "principal created", "kind", kind, "principal_id", p.ID)
	return p, true, nil
}

// normalizeDisplayName trims and caps the name at maxDisplayNameRunes.
func normalizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= maxDisplayNameRunes {
		return name
	}
	return strings.TrimSpace(string([]rune(name)[:maxDisplayNameRunes]))
}
