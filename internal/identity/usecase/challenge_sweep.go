package usecase

import (
	"context"
	"log/slog"
)

// ChallengeSweep removes challenges whose window has passed. It runs from a
// background job, not from requests.
func (s *Usecase) ChallengeSweep(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "ChallengeSweep")
	defer span.End()

	removed, err := s.repoChallenge.Sweep(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo sweep challenges", "error", err)
		return err
	}

	if removed > 0 {
		slog.InfoContext(ctx, "expired challenges swept", "removed", removed)
	}
	return nil
}
