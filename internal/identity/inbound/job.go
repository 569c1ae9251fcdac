package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/watercan/internal/pkg/goroutine"
)

type sweeper interface {
	ChallengeSweep(ctx context.Context) error
}

// RegisterSweepJob removes expired challenges every interval until ctx ends.
func RegisterSweepJob(ctx context.Context, gm *goroutine.Manager, interval time.Duration, uc sweeper) {
	gm.Go(ctx, "identity.challenge_sweep", func(ctx context.Context) error {
		slog.InfoContext(ctx, "challenge sweep job started", "interval", interval)
		return goroutine.Every(ctx, interval, "identity.challenge_sweep", uc.ChallengeSweep)
	})
}
