package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/watercan/internal/household"
	"github.com/shandysiswandi/watercan/internal/identity"
	"github.com/shandysiswandi/watercan/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.identity.enabled") {
		closeStore, err := identity.New(identity.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Limiters:   a.limiters,
			Messaging:  a.messaging,
			Storage:    a.storage,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			HMAC:       a.hmac,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		})
		if err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}

		a.addCloser("ChallengeStore", func(context.Context) error { return closeStore() })
	}

	if a.config.GetBool("modules.household.enabled") {
		if err := household.New(household.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Instrument: a.ins,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module household", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Idempotency: a.idemp,
			SMS:         a.sms,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}

	a.ready.Store(true)
}
