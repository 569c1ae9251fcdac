package identity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/watercan/internal/identity/inbound"
	"github.com/shandysiswandi/watercan/internal/identity/outbound/challenge"
	"github.com/shandysiswandi/watercan/internal/identity/outbound/db"
	"github.com/shandysiswandi/watercan/internal/identity/outbound/mq"
	"github.com/shandysiswandi/watercan/internal/identity/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goroutine"
	"github.com/shandysiswandi/watercan/internal/pkg/hash"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/jwt"
	"github.com/shandysiswandi/watercan/internal/pkg/messaging"
	"github.com/shandysiswandi/watercan/internal/pkg/otp"
	"github.com/shandysiswandi/watercan/internal/pkg/ratelimit"
	"github.com/shandysiswandi/watercan/internal/pkg/router"
	"github.com/shandysiswandi/watercan/internal/pkg/storage"
	"github.com/shandysiswandi/watercan/internal/pkg/uid"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
)

const (
	defaultSweepInterval = 5 * time.Minute
	defaultLimitWindow   = 15 * time.Minute
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Limiters   ratelimit.Factory
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

// New wires the identity module. The returned closer releases the challenge
// store and is never nil.
func New(dep Dependency) (func() error, error) {
	noop := func() error { return nil }
	if err := dep.Validator.Validate(dep); err != nil {
		return noop, err
	}

	sweepInterval := dep.Config.GetSecond("modules.identity.otp.sweep_interval_seconds")
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	store, closeStore, err := challenge.New(dep.Config.GetString("modules.identity.otp.store"), challenge.Options{
		Redis:     dep.CacheConn,
		Grace:     sweepInterval,
		BboltPath: dep.Config.GetString("modules.identity.otp.bbolt_path"),
	})
	if err != nil {
		return noop, err
	}

	identifierLimit, err := newLimiter(dep, "otp_identifier", "modules.identity.otp.identifier_limit", 5)
	if err != nil {
		return closeStore, err
	}
	sendLimit, err := newLimiter(dep, "otp_send", "modules.identity.otp.send_limit", 5)
	if err != nil {
		return closeStore, err
	}
	verifyLimit, err := newLimiter(dep, "otp_verify", "modules.identity.otp.verify_limit", 10)
	if err != nil {
		return closeStore, err
	}

	code, err := otp.NewNumeric(6)
	if err != nil {
		return closeStore, err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:            db.NewDB(dep.DBConn, dep.Instrument),
		RepoChallenge:     store,
		RepoMessaging:     mq.NewMessaging(dep.Messaging, dep.Instrument),
		IdentifierLimiter: identifierLimit,
		Validator:         dep.Validator,
		Config:            dep.Config,
		Storage:           dep.Storage,
		HMAC:              dep.HMAC,
		Code:              code,
		UID:               dep.UID,
		UUID:              dep.UUID,
		Clock:             dep.Clock,
		JWT:               dep.JWT,
		Instrument:        dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.Limits{
		Send:   router.RateLimit(sendLimit, "otp_send"),
		Verify: router.RateLimit(verifyLimit, "otp_verify"),
	})
	inbound.RegisterSweepJob(dep.Ctx, dep.Goroutine, sweepInterval, uc)

	return closeStore, nil
}

// newLimiter reads <prefix>.max_attempts and <prefix>.window_seconds.
func newLimiter(dep Dependency, name, prefix string, defaultMax int) (ratelimit.Limiter, error) {
	maxAttempts := dep.Config.GetInt(prefix + ".max_attempts")
	if maxAttempts <= 0 {
		maxAttempts = defaultMax
	}
	window := dep.Config.GetSecond(prefix + ".window_seconds")
	if window <= 0 {
		window = defaultLimitWindow
	}

	return dep.Limiters.New(name, ratelimit.Config{WindowSize: window, MaxAttempts: maxAttempts})
}
