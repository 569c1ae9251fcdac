package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/hash"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/jwt"
	"github.com/shandysiswandi/watercan/internal/pkg/otp"
	"github.com/shandysiswandi/watercan/internal/pkg/ratelimit"
	"github.com/shandysiswandi/watercan/internal/pkg/storage"
	"github.com/shandysiswandi/watercan/internal/pkg/uid"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPWindow      = 5 * time.Minute
	defaultOTPMaxAttempts = 5
	maxDisplayNameRunes   = 255
)

type OTPIssuedEvent struct {
	EventID    string
	Kind       entity.Kind
	Identifier string
	Code       string
	ExpiresAt  time.Time
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
}

type repoChallenge interface {
	Put(ctx context.Context, key string, c entity.Challenge) error
	Get(ctx context.Context, key string) (*entity.Challenge, error)
	IncrementAttempts(ctx context.Context, key, id string) (int, error)
	Delete(ctx context.Context, key, id string) (bool, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type repoDB interface {
	GetPrincipalByPhone(ctx context.Context, kind entity.Kind, phone string) (*entity.Principal, error)
	GetPrincipalByID(ctx context.Context, kind entity.Kind, id int64) (*entity.Principal, error)
	CreatePrincipal(ctx context.Context, in entity.NewPrincipal) (*entity.Principal, error)
	UpdatePrincipal(ctx context.Context, kind entity.Kind, id int64, patch entity.PrincipalPatch) (*entity.Principal, error)
	UpdatePrincipalAvatar(ctx context.Context, kind entity.Kind, id int64, avatarURL string) (*entity.Principal, error)
	GetDistributorPayout(ctx context.Context, id int64) (*entity.DistributorPayout, error)
	ListActiveDistributors(ctx context.Context, f entity.DistributorListFilter) ([]entity.Principal, int64, error)
}

type Usecase struct {
	repoDB            repoDB
	repoChallenge     repoChallenge
	repoMessaging     repoMessaging
	identifierLimiter ratelimit.Limiter
	validator         validator.Validator
	cfg               config.Config
	storage           storage.Storage
	hmac              hash.Hash
	code              otp.Generator
	uid               uid.NumberID
	uuid              uid.StringID
	clock             clock.Clocker
	jwt               jwt.JWT
	ins               instrument.Instrumentation

	otpIssued metric.Int64Counter
	otpVerify metric.Int64Counter
}

type Dependency struct {
	RepoDB            repoDB
	RepoChallenge     repoChallenge
	RepoMessaging     repoMessaging
	IdentifierLimiter ratelimit.Limiter
	Validator         validator.Validator
	Config            config.Config
	Storage           storage.Storage
	HMAC              hash.Hash
	Code              otp.Generator
	UID               uid.NumberID
	UUID              uid.StringID
	Clock             clock.Clocker
	JWT               jwt.JWT
	Instrument        instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoDB:            dep.RepoDB,
		repoChallenge:     dep.RepoChallenge,
		repoMessaging:     dep.RepoMessaging,
		identifierLimiter: dep.IdentifierLimiter,
		validator:         dep.Validator,
		cfg:               dep.Config,
		storage:           dep.Storage,
		hmac:              dep.HMAC,
		code:              dep.Code,
		uid:               dep.UID,
		uuid:              dep.UUID,
		clock:             dep.Clock,
		jwt:               dep.JWT,
		ins:               dep.Instrument,
	}

	meter := dep.Instrument.Meter("identity.usecase")
	var err error
	if uc.otpIssued, err = meter.Int64Counter("identity.otp.issued", metric.WithDescription("OTP challenges issued")); err != nil {
		slog.Warn("failed to create counter identity.otp.issued", "error", err)
	}
	if uc.otpVerify, err = meter.Int64Counter("identity.otp.verify", metric.WithDescription("OTP verification outcomes")); err != nil {
		slog.Warn("failed to create counter identity.otp.verify", "error", err)
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) otpWindow() time.Duration {
	if w := s.cfg.GetSecond("modules.identity.otp.window_seconds"); w > 0 {
		return w
	}
	return defaultOTPWindow
}

func (s *Usecase) otpMaxAttempts() int {
	if n := s.cfg.GetInt("modules.identity.otp.max_attempts"); n > 0 {
		return n
	}
	return defaultOTPMaxAttempts
}

// authenticated returns the session claims for kind. The router has already
// verified the token and the kind policy, this guards direct calls.
func (s *Usecase) authenticated(ctx context.Context, kind entity.Kind) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewUnauthenticated()
	}

	if clm.Kind != kind.String() {
		slog.WarnContext(ctx, "session kind does not match route", "kind", clm.Kind, "want", kind)
		return nil, goerror.NewForbidden()
	}

	return clm, nil
}
