package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/watercan/internal/household/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/jwt"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const kindUser = "user"

type repoDB interface {
	GetOrCreateCanStatus(ctx context.Context, userID int64) (*entity.CanStatus, error)
	UpsertCanStatus(ctx context.Context, in entity.CanStatus) (*entity.CanStatus, error)
}

type Usecase struct {
	repoDB    repoDB
	validator validator.Validator
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("household.usecase").Start(ctx, name)
}

func (s *Usecase) userID(ctx context.Context) (int64, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return 0, goerror.NewUnauthenticated()
	}
	if clm.Kind != kindUser {
		slog.WarnContext(ctx, "can status requested by non-user session", "kind", clm.Kind)
		return 0, goerror.NewForbidden()
	}
	return clm.PrincipalID, nil
}
