package household

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/watercan/internal/household/inbound"
	"github.com/shandysiswandi/watercan/internal/household/outbound/db"
	"github.com/shandysiswandi/watercan/internal/household/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/router"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
