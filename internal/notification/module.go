package notification

import (
	"context"

	"github.com/shandysiswandi/watercan/internal/notification/inbound"
	"github.com/shandysiswandi/watercan/internal/notification/outbound/sms"
	"github.com/shandysiswandi/watercan/internal/notification/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goroutine"
	"github.com/shandysiswandi/watercan/internal/pkg/idempotency"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/messaging"
	pkgsms "github.com/shandysiswandi/watercan/internal/pkg/sms"
	"github.com/shandysiswandi/watercan/internal/pkg/uid"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context
	Messaging   messaging.Messaging
	Config      config.Config
	Instrument  instrument.Instrumentation
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Idempotency idempotency.Idempotency
	SMS         pkgsms.Sender
}

func New(dep Dependency) error {
	repoSMS := sms.New(dep.SMS, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoSMS:     repoSMS,
		Idempotency: dep.Idempotency,
		Config:      dep.Config,
		Clock:       dep.Clock,
		Validator:   dep.Validator,
		Instrument:  dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
