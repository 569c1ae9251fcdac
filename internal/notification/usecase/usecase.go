package usecase

import (
	"bytes"
	"context"
	"text/template"

	"github.com/shandysiswandi/watercan/internal/pkg/clock"
	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/idempotency"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const defaultOTPTemplate = "{{.Code}} is your Watercan login code. It expires in {{.Minutes}} minutes. Do not share it."

type repoSMS interface {
	Send(ctx context.Context, phone, text string) error
}

type Dependency struct {
	RepoSMS     repoSMS
	Idempotency idempotency.Idempotency
	Config      config.Config
	Clock       clock.Clocker
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
}

type Usecase struct {
	repoSMS     repoSMS
	idempotency idempotency.Idempotency
	cfg         config.Config
	clock       clock.Clocker
	validator   validator.Validator
	ins         instrument.Instrumentation

	delivered metric.Int64Counter
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoSMS:     dep.RepoSMS,
		idempotency: dep.Idempotency,
		cfg:         dep.Config,
		clock:       dep.Clock,
		validator:   dep.Validator,
		ins:         dep.Instrument,
	}

	uc.delivered, _ = dep.Instrument.Meter("notification.usecase").Int64Counter("notification.sms.delivered",
		metric.WithDescription("OTP SMS delivery outcomes by result"))

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) renderTemplate(name, tpl string, data any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
