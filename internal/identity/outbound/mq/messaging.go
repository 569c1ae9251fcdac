package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shandysiswandi/watercan/internal/identity/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/messaging"
	"github.com/shandysiswandi/watercan/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Messaging publishes identity events to the broker.
type Messaging struct {
	client messaging.Messaging
	tracer trace.Tracer
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, tracer: ins.Tracer("identity.outbound.mq")}
}

// headers carries the correlation id and the W3C trace context so the
// consumer continues the same trace.
func headers(ctx context.Context) []messaging.Header {
	hs := []messaging.Header{{Key: event.HeaderCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))}}
	for k, v := range instrument.TraceHeaders(ctx) {
		hs = append(hs, messaging.Header{Key: k, Value: []byte(v)})
	}
	return hs
}

// PublishOTPIssued is keyed by identifier so a partitioned broker keeps one
// phone's codes in order.
func (m *Messaging) PublishOTPIssued(ctx context.Context, msg usecase.OTPIssuedEvent) error {
	ctx, span := m.tracer.Start(ctx, "PublishOTPIssued",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination.name", event.OTPIssuedDestination),
			attribute.String("messaging.message.id", msg.EventID),
		),
	)
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	body, err := json.Marshal(event.OTPIssuedMessage{
		EventID:    msg.EventID,
		Kind:       msg.Kind.String(),
		Identifier: msg.Identifier,
		Code:       msg.Code,
		ExpiresAt:  msg.ExpiresAt,
	})
	if err != nil {
		return fail(fmt.Errorf("encode %s: %w", event.OTPIssuedDestination, err))
	}

	if _, err := m.client.Publish(ctx, event.OTPIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.Identifier),
		Headers: headers(ctx),
	}); err != nil {
		return fail(fmt.Errorf("publish %s: %w", event.OTPIssuedDestination, err))
	}

	return nil
}
