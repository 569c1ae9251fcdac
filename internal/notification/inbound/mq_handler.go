package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/watercan/internal/notification/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/messaging"
	"github.com/shandysiswandi/watercan/internal/pkg/uid"
	"github.com/shandysiswandi/watercan/internal/shared/event"
	"go.opentelemetry.io/otel/trace"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg *messaging.Message) context.Context {
	if cID, ok := msg.Header(event.HeaderCorrelationID); ok && cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// OTPIssuedNotification never logs the body since it carries the plaintext code.
func (h *MQHandler) OTPIssuedNotification(ctx context.Context, msg *messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)
	ctx = instrument.WithRemoteTrace(ctx, msg.HeaderMap())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPIssuedNotification", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	slog.InfoContext(ctx, "consume: otp issued notification", "msg_id", msg.ID, "topic", msg.Topic)

	var payload event.OTPIssuedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued notification", "msg_id", msg.ID, "error", err)
		return nil
	}

	if err := h.uc.OTPDeliver(ctx, usecase.OTPDeliverInput{
		EventID:    payload.EventID,
		Kind:       payload.Kind,
		Identifier: payload.Identifier,
		Code:       payload.Code,
		ExpiresAt:  payload.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp issued", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
