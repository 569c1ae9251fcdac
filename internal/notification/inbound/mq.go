package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goroutine"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/messaging"
	"github.com/shandysiswandi/watercan/internal/pkg/uid"
	"github.com/shandysiswandi/watercan/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")
	concurrency := cfg.GetInt("modules.notification.consumer_concurrency")
	if concurrency <= 0 {
		concurrency = 10
	}

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // nsq channel, nats queue group, kafka group, pubsub subscription
		handler messaging.Handler
	}{
		{
			name:    event.OTPIssuedDestinationConsumerNotification,
			topic:   event.OTPIssuedDestination,
			group:   event.OTPIssuedDestinationConsumerNotification,
			handler: mqHandler.OTPIssuedNotification,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		routine.Go(ctx, "consumer."+consumer.name, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "consumer started", "consumer", consumer.name, "topic", consumer.topic)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithConsumerName(consumer.group),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
		})
	}
}
