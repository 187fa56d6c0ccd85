package services

import (
	"context"

	"github.com/sahilchouksey/taskboard-api/utils/metrics"
	"github.com/sahilchouksey/taskboard-api/utils/mq"
	"go.uber.org/zap"
)

// eventEmitter publishes committed changes. Failures are logged and counted
// but never returned: the write has already happened.
type eventEmitter struct {
	publisher mq.Publisher
	log       *zap.Logger
}

func newEventEmitter(publisher mq.Publisher, log *zap.Logger) eventEmitter {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return eventEmitter{publisher: publisher, log: log}
}

func (e eventEmitter) emit(ctx context.Context, routingKey string, payload any) {
	if err := e.publisher.Publish(ctx, routingKey, payload); err != nil {
		metrics.IncrementEventPublishFailure(routingKey)
		e.log.Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
