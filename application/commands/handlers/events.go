package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/events"
)

type eventSource interface {
	GetUncommittedEvents() []events.DomainEvent
	MarkEventsAsCommitted()
}

// publishEvents sends the aggregate's pending events. The write has already
// succeeded, so a publish failure is logged and not returned.
func publishEvents(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, src eventSource) {
	pending := src.GetUncommittedEvents()
	if len(pending) == 0 || publisher == nil {
		src.MarkEventsAsCommitted()
		return
	}

	if err := publisher.PublishBatch(ctx, pending); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.String("aggregateID", pending[0].GetAggregateID()),
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}
	src.MarkEventsAsCommitted()
}
