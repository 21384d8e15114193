package messaging

import (
	"context"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/events"
)

// EventCounter receives the outcome of publish calls
type EventCounter interface {
	EventPublished(eventType string)
	EventFailed()
}

// InstrumentedPublisher counts events flowing through another publisher
type InstrumentedPublisher struct {
	inner   ports.EventPublisher
	counter EventCounter
}

// NewInstrumentedPublisher wraps a publisher with counters
func NewInstrumentedPublisher(inner ports.EventPublisher, counter EventCounter) *InstrumentedPublisher {
	return &InstrumentedPublisher{inner: inner, counter: counter}
}

func (p *InstrumentedPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

func (p *InstrumentedPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if err := p.inner.PublishBatch(ctx, domainEvents); err != nil {
		p.counter.EventFailed()
		return err
	}
	for _, event := range domainEvents {
		p.counter.EventPublished(event.GetEventType())
	}
	return nil
}
