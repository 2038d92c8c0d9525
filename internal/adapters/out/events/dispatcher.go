// Package events delivers the domain events collected by aggregates once the unit of
// work that saved them has committed.
package events

import (
	"context"
	"log/slog"

	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/ports"
)

// Source is an aggregate that records domain events.
type Source interface {
	DomainEvents() []order.DomainEvent
	ClearDomainEvents()
}

// Dispatcher publishes the events of committed aggregates. Publishing failures are logged
// and never reported to the caller: the state change is already durable.
type Dispatcher struct {
	publisher ports.EventPublisher
	logger    *slog.Logger
}

func NewDispatcher(publisher ports.EventPublisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		logger:    logger.With("component", "events"),
	}
}

// Dispatch publishes and clears the events of every source, in order.
func (d *Dispatcher) Dispatch(ctx context.Context, sources []Source) {
	for _, src := range sources {
		pending := src.DomainEvents()
		src.ClearDomainEvents()
		if d == nil {
			continue
		}
		for _, e := range pending {
			if err := d.publisher.Publish(ctx, e.Topic(), e); err != nil {
				d.logger.ErrorContext(ctx, "failed to publish domain event",
					"topic", e.Topic(),
					"error", err,
				)
			}
		}
	}
}

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) LogPublisher {
	return LogPublisher{logger: logger}
}

func (p LogPublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.logger.InfoContext(ctx, "domain event", "topic", topic, "payload", payload)
	return nil
}
