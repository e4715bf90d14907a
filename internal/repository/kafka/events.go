package kafka

import (
	"context"

	"github.com/NordCoder/Classbell/internal/domain/event"
)

const DefaultEventsTopic = "classbell.notification.events"

// EventsKafka is the work queue for domain events.
type EventsKafka struct {
	p *Producer
}

func NewEventsKafka(p *Producer) *EventsKafka { return &EventsKafka{p: p} }

var _ event.Queue = (*EventsKafka)(nil)

func (e *EventsKafka) PublishEvent(ctx context.Context, env event.Envelope) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(env.PartitionKey()), env)
}
