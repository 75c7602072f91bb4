package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
)

const (
	// EventTypeAttribute marks cleanup messages on the shared topic.
	EventTypeAttribute = "event_type"
	// EventCleanupRequested asks the worker to retry a remote object delete.
	EventCleanupRequested = "cleanup.requested"
)

// OrphanEvent describes a remote object whose synchronous delete failed and
// must be retried out-of-band.
type OrphanEvent struct {
	Entity      string    `json:"entity"`
	ObjectKey   string    `json:"object_key"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher emits cleanup events to the configured topic. It satisfies the
// ingestion pipeline's notifier surface.
type Publisher struct {
	topic *pubsub.Publisher
	now   func() time.Time
}

// NewPublisher wires a cleanup event publisher.
func NewPublisher(topic *pubsub.Publisher) (*Publisher, error) {
	if topic == nil {
		return nil, errors.New("cleanup topic publisher is required")
	}
	return &Publisher{topic: topic, now: time.Now}, nil
}

// NotifyOrphan publishes one cleanup.requested event and waits for the
// server's ack so the caller knows the orphan is on record.
func (p *Publisher) NotifyOrphan(ctx context.Context, entity, objectKey string) error {
	data, err := json.Marshal(OrphanEvent{
		Entity:      entity,
		ObjectKey:   objectKey,
		RequestedAt: p.now().UTC(),
	})
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{EventTypeAttribute: EventCleanupRequested},
	})
	_, err = result.Get(ctx)
	return err
}
