package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/metrics"
	"github.com/lumenworks/vision-cms-backend/pkg/storage/gcs"
)

type remoteDeleter interface {
	Delete(ctx context.Context, objectKey string) error
}

type pendingCleaner interface {
	Clear(ctx context.Context, objectKeys []string) error
}

type processResult struct {
	ack  bool
	nack bool
}

// Consumer watches the cleanup subscription and retries remote deletes the
// API gave up on. Malformed events are acked and dropped; transient delete
// failures are nacked for redelivery.
type Consumer struct {
	deleter      remoteDeleter
	pending      pendingCleaner
	subscription *pubsub.Subscriber
	metrics      *metrics.IngestMetrics
	logg         *logger.Logger
}

// NewConsumer wires the cleanup worker's consumer.
func NewConsumer(deleter remoteDeleter, pending pendingCleaner, subscription *pubsub.Subscriber, m *metrics.IngestMetrics, logg *logger.Logger) (*Consumer, error) {
	if deleter == nil {
		return nil, errors.New("remote deleter is required")
	}
	if pending == nil {
		return nil, errors.New("pending store is required")
	}
	if subscription == nil {
		return nil, errors.New("cleanup subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		deleter:      deleter,
		pending:      pending,
		subscription: subscription,
		metrics:      m,
		logg:         logg,
	}, nil
}

// Run processes cleanup events until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.handle(ctx, msg.Data, msg.Attributes)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) handle(ctx context.Context, data []byte, attrs map[string]string) processResult {
	if attrs[EventTypeAttribute] != EventCleanupRequested {
		c.logg.Info(ctx, "skipping non-cleanup event")
		return processResult{ack: true}
	}

	var event OrphanEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.logg.Error(ctx, "failed to unmarshal cleanup event", err)
		return processResult{ack: true}
	}
	if event.ObjectKey == "" {
		c.logg.Error(ctx, "cleanup event missing object key", fmt.Errorf("empty object_key"))
		return processResult{ack: true}
	}

	ctx = c.logg.WithFields(ctx, map[string]any{
		"entity":     event.Entity,
		"object_key": event.ObjectKey,
	})

	err := c.deleter.Delete(ctx, event.ObjectKey)
	switch {
	case err == nil:
		c.observe("ok")
	case errors.Is(err, gcs.ErrObjectNotFound):
		// Someone else already removed it; that is a success for us.
		c.observe("missing")
	default:
		c.observe("failed")
		c.logg.Error(ctx, "retrying remote delete later", err)
		return processResult{nack: true}
	}

	if err := c.pending.Clear(ctx, []string{event.ObjectKey}); err != nil {
		// The object is gone; a stale pending row only costs the cron
		// job a no-op delete.
		c.logg.Warn(ctx, fmt.Sprintf("clearing pending row failed: %v", err))
	}

	c.logg.Info(ctx, "processed cleanup event")
	return processResult{ack: true}
}

func (c *Consumer) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.IncRemoteDelete(outcome)
	}
}
