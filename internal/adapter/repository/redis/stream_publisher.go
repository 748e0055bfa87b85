package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/infrastructure/metrics"
)

// StreamPublisher relays outbox events to a Redis stream with XADD.
type StreamPublisher struct {
	client  *redis.Client
	stream  string
	maxLen  int64
	metrics *metrics.Metrics
}

// NewStreamPublisher creates a publisher appending to stream. maxLen caps the
// stream approximately; zero leaves it unbounded.
func NewStreamPublisher(client *redis.Client, stream string, maxLen int64, m *metrics.Metrics) *StreamPublisher {
	return &StreamPublisher{
		client:  client,
		stream:  stream,
		maxLen:  maxLen,
		metrics: m,
	}
}

// Publish appends event to the stream. Consumers dedupe on event_id.
func (p *StreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":       event.ID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"payload":        string(payload),
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	err = p.client.XAdd(ctx, args).Err()
	if p.metrics != nil {
		p.metrics.RedisOperations.WithLabelValues("xadd").Inc()
		if err != nil {
			p.metrics.RedisErrors.WithLabelValues("xadd").Inc()
		}
	}
	return err
}
