package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stores an outbox event.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	d, err := txData(tx)
	if err != nil {
		return err
	}
	d.outbox = append(d.outbox, *event)
	return nil
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	r.store.read(func(d *dataset) {
		for _, e := range d.outbox {
			if limit > 0 && len(out) >= limit {
				return
			}
			if !e.Published {
				out = append(out, &e)
			}
		}
	})
	return out, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	found := false
	err := r.store.write(ctx, func(d *dataset) {
		for i := range d.outbox {
			if d.outbox[i].ID == id {
				d.outbox[i].Published = true
				d.outbox[i].PublishedAt = &publishedAt
				found = true
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("outbox event %s not found", id)
	}
	return nil
}

// GetByAggregate returns events for an aggregate, oldest first.
func (r *OutboxRepository) GetByAggregate(_ context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	r.store.read(func(d *dataset) {
		skipped := 0
		for _, e := range d.outbox {
			if e.AggregateType != aggregateType || e.AggregateID != aggregateID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(out) >= limit {
				return
			}
			out = append(out, &e)
		}
	})
	return out, nil
}

// DeletePublished removes events published before the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := r.store.write(ctx, func(d *dataset) {
		kept := make([]domain.OutboxEvent, 0, len(d.outbox))
		for _, e := range d.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				deleted++
				continue
			}
			kept = append(kept, e)
		}
		d.outbox = kept
	})
	return deleted, err
}
