package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/glcore/internal/domain"
)

// EventHandler receives committed domain events.
type EventHandler func(ctx context.Context, event domain.Event) error

// Dispatcher is an in-process observer list. Handlers run synchronously in
// subscription order; a failing or panicking handler is logged and does not
// stop delivery to the others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[domain.EventType][]EventHandler
	all      []EventHandler
	logger   zerolog.Logger
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[domain.EventType][]EventHandler),
		logger:   logger,
	}
}

// Subscribe registers h for the given event types, or for every event when none are given.
func (d *Dispatcher) Subscribe(h EventHandler, types ...domain.EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(types) == 0 {
		d.all = append(d.all, h)
		return
	}
	for _, t := range types {
		d.handlers[t] = append(d.handlers[t], h)
	}
}

// Dispatch delivers events in order.
func (d *Dispatcher) Dispatch(ctx context.Context, events []domain.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range events {
		for _, h := range d.handlers[e.Type] {
			d.deliver(ctx, h, e)
		}
		for _, h := range d.all {
			d.deliver(ctx, h, e)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, h EventHandler, e domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Interface("panic", r).
				Str("event_type", string(e.Type)).
				Str("aggregate_id", e.AggregateID).
				Msg("event handler panicked")
		}
	}()

	if err := h(ctx, e); err != nil {
		d.logger.Error().Err(err).
			Str("event_type", string(e.Type)).
			Str("aggregate_id", e.AggregateID).
			Msg("event handler failed")
	}
}

// LogEvents is an EventHandler that writes each event to logger at debug level.
func LogEvents(logger zerolog.Logger) EventHandler {
	return func(_ context.Context, e domain.Event) error {
		logger.Debug().
			Str("event_type", string(e.Type)).
			Str("aggregate_type", e.AggregateType).
			Str("aggregate_id", e.AggregateID).
			Time("occurred_at", e.OccurredAt).
			Msg("domain event")
		return nil
	}
}
