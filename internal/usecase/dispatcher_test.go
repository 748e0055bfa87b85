package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

func TestDispatcherDeliversInOrder(t *testing.T) {
	var buf bytes.Buffer
	d := usecase.NewDispatcher(zerolog.New(&buf))

	var posted, all []string
	d.Subscribe(func(_ context.Context, e domain.Event) error {
		posted = append(posted, e.AggregateID)
		return nil
	}, domain.EventTypeJournalEntryPosted)
	d.Subscribe(func(_ context.Context, e domain.Event) error {
		all = append(all, string(e.Type))
		return nil
	})

	d.Dispatch(context.Background(), []domain.Event{
		{Type: domain.EventTypeJournalEntryApproved, AggregateID: "je-1", OccurredAt: time.Now()},
		{Type: domain.EventTypeJournalEntryPosted, AggregateID: "je-1", OccurredAt: time.Now()},
		{Type: domain.EventTypeJournalEntryPosted, AggregateID: "je-2", OccurredAt: time.Now()},
	})

	assert.Equal(t, []string{"je-1", "je-2"}, posted)
	assert.Equal(t, []string{
		string(domain.EventTypeJournalEntryApproved),
		string(domain.EventTypeJournalEntryPosted),
		string(domain.EventTypeJournalEntryPosted),
	}, all)
	assert.Empty(t, buf.String())
}

func TestDispatcherIsolatesFailingHandlers(t *testing.T) {
	var buf bytes.Buffer
	d := usecase.NewDispatcher(zerolog.New(&buf))

	delivered := 0
	d.Subscribe(func(context.Context, domain.Event) error { return errors.New("projection down") })
	d.Subscribe(func(context.Context, domain.Event) error { panic("boom") })
	d.Subscribe(func(context.Context, domain.Event) error {
		delivered++
		return nil
	})

	d.Dispatch(context.Background(), []domain.Event{
		{Type: domain.EventTypeFinancialPeriodClosed, AggregateID: "p-1"},
	})

	assert.Equal(t, 1, delivered)
	assert.Contains(t, buf.String(), "event handler failed")
	assert.Contains(t, buf.String(), "event handler panicked")
}

func TestLogEvents(t *testing.T) {
	var buf bytes.Buffer
	h := usecase.LogEvents(zerolog.New(&buf))

	err := h(context.Background(), domain.Event{
		Type:          domain.EventTypeJournalEntryReversed,
		AggregateType: domain.AggregateTypeJournalEntry,
		AggregateID:   "je-9",
	})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"event_type":"journal_entry.reversed"`)
	assert.Contains(t, buf.String(), `"aggregate_id":"je-9"`)
}
