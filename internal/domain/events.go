package domain

import "time"

// EventType identifies a domain event.
type EventType string

// Journal entry events.
const (
	EventTypeJournalEntryCreated   EventType = "journal_entry.created"
	EventTypeJournalEntrySubmitted EventType = "journal_entry.submitted"
	EventTypeJournalEntryApproved  EventType = "journal_entry.approved"
	EventTypeJournalEntryRejected  EventType = "journal_entry.rejected"
	EventTypeJournalEntryPosted    EventType = "journal_entry.posted"
	EventTypeJournalEntryReversed  EventType = "journal_entry.reversed"
)

// Financial period events.
const (
	EventTypeFinancialPeriodCreated        EventType = "financial_period.created"
	EventTypePeriodClosingInitiated        EventType = "financial_period.closing_initiated"
	EventTypePeriodClosingValidationFailed EventType = "financial_period.closing_validation_failed"
	EventTypePeriodClosingValidated        EventType = "financial_period.closing_validated"
	EventTypePeriodClosingEntriesPosted    EventType = "financial_period.closing_entries_posted"
	EventTypeFinancialPeriodClosed         EventType = "financial_period.closed"
	EventTypePeriodClosingRolledBack       EventType = "financial_period.closing_rolled_back"
	EventTypeFinancialPeriodReopened       EventType = "financial_period.reopened"
)

// Aggregate types
const (
	AggregateTypeJournalEntry    = "journal_entry"
	AggregateTypeFinancialPeriod = "financial_period"
)

// Event is a fact recorded by an aggregate transition. Payload carries the
// aggregate id and the fields needed to display or re-fetch it.
type Event struct {
	Type          EventType
	AggregateType string
	AggregateID   string
	OccurredAt    time.Time
	Payload       map[string]any
}

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewOutboxEvent wraps a domain event for persistence in the outbox.
func NewOutboxEvent(id string, e Event) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		EventType:     string(e.Type),
		Payload:       e.Payload,
		CreatedAt:     e.OccurredAt,
	}
}

// eventRecorder accumulates events until the unit of work drains them.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) record(e Event) {
	r.events = append(r.events, e)
}

// PullEvents returns and clears the pending events in emission order.
func (r *eventRecorder) PullEvents() []Event {
	events := r.events
	r.events = nil
	return events
}

// PendingEvents returns the pending events without clearing them.
func (r *eventRecorder) PendingEvents() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
