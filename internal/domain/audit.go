package domain

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // What action (journal_entry.post, financial_period.close, etc.)
	ResourceType string // journal_entry or financial_period
	ResourceID   string
	RequestID    string
	Reason       string
	BeforeState  JSON
	AfterState   JSON
	Status       string // success, failure, error
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Journal entry actions
	AuditActionEntryCreate  AuditAction = "journal_entry.create"
	AuditActionEntryAddLine AuditAction = "journal_entry.add_line"
	AuditActionEntryDelLine AuditAction = "journal_entry.remove_line"
	AuditActionEntrySubmit  AuditAction = "journal_entry.submit"
	AuditActionEntryApprove AuditAction = "journal_entry.approve"
	AuditActionEntryReject  AuditAction = "journal_entry.reject"
	AuditActionEntryPost    AuditAction = "journal_entry.post"
	AuditActionEntryReverse AuditAction = "journal_entry.reverse"

	// Period actions
	AuditActionPeriodCreate           AuditAction = "financial_period.create"
	AuditActionPeriodStartClosing     AuditAction = "financial_period.start_closing"
	AuditActionPeriodValidationFailed AuditAction = "financial_period.validation_failed"
	AuditActionPeriodValidated        AuditAction = "financial_period.validated"
	AuditActionPeriodClosingEntries   AuditAction = "financial_period.closing_entries_posted"
	AuditActionPeriodClose            AuditAction = "financial_period.close"
	AuditActionPeriodRollback         AuditAction = "financial_period.rollback_closing"
	AuditActionPeriodReopen           AuditAction = "financial_period.reopen"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}

type actorKey struct{}

// Actor identifies who triggered a request.
type Actor struct {
	ID        string
	RequestID string
}

// ContextWithActor attaches the actor to ctx.
func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor attached to ctx, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
