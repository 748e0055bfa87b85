package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ClosingStatus is the step a period's closing workflow has reached.
type ClosingStatus string

const (
	ClosingStatusNotStarted           ClosingStatus = "not_started"
	ClosingStatusInitiated            ClosingStatus = "initiated"
	ClosingStatusValidationFailed     ClosingStatus = "validation_failed"
	ClosingStatusValidated            ClosingStatus = "validated"
	ClosingStatusClosingEntriesPosted ClosingStatus = "closing_entries_posted"
	ClosingStatusCompleted            ClosingStatus = "completed"
	ClosingStatusFailed               ClosingStatus = "failed"
)

// InFlight reports whether a close has started and not yet finished or failed.
func (s ClosingStatus) InFlight() bool {
	switch s {
	case ClosingStatusInitiated, ClosingStatusValidationFailed,
		ClosingStatusValidated, ClosingStatusClosingEntriesPosted:
		return true
	}
	return false
}

// FinancialPeriodState is the persisted form of a financial period.
type FinancialPeriodState struct {
	ID                 string
	PeriodCode         string
	Name               string
	StartDate          time.Time
	EndDate            time.Time
	FiscalYear         int
	FiscalMonth        int
	IsAdjustmentPeriod bool
	IsClosed           bool
	ClosedDate         *time.Time
	ClosedBy           string
	ClosingStatus      ClosingStatus
	ValidationErrors   []string
	ClosingStartedAt   *time.Time
	ClosingCompletedAt *time.Time
	ClosingInitiatedBy string
	RollbackReason     string
	ReopenedBy         string
	ReopenedAt         *time.Time
	ReopenReason       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
}

// FinancialPeriod is a bounded date range that accepts postings until it is closed.
type FinancialPeriod struct {
	eventRecorder
	state FinancialPeriodState
}

// NewFinancialPeriodParams holds the fields supplied when a period is created.
type NewFinancialPeriodParams struct {
	ID                 string
	PeriodCode         string
	Name               string
	StartDate          time.Time
	EndDate            time.Time
	FiscalYear         int
	FiscalMonth        int
	IsAdjustmentPeriod bool
}

// NewFinancialPeriod creates an open period with closing not started.
func NewFinancialPeriod(p NewFinancialPeriodParams, now time.Time) (*FinancialPeriod, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrRequiredFieldMissing)
	}
	if err := ValidatePeriodCode(p.PeriodCode); err != nil {
		return nil, err
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end date", ErrRequiredFieldMissing)
	}
	start, end := dateOnly(p.StartDate), dateOnly(p.EndDate)
	if start.After(end) {
		return nil, ErrInvalidPeriodDates
	}
	if p.FiscalMonth < 0 || p.FiscalMonth > 13 {
		return nil, fmt.Errorf("%w: fiscal month %d", ErrInvalidPeriodDates, p.FiscalMonth)
	}
	if p.Name == "" {
		p.Name = p.PeriodCode
	}
	if p.FiscalYear == 0 {
		p.FiscalYear = start.Year()
	}

	fp := &FinancialPeriod{
		state: FinancialPeriodState{
			ID:                 p.ID,
			PeriodCode:         strings.TrimSpace(p.PeriodCode),
			Name:               p.Name,
			StartDate:          start,
			EndDate:            end,
			FiscalYear:         p.FiscalYear,
			FiscalMonth:        p.FiscalMonth,
			IsAdjustmentPeriod: p.IsAdjustmentPeriod,
			ClosingStatus:      ClosingStatusNotStarted,
			CreatedAt:          now,
			UpdatedAt:          now,
			Version:            1,
		},
	}
	fp.record(fp.event(EventTypeFinancialPeriodCreated, now, map[string]any{
		"name":       fp.state.Name,
		"start_date": start.Format(time.DateOnly),
		"end_date":   end.Format(time.DateOnly),
	}))

	return fp, nil
}

// RestoreFinancialPeriod rebuilds a period from persistence.
func RestoreFinancialPeriod(s FinancialPeriodState) *FinancialPeriod {
	s.ValidationErrors = slices.Clone(s.ValidationErrors)
	return &FinancialPeriod{state: s}
}

// State returns a copy of the period's persisted fields.
func (p *FinancialPeriod) State() FinancialPeriodState {
	s := p.state
	s.ValidationErrors = slices.Clone(p.state.ValidationErrors)
	return s
}

func (p *FinancialPeriod) ID() string                   { return p.state.ID }
func (p *FinancialPeriod) PeriodCode() string           { return p.state.PeriodCode }
func (p *FinancialPeriod) Name() string                 { return p.state.Name }
func (p *FinancialPeriod) StartDate() time.Time         { return p.state.StartDate }
func (p *FinancialPeriod) EndDate() time.Time           { return p.state.EndDate }
func (p *FinancialPeriod) IsAdjustmentPeriod() bool     { return p.state.IsAdjustmentPeriod }
func (p *FinancialPeriod) IsClosed() bool               { return p.state.IsClosed }
func (p *FinancialPeriod) ClosingStatus() ClosingStatus { return p.state.ClosingStatus }
func (p *FinancialPeriod) ValidationErrors() []string   { return slices.Clone(p.state.ValidationErrors) }
func (p *FinancialPeriod) RollbackReason() string       { return p.state.RollbackReason }
func (p *FinancialPeriod) Version() int64               { return p.state.Version }

// AdvanceVersion is called by repositories after a successful conditional update.
func (p *FinancialPeriod) AdvanceVersion() {
	p.state.Version++
}

// Contains reports whether date falls on a calendar day within the period.
func (p *FinancialPeriod) Contains(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(p.state.StartDate) && !d.After(p.state.EndDate)
}

// Overlaps reports whether the two periods share at least one day.
func (p *FinancialPeriod) Overlaps(other *FinancialPeriod) bool {
	return !p.state.EndDate.Before(other.state.StartDate) && !other.state.EndDate.Before(p.state.StartDate)
}

// EnsureOpenForPosting is the posting guard. Closed periods refuse every
// entry; a close in flight refuses everything except closing entries once
// validation has passed.
func (p *FinancialPeriod) EnsureOpenForPosting(entryDate time.Time, entryType JournalEntryType) error {
	if !p.Contains(entryDate) {
		return fmt.Errorf("%w: %s is not within %s (%s to %s)", ErrEntryDateOutsidePeriod,
			entryDate.Format(time.DateOnly), p.state.PeriodCode,
			p.state.StartDate.Format(time.DateOnly), p.state.EndDate.Format(time.DateOnly))
	}
	if p.state.IsClosed {
		return p.closedError()
	}
	if p.state.ClosingStatus.InFlight() {
		if entryType == JournalEntryTypeClosing && p.state.ClosingStatus == ClosingStatusValidated {
			return nil
		}
		return p.closedError()
	}
	return nil
}

// EnsureOpenAcross applies the posting guard of every period in periods that
// contains date, except the one the entry is routed to. An entry posted
// through an adjustment period thus cannot land on days a regular period has
// closed.
func EnsureOpenAcross(periods []*FinancialPeriod, targetID string, date time.Time, entryType JournalEntryType) error {
	for _, p := range periods {
		if p.ID() == targetID || !p.Contains(date) {
			continue
		}
		if err := p.EnsureOpenForPosting(date, entryType); err != nil {
			return err
		}
	}
	return nil
}

// StartClosingProcess begins a close. Only NotStarted and Failed periods may
// start; a period whose validation failed must be rolled back first.
func (p *FinancialPeriod) StartClosingProcess(initiatedBy string, now time.Time) error {
	if err := p.ensureStatus("start closing", ClosingStatusNotStarted, ClosingStatusFailed); err != nil {
		return err
	}
	if p.state.IsClosed {
		return p.closedError()
	}
	if strings.TrimSpace(initiatedBy) == "" {
		return fmt.Errorf("%w: initiated by", ErrActorRequired)
	}

	p.state.ClosingStatus = ClosingStatusInitiated
	p.state.ClosingInitiatedBy = initiatedBy
	p.state.ClosingStartedAt = timePtr(now)
	p.state.ClosingCompletedAt = nil
	p.state.ValidationErrors = nil
	p.state.RollbackReason = ""
	p.state.UpdatedAt = now
	p.record(p.event(EventTypePeriodClosingInitiated, now, map[string]any{
		"initiated_by": initiatedBy,
	}))

	return nil
}

// SetValidationErrors records why the period cannot be closed.
func (p *FinancialPeriod) SetValidationErrors(errs []string, now time.Time) error {
	if err := p.ensureStatus("set validation errors", ClosingStatusInitiated); err != nil {
		return err
	}
	if len(errs) == 0 {
		return fmt.Errorf("%w: validation errors", ErrRequiredFieldMissing)
	}

	p.state.ClosingStatus = ClosingStatusValidationFailed
	p.state.ValidationErrors = slices.Clone(errs)
	p.state.UpdatedAt = now
	p.record(p.event(EventTypePeriodClosingValidationFailed, now, map[string]any{
		"validation_errors": slices.Clone(errs),
	}))

	return nil
}

// CompleteValidation marks the pre-close checks as passed.
func (p *FinancialPeriod) CompleteValidation(now time.Time) error {
	if err := p.ensureStatus("complete validation", ClosingStatusInitiated); err != nil {
		return err
	}

	p.state.ClosingStatus = ClosingStatusValidated
	p.state.ValidationErrors = nil
	p.state.UpdatedAt = now
	p.record(p.event(EventTypePeriodClosingValidated, now, map[string]any{}))

	return nil
}

// CompleteClosingEntries marks the closing entries as posted.
func (p *FinancialPeriod) CompleteClosingEntries(now time.Time) error {
	if err := p.ensureStatus("complete closing entries", ClosingStatusValidated); err != nil {
		return err
	}

	p.state.ClosingStatus = ClosingStatusClosingEntriesPosted
	p.state.UpdatedAt = now
	p.record(p.event(EventTypePeriodClosingEntriesPosted, now, map[string]any{}))

	return nil
}

// Close freezes the period against further postings.
func (p *FinancialPeriod) Close(closedBy string, now time.Time) error {
	if err := p.ensureStatus("close", ClosingStatusClosingEntriesPosted); err != nil {
		return err
	}
	if strings.TrimSpace(closedBy) == "" {
		return fmt.Errorf("%w: closed by", ErrActorRequired)
	}

	p.state.ClosingStatus = ClosingStatusCompleted
	p.state.IsClosed = true
	p.state.ClosedBy = closedBy
	p.state.ClosedDate = timePtr(now)
	p.state.ClosingCompletedAt = timePtr(now)
	p.state.UpdatedAt = now
	p.record(p.event(EventTypeFinancialPeriodClosed, now, map[string]any{
		"closed_by": closedBy,
	}))

	return nil
}

// RollBackClosingProcess abandons an unfinished close.
func (p *FinancialPeriod) RollBackClosingProcess(reason string, now time.Time) error {
	if p.state.IsClosed || p.state.ClosingStatus == ClosingStatusNotStarted ||
		p.state.ClosingStatus == ClosingStatusCompleted {
		return p.transitionError("roll back closing")
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	from := p.state.ClosingStatus
	p.state.ClosingStatus = ClosingStatusFailed
	p.state.RollbackReason = reason
	p.state.UpdatedAt = now
	p.record(p.event(EventTypePeriodClosingRolledBack, now, map[string]any{
		"reason":      reason,
		"from_status": string(from),
	}))

	return nil
}

// ReopenPeriod reopens a closed period and clears its closing metadata.
func (p *FinancialPeriod) ReopenPeriod(reopenedBy, reason string, now time.Time) error {
	if !p.state.IsClosed {
		return p.transitionError("reopen")
	}
	if strings.TrimSpace(reopenedBy) == "" {
		return fmt.Errorf("%w: reopened by", ErrActorRequired)
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	p.state.IsClosed = false
	p.state.ClosingStatus = ClosingStatusNotStarted
	p.state.ClosedBy = ""
	p.state.ClosedDate = nil
	p.state.ClosingStartedAt = nil
	p.state.ClosingCompletedAt = nil
	p.state.ClosingInitiatedBy = ""
	p.state.ValidationErrors = nil
	p.state.RollbackReason = ""
	p.state.ReopenedBy = reopenedBy
	p.state.ReopenedAt = timePtr(now)
	p.state.ReopenReason = reason
	p.state.UpdatedAt = now
	p.record(p.event(EventTypeFinancialPeriodReopened, now, map[string]any{
		"reopened_by": reopenedBy,
		"reason":      reason,
	}))

	return nil
}

func (p *FinancialPeriod) ensureStatus(op string, allowed ...ClosingStatus) error {
	if slices.Contains(allowed, p.state.ClosingStatus) {
		return nil
	}
	return p.transitionError(op)
}

func (p *FinancialPeriod) transitionError(op string) error {
	return &InvalidStateTransitionError{
		Aggregate: AggregateTypeFinancialPeriod,
		ID:        p.state.ID,
		Operation: op,
		From:      string(p.state.ClosingStatus),
	}
}

func (p *FinancialPeriod) closedError() error {
	return &PeriodClosedError{
		PeriodID:      p.state.ID,
		PeriodCode:    p.state.PeriodCode,
		ClosingStatus: p.state.ClosingStatus,
		IsClosed:      p.state.IsClosed,
	}
}

func (p *FinancialPeriod) event(t EventType, now time.Time, payload map[string]any) Event {
	payload["financial_period_id"] = p.state.ID
	payload["period_code"] = p.state.PeriodCode
	payload["closing_status"] = string(p.state.ClosingStatus)
	return Event{
		Type:          t,
		AggregateType: AggregateTypeFinancialPeriod,
		AggregateID:   p.state.ID,
		OccurredAt:    now,
		Payload:       payload,
	}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
