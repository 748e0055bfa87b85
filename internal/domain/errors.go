package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Journal entry errors
	ErrJournalEntryNotFound   = errors.New("journal entry not found")
	ErrJournalLineNotFound    = errors.New("journal entry line not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrImbalancedEntry        = errors.New("journal entry is not balanced")
	ErrInsufficientLines      = errors.New("journal entry requires at least two lines")
	ErrDuplicateNumber        = errors.New("journal entry number already exists")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrCurrencyMismatch       = errors.New("currency mismatch")
	ErrInvalidEntryType       = errors.New("invalid journal entry type")

	// Period errors
	ErrPeriodNotFound          = errors.New("financial period not found")
	ErrPeriodClosed            = errors.New("financial period is closed for posting")
	ErrEntryDateOutsidePeriod  = errors.New("entry date is outside the financial period")
	ErrDuplicatePeriodCode     = errors.New("financial period code already exists")
	ErrOverlappingPeriod       = errors.New("financial period overlaps an existing period")
	ErrInvalidPeriodDates      = errors.New("financial period start date must not be after end date")
	ErrAccountBalanceNotFound  = errors.New("account balance not found")
	ErrConcurrentModification  = errors.New("aggregate was modified concurrently")
	ErrReasonRequired          = errors.New("reason is required")
	ErrActorRequired           = errors.New("actor is required")
	ErrRequiredFieldMissing    = errors.New("required field missing")
	ErrAccountResolutionFailed = errors.New("account could not be resolved")
)

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJournalEntryNotFound) ||
		errors.Is(err, ErrJournalLineNotFound) ||
		errors.Is(err, ErrPeriodNotFound) ||
		errors.Is(err, ErrAccountBalanceNotFound)
}

// InvalidStateTransitionError carries the current status of the aggregate that refused an operation.
type InvalidStateTransitionError struct {
	Aggregate string
	ID        string
	Operation string
	From      string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s from status %s", e.Aggregate, e.ID, e.Operation, e.From)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// ImbalancedEntryError reports the first currency whose debits and credits differ beyond tolerance.
type ImbalancedEntryError struct {
	Currency string
	Debits   decimal.Decimal
	Credits  decimal.Decimal
}

func (e *ImbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is not balanced in %s: debits %s, credits %s",
		e.Currency, e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

func (e *ImbalancedEntryError) Unwrap() error { return ErrImbalancedEntry }

// InsufficientLinesError is returned when an entry is submitted with fewer than two lines.
type InsufficientLinesError struct {
	Count int
}

func (e *InsufficientLinesError) Error() string {
	return fmt.Sprintf("journal entry requires at least %d lines, has %d", MinJournalLines, e.Count)
}

func (e *InsufficientLinesError) Unwrap() error { return ErrInsufficientLines }

// PeriodClosedError is returned when posting into a closed or closing period.
type PeriodClosedError struct {
	PeriodID      string
	PeriodCode    string
	ClosingStatus ClosingStatus
	IsClosed      bool
}

func (e *PeriodClosedError) Error() string {
	if e.IsClosed {
		return fmt.Sprintf("financial period %s is closed", e.PeriodCode)
	}
	return fmt.Sprintf("financial period %s is locked for posting while closing is %s", e.PeriodCode, e.ClosingStatus)
}

func (e *PeriodClosedError) Unwrap() error { return ErrPeriodClosed }
