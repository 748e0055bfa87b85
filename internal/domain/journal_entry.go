package domain

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryStatus is the approval and posting lifecycle state of an entry.
type JournalEntryStatus string

const (
	JournalEntryStatusDraft    JournalEntryStatus = "draft"
	JournalEntryStatusPending  JournalEntryStatus = "pending"
	JournalEntryStatusApproved JournalEntryStatus = "approved"
	JournalEntryStatusPosted   JournalEntryStatus = "posted"
	JournalEntryStatusRejected JournalEntryStatus = "rejected"
	JournalEntryStatusReversed JournalEntryStatus = "reversed"
)

// IsTerminal reports whether no further transition is possible.
func (s JournalEntryStatus) IsTerminal() bool {
	return s == JournalEntryStatusRejected || s == JournalEntryStatusReversed
}

// JournalEntryType classifies why an entry was raised.
type JournalEntryType string

const (
	JournalEntryTypeStandard  JournalEntryType = "standard"
	JournalEntryTypeAdjusting JournalEntryType = "adjusting"
	JournalEntryTypeClosing   JournalEntryType = "closing"
	JournalEntryTypeReversing JournalEntryType = "reversing"
	JournalEntryTypeOpening   JournalEntryType = "opening"
	JournalEntryTypeRecurring JournalEntryType = "recurring"
)

var validEntryTypes = map[JournalEntryType]bool{
	JournalEntryTypeStandard:  true,
	JournalEntryTypeAdjusting: true,
	JournalEntryTypeClosing:   true,
	JournalEntryTypeReversing: true,
	JournalEntryTypeOpening:   true,
	JournalEntryTypeRecurring: true,
}

// IsValid checks if the entry type is known.
func (t JournalEntryType) IsValid() bool {
	return validEntryTypes[t]
}

// JournalEntryLine is one debit or credit leg of a journal entry.
type JournalEntryLine struct {
	ID             string
	JournalEntryID string
	AccountID      string
	Amount         Money
	IsDebit        bool
	Description    string
	Reference      string
	LineNumber     int
}

// SignedAmount returns the amount as a ledger delta: positive for debits, negative for credits.
func (l JournalEntryLine) SignedAmount() decimal.Decimal {
	if l.IsDebit {
		return l.Amount.Amount()
	}
	return l.Amount.Amount().Neg()
}

// JournalEntryState is the persisted form of a journal entry.
type JournalEntryState struct {
	ID                     string
	Number                 string
	EntryDate              time.Time
	Description            string
	Status                 JournalEntryStatus
	EntryType              JournalEntryType
	Reference              string
	SourceDocument         string
	ApprovedBy             string
	ApprovalDate           *time.Time
	RejectedBy             string
	RejectionDate          *time.Time
	PostedBy               string
	PostedDate             *time.Time
	ReversalReason         string
	ReversalJournalEntryID string
	FinancialPeriodID      string
	ModuleSource           string
	Notes                  string
	CreatedBy              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	Version                int64
	Lines                  []JournalEntryLine
}

// JournalEntry is the double-entry aggregate. State changes only through its
// transition methods; each transition records an event.
type JournalEntry struct {
	eventRecorder
	state JournalEntryState
}

// NewJournalEntryParams holds the fields supplied when an entry is created.
type NewJournalEntryParams struct {
	ID                string
	Number            string
	EntryDate         time.Time
	Description       string
	Type              JournalEntryType
	Reference         string
	SourceDocument    string
	FinancialPeriodID string
	ModuleSource      string
	Notes             string
	CreatedBy         string
}

// NewJournalEntry creates a draft entry.
func NewJournalEntry(p NewJournalEntryParams, now time.Time) (*JournalEntry, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrRequiredFieldMissing)
	}
	if err := ValidateEntryNumber(p.Number); err != nil {
		return nil, err
	}
	if p.EntryDate.IsZero() {
		return nil, fmt.Errorf("%w: entry date", ErrRequiredFieldMissing)
	}
	if err := ValidateText("description", p.Description, MaxDescriptionLength); err != nil {
		return nil, err
	}
	if p.Type == "" {
		p.Type = JournalEntryTypeStandard
	}
	if !p.Type.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntryType, p.Type)
	}

	e := &JournalEntry{
		state: JournalEntryState{
			ID:                p.ID,
			Number:            strings.TrimSpace(p.Number),
			EntryDate:         p.EntryDate.UTC(),
			Description:       p.Description,
			Status:            JournalEntryStatusDraft,
			EntryType:         p.Type,
			Reference:         p.Reference,
			SourceDocument:    p.SourceDocument,
			FinancialPeriodID: p.FinancialPeriodID,
			ModuleSource:      p.ModuleSource,
			Notes:             p.Notes,
			CreatedBy:         p.CreatedBy,
			CreatedAt:         now,
			UpdatedAt:         now,
			Version:           1,
		},
	}

	e.record(e.event(EventTypeJournalEntryCreated, now, map[string]any{
		"number":        e.state.Number,
		"entry_date":    e.state.EntryDate.Format(time.DateOnly),
		"entry_type":    string(e.state.EntryType),
		"description":   e.state.Description,
		"module_source": e.state.ModuleSource,
		"created_by":    e.state.CreatedBy,
	}))

	return e, nil
}

// RestoreJournalEntry rebuilds an entry from persistence. No validation, no events.
func RestoreJournalEntry(s JournalEntryState) *JournalEntry {
	s.Lines = slices.Clone(s.Lines)
	return &JournalEntry{state: s}
}

// State returns a copy of the entry's persisted fields.
func (e *JournalEntry) State() JournalEntryState {
	s := e.state
	s.Lines = slices.Clone(e.state.Lines)
	return s
}

func (e *JournalEntry) ID() string                          { return e.state.ID }
func (e *JournalEntry) Number() string                      { return e.state.Number }
func (e *JournalEntry) EntryDate() time.Time                { return e.state.EntryDate }
func (e *JournalEntry) Description() string                 { return e.state.Description }
func (e *JournalEntry) Status() JournalEntryStatus          { return e.state.Status }
func (e *JournalEntry) EntryType() JournalEntryType         { return e.state.EntryType }
func (e *JournalEntry) Reference() string                   { return e.state.Reference }
func (e *JournalEntry) SourceDocument() string              { return e.state.SourceDocument }
func (e *JournalEntry) ApprovedBy() string                  { return e.state.ApprovedBy }
func (e *JournalEntry) ApprovalDate() *time.Time            { return e.state.ApprovalDate }
func (e *JournalEntry) PostedBy() string                    { return e.state.PostedBy }
func (e *JournalEntry) PostedDate() *time.Time              { return e.state.PostedDate }
func (e *JournalEntry) ReversalReason() string              { return e.state.ReversalReason }
func (e *JournalEntry) ReversalJournalEntryID() string      { return e.state.ReversalJournalEntryID }
func (e *JournalEntry) FinancialPeriodID() string           { return e.state.FinancialPeriodID }
func (e *JournalEntry) ModuleSource() string                { return e.state.ModuleSource }
func (e *JournalEntry) Notes() string                       { return e.state.Notes }
func (e *JournalEntry) Version() int64                      { return e.state.Version }
func (e *JournalEntry) Lines() []JournalEntryLine           { return slices.Clone(e.state.Lines) }
func (e *JournalEntry) IsReversal() bool                    { return e.state.EntryType == JournalEntryTypeReversing }
func (e *JournalEntry) LinesEditable() bool                 { return e.state.Status == JournalEntryStatusDraft }
func (e *JournalEntry) HasStatus(s JournalEntryStatus) bool { return e.state.Status == s }

// AdvanceVersion is called by repositories after a successful conditional update.
func (e *JournalEntry) AdvanceVersion() {
	e.state.Version++
}

// AddLineParams describes a new debit or credit leg.
type AddLineParams struct {
	ID          string
	AccountID   string
	Amount      Money
	IsDebit     bool
	Description string
	Reference   string
}

// AddLine appends a leg to a draft entry. Balance is not checked here: lines
// are normally added one at a time and only the submitted entry must balance.
func (e *JournalEntry) AddLine(p AddLineParams, now time.Time) (JournalEntryLine, error) {
	if err := e.ensureStatus("add line", JournalEntryStatusDraft); err != nil {
		return JournalEntryLine{}, err
	}
	if p.ID == "" {
		return JournalEntryLine{}, fmt.Errorf("%w: line id", ErrRequiredFieldMissing)
	}
	if strings.TrimSpace(p.AccountID) == "" {
		return JournalEntryLine{}, fmt.Errorf("%w: account id", ErrRequiredFieldMissing)
	}
	if err := ValidateCurrency(p.Amount.Currency()); err != nil {
		return JournalEntryLine{}, err
	}
	if err := ValidateAmount(p.Amount.Amount()); err != nil {
		return JournalEntryLine{}, err
	}

	next := 1
	for _, l := range e.state.Lines {
		if l.LineNumber >= next {
			next = l.LineNumber + 1
		}
	}

	line := JournalEntryLine{
		ID:             p.ID,
		JournalEntryID: e.state.ID,
		AccountID:      strings.TrimSpace(p.AccountID),
		Amount:         p.Amount,
		IsDebit:        p.IsDebit,
		Description:    p.Description,
		Reference:      p.Reference,
		LineNumber:     next,
	}
	e.state.Lines = append(e.state.Lines, line)
	e.state.UpdatedAt = now

	return line, nil
}

// RemoveLine removes a leg from a draft entry.
func (e *JournalEntry) RemoveLine(lineID string, now time.Time) error {
	if err := e.ensureStatus("remove line", JournalEntryStatusDraft); err != nil {
		return err
	}

	idx := slices.IndexFunc(e.state.Lines, func(l JournalEntryLine) bool { return l.ID == lineID })
	if idx < 0 {
		return fmt.Errorf("%w: %s in journal entry %s", ErrJournalLineNotFound, lineID, e.state.ID)
	}

	e.state.Lines = slices.Delete(e.state.Lines, idx, idx+1)
	e.state.UpdatedAt = now

	return nil
}

// CurrencyTotals are the debit and credit sums of one currency group.
type CurrencyTotals struct {
	Currency string
	Debits   decimal.Decimal
	Credits  decimal.Decimal
}

// Difference returns debits minus credits.
func (t CurrencyTotals) Difference() decimal.Decimal {
	return t.Debits.Sub(t.Credits)
}

// IsBalanced reports whether the difference is within tolerance.
func (t CurrencyTotals) IsBalanced(tolerance decimal.Decimal) bool {
	return t.Difference().Abs().LessThanOrEqual(tolerance)
}

// TotalsByCurrency groups lines by currency, sorted by currency code.
func TotalsByCurrency(lines []JournalEntryLine) []CurrencyTotals {
	byCurrency := make(map[string]*CurrencyTotals)
	for _, l := range lines {
		c := l.Amount.Currency()
		t, ok := byCurrency[c]
		if !ok {
			t = &CurrencyTotals{Currency: c, Debits: decimal.Zero, Credits: decimal.Zero}
			byCurrency[c] = t
		}
		if l.IsDebit {
			t.Debits = t.Debits.Add(l.Amount.Amount())
		} else {
			t.Credits = t.Credits.Add(l.Amount.Amount())
		}
	}

	totals := make([]CurrencyTotals, 0, len(byCurrency))
	for _, t := range byCurrency {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Currency < totals[j].Currency })

	return totals
}

// CheckBalance verifies every currency group balances within tolerance.
// A zero tolerance demands exact balance.
func CheckBalance(lines []JournalEntryLine, tolerance decimal.Decimal) error {
	for _, t := range TotalsByCurrency(lines) {
		if !t.IsBalanced(tolerance) {
			return &ImbalancedEntryError{Currency: t.Currency, Debits: t.Debits, Credits: t.Credits}
		}
	}
	return nil
}

// Totals returns the entry's per-currency debit and credit sums.
func (e *JournalEntry) Totals() []CurrencyTotals {
	return TotalsByCurrency(e.state.Lines)
}

// NeedsRounding reports whether any currency group carries a residual
// difference that posting must book to the rounding account.
func (e *JournalEntry) NeedsRounding() bool {
	for _, t := range e.Totals() {
		if !t.Difference().IsZero() {
			return true
		}
	}
	return false
}

// SubmitForApproval moves a complete draft, balanced within tolerance, to pending.
func (e *JournalEntry) SubmitForApproval(tolerance decimal.Decimal, now time.Time) error {
	if err := e.ensureStatus("submit", JournalEntryStatusDraft); err != nil {
		return err
	}
	if len(e.state.Lines) < MinJournalLines {
		return &InsufficientLinesError{Count: len(e.state.Lines)}
	}
	if err := CheckBalance(e.state.Lines, tolerance); err != nil {
		return err
	}

	e.state.Status = JournalEntryStatusPending
	e.state.UpdatedAt = now
	e.record(e.event(EventTypeJournalEntrySubmitted, now, map[string]any{
		"number":     e.state.Number,
		"line_count": len(e.state.Lines),
	}))

	return nil
}

// Approve accepts a pending entry.
func (e *JournalEntry) Approve(approvedBy string, now time.Time) error {
	if err := e.ensureStatus("approve", JournalEntryStatusPending); err != nil {
		return err
	}
	if strings.TrimSpace(approvedBy) == "" {
		return fmt.Errorf("%w: approved by", ErrActorRequired)
	}

	e.state.Status = JournalEntryStatusApproved
	e.state.ApprovedBy = approvedBy
	e.state.ApprovalDate = timePtr(now)
	e.state.UpdatedAt = now
	e.record(e.event(EventTypeJournalEntryApproved, now, map[string]any{
		"number":      e.state.Number,
		"approved_by": approvedBy,
	}))

	return nil
}

// Reject refuses a pending entry. The reason is kept in Notes.
func (e *JournalEntry) Reject(rejectedBy, reason string, now time.Time) error {
	if err := e.ensureStatus("reject", JournalEntryStatusPending); err != nil {
		return err
	}
	if strings.TrimSpace(rejectedBy) == "" {
		return fmt.Errorf("%w: rejected by", ErrActorRequired)
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	e.state.Status = JournalEntryStatusRejected
	e.state.RejectedBy = rejectedBy
	e.state.RejectionDate = timePtr(now)
	e.state.Notes = reason
	e.state.UpdatedAt = now
	e.record(e.event(EventTypeJournalEntryRejected, now, map[string]any{
		"number":      e.state.Number,
		"rejected_by": rejectedBy,
		"reason":      reason,
	}))

	return nil
}

// Post commits an approved entry into period. The caller applies the lines to
// account balances in the same unit of work.
func (e *JournalEntry) Post(postedBy string, period *FinancialPeriod, tolerance decimal.Decimal, now time.Time) error {
	if err := e.ensureStatus("post", JournalEntryStatusApproved); err != nil {
		return err
	}
	if strings.TrimSpace(postedBy) == "" {
		return fmt.Errorf("%w: posted by", ErrActorRequired)
	}
	if period == nil {
		return fmt.Errorf("%w: no period for entry %s", ErrPeriodNotFound, e.state.Number)
	}
	if e.state.FinancialPeriodID != "" && e.state.FinancialPeriodID != period.ID() {
		return fmt.Errorf("%w: entry %s belongs to period %s", ErrEntryDateOutsidePeriod, e.state.Number, e.state.FinancialPeriodID)
	}
	if err := period.EnsureOpenForPosting(e.state.EntryDate, e.state.EntryType); err != nil {
		return err
	}
	if err := CheckBalance(e.state.Lines, tolerance); err != nil {
		return err
	}

	e.state.Status = JournalEntryStatusPosted
	e.state.PostedBy = postedBy
	e.state.PostedDate = timePtr(now)
	e.state.FinancialPeriodID = period.ID()
	e.state.UpdatedAt = now
	e.record(e.event(EventTypeJournalEntryPosted, now, map[string]any{
		"number":              e.state.Number,
		"entry_date":          e.state.EntryDate.Format(time.DateOnly),
		"posted_by":           postedBy,
		"financial_period_id": period.ID(),
		"module_source":       e.state.ModuleSource,
	}))

	return nil
}

// ReversalParams configures CreateReversal.
type ReversalParams struct {
	ID        string
	Number    string
	Reason    string
	PostedBy  string
	EntryDate time.Time // defaults to the original entry date
	Tolerance decimal.Decimal
	NewLineID func() string
}

// CreateReversal builds, approves and posts a mirror entry with every leg's
// side inverted, links both entries and marks this one reversed. On error
// neither entry is changed.
func (e *JournalEntry) CreateReversal(p ReversalParams, period *FinancialPeriod, now time.Time) (*JournalEntry, error) {
	if err := e.ensureStatus("reverse", JournalEntryStatusPosted); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Reason) == "" {
		return nil, ErrReasonRequired
	}
	if strings.TrimSpace(p.PostedBy) == "" {
		return nil, fmt.Errorf("%w: posted by", ErrActorRequired)
	}
	if p.NewLineID == nil {
		return nil, fmt.Errorf("%w: line id generator", ErrRequiredFieldMissing)
	}
	if period == nil {
		return nil, fmt.Errorf("%w: no period for reversal of %s", ErrPeriodNotFound, e.state.Number)
	}

	entryDate := p.EntryDate
	if entryDate.IsZero() {
		entryDate = e.state.EntryDate
	}

	reversal, err := NewJournalEntry(NewJournalEntryParams{
		ID:                p.ID,
		Number:            p.Number,
		EntryDate:         entryDate,
		Description:       fmt.Sprintf("Reversal of %s: %s", e.state.Number, p.Reason),
		Type:              JournalEntryTypeReversing,
		Reference:         e.state.Reference,
		SourceDocument:    e.state.SourceDocument,
		FinancialPeriodID: period.ID(),
		ModuleSource:      e.state.ModuleSource,
		CreatedBy:         p.PostedBy,
	}, now)
	if err != nil {
		return nil, err
	}

	for _, l := range e.state.Lines {
		if _, err := reversal.AddLine(AddLineParams{
			ID:          p.NewLineID(),
			AccountID:   l.AccountID,
			Amount:      l.Amount,
			IsDebit:     !l.IsDebit,
			Description: l.Description,
			Reference:   l.Reference,
		}, now); err != nil {
			return nil, err
		}
	}

	if err := reversal.SubmitForApproval(p.Tolerance, now); err != nil {
		return nil, err
	}
	if err := reversal.Approve(p.PostedBy, now); err != nil {
		return nil, err
	}
	if err := reversal.Post(p.PostedBy, period, p.Tolerance, now); err != nil {
		return nil, err
	}

	reversal.state.ReversalJournalEntryID = e.state.ID
	reversal.state.ReversalReason = p.Reason

	e.state.Status = JournalEntryStatusReversed
	e.state.ReversalJournalEntryID = reversal.state.ID
	e.state.ReversalReason = p.Reason
	e.state.UpdatedAt = now
	e.record(e.event(EventTypeJournalEntryReversed, now, map[string]any{
		"number":                    e.state.Number,
		"reversal_journal_entry_id": reversal.state.ID,
		"reversal_number":           reversal.state.Number,
		"reason":                    p.Reason,
		"posted_by":                 p.PostedBy,
	}))

	return reversal, nil
}

func (e *JournalEntry) ensureStatus(op string, allowed ...JournalEntryStatus) error {
	if slices.Contains(allowed, e.state.Status) {
		return nil
	}
	return &InvalidStateTransitionError{
		Aggregate: AggregateTypeJournalEntry,
		ID:        e.state.ID,
		Operation: op,
		From:      string(e.state.Status),
	}
}

func (e *JournalEntry) event(t EventType, now time.Time, payload map[string]any) Event {
	payload["journal_entry_id"] = e.state.ID
	payload["status"] = string(e.state.Status)
	return Event{
		Type:          t,
		AggregateType: AggregateTypeJournalEntry,
		AggregateID:   e.state.ID,
		OccurredAt:    now,
		Payload:       payload,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
