package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// LineResponse represents a journal entry line in API responses.
type LineResponse struct {
	ID          string          `json:"id"`
	LineNumber  int             `json:"line_number"`
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	IsDebit     bool            `json:"is_debit"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}

// LineFromDomain converts a domain line to response.
func LineFromDomain(l domain.JournalEntryLine) LineResponse {
	return LineResponse{
		ID:          l.ID,
		LineNumber:  l.LineNumber,
		AccountID:   l.AccountID,
		Amount:      l.Amount.Amount(),
		Currency:    l.Amount.Currency(),
		IsDebit:     l.IsDebit,
		Description: l.Description,
		Reference:   l.Reference,
	}
}

// CurrencyTotalsResponse holds debit and credit sums of one currency.
type CurrencyTotalsResponse struct {
	Currency string          `json:"currency"`
	Debits   decimal.Decimal `json:"debits"`
	Credits  decimal.Decimal `json:"credits"`
	Balanced bool            `json:"balanced"`
}

// TotalsFromDomain converts currency totals to responses.
func TotalsFromDomain(totals []domain.CurrencyTotals) []CurrencyTotalsResponse {
	result := make([]CurrencyTotalsResponse, len(totals))
	for i, t := range totals {
		result[i] = CurrencyTotalsResponse{
			Currency: t.Currency,
			Debits:   t.Debits,
			Credits:  t.Credits,
			Balanced: t.Difference().IsZero(),
		}
	}
	return result
}

// JournalEntryResponse represents a journal entry in API responses.
type JournalEntryResponse struct {
	ID                     string                   `json:"id"`
	Number                 string                   `json:"number"`
	EntryDate              string                   `json:"entry_date"`
	Description            string                   `json:"description"`
	Status                 string                   `json:"status"`
	EntryType              string                   `json:"entry_type"`
	Reference              string                   `json:"reference,omitempty"`
	SourceDocument         string                   `json:"source_document,omitempty"`
	ApprovedBy             string                   `json:"approved_by,omitempty"`
	ApprovalDate           *time.Time               `json:"approval_date,omitempty"`
	RejectedBy             string                   `json:"rejected_by,omitempty"`
	RejectionDate          *time.Time               `json:"rejection_date,omitempty"`
	PostedBy               string                   `json:"posted_by,omitempty"`
	PostedDate             *time.Time               `json:"posted_date,omitempty"`
	ReversalReason         string                   `json:"reversal_reason,omitempty"`
	ReversalJournalEntryID string                   `json:"reversal_journal_entry_id,omitempty"`
	FinancialPeriodID      string                   `json:"financial_period_id,omitempty"`
	ModuleSource           string                   `json:"module_source,omitempty"`
	Notes                  string                   `json:"notes,omitempty"`
	CreatedBy              string                   `json:"created_by,omitempty"`
	CreatedAt              time.Time                `json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`
	Version                int64                    `json:"version"`
	Lines                  []LineResponse           `json:"lines"`
	Totals                 []CurrencyTotalsResponse `json:"totals"`
}

// JournalEntryFromDomain converts a domain journal entry to response.
func JournalEntryFromDomain(e *domain.JournalEntry) *JournalEntryResponse {
	s := e.State()

	lines := make([]LineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = LineFromDomain(l)
	}

	return &JournalEntryResponse{
		ID:                     s.ID,
		Number:                 s.Number,
		EntryDate:              s.EntryDate.Format(DateLayout),
		Description:            s.Description,
		Status:                 string(s.Status),
		EntryType:              string(s.EntryType),
		Reference:              s.Reference,
		SourceDocument:         s.SourceDocument,
		ApprovedBy:             s.ApprovedBy,
		ApprovalDate:           s.ApprovalDate,
		RejectedBy:             s.RejectedBy,
		RejectionDate:          s.RejectionDate,
		PostedBy:               s.PostedBy,
		PostedDate:             s.PostedDate,
		ReversalReason:         s.ReversalReason,
		ReversalJournalEntryID: s.ReversalJournalEntryID,
		FinancialPeriodID:      s.FinancialPeriodID,
		ModuleSource:           s.ModuleSource,
		Notes:                  s.Notes,
		CreatedBy:              s.CreatedBy,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		Version:                s.Version,
		Lines:                  lines,
		Totals:                 TotalsFromDomain(e.Totals()),
	}
}

// JournalEntriesFromDomain converts domain journal entries to responses.
func JournalEntriesFromDomain(entries []*domain.JournalEntry) []*JournalEntryResponse {
	result := make([]*JournalEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = JournalEntryFromDomain(e)
	}
	return result
}

// PeriodResponse represents a financial period in API responses.
type PeriodResponse struct {
	ID                 string     `json:"id"`
	PeriodCode         string     `json:"period_code"`
	Name               string     `json:"name"`
	StartDate          string     `json:"start_date"`
	EndDate            string     `json:"end_date"`
	FiscalYear         int        `json:"fiscal_year"`
	FiscalMonth        int        `json:"fiscal_month"`
	IsAdjustmentPeriod bool       `json:"is_adjustment_period"`
	IsClosed           bool       `json:"is_closed"`
	ClosedDate         *time.Time `json:"closed_date,omitempty"`
	ClosedBy           string     `json:"closed_by,omitempty"`
	ClosingStatus      string     `json:"closing_status"`
	ValidationErrors   []string   `json:"validation_errors,omitempty"`
	ClosingStartedAt   *time.Time `json:"closing_started_at,omitempty"`
	ClosingCompletedAt *time.Time `json:"closing_completed_at,omitempty"`
	ClosingInitiatedBy string     `json:"closing_initiated_by,omitempty"`
	RollbackReason     string     `json:"rollback_reason,omitempty"`
	ReopenedBy         string     `json:"reopened_by,omitempty"`
	ReopenedAt         *time.Time `json:"reopened_at,omitempty"`
	ReopenReason       string     `json:"reopen_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Version            int64      `json:"version"`
}

// PeriodFromDomain converts a domain financial period to response.
func PeriodFromDomain(p *domain.FinancialPeriod) *PeriodResponse {
	s := p.State()
	return &PeriodResponse{
		ID:                 s.ID,
		PeriodCode:         s.PeriodCode,
		Name:               s.Name,
		StartDate:          s.StartDate.Format(DateLayout),
		EndDate:            s.EndDate.Format(DateLayout),
		FiscalYear:         s.FiscalYear,
		FiscalMonth:        s.FiscalMonth,
		IsAdjustmentPeriod: s.IsAdjustmentPeriod,
		IsClosed:           s.IsClosed,
		ClosedDate:         s.ClosedDate,
		ClosedBy:           s.ClosedBy,
		ClosingStatus:      string(s.ClosingStatus),
		ValidationErrors:   s.ValidationErrors,
		ClosingStartedAt:   s.ClosingStartedAt,
		ClosingCompletedAt: s.ClosingCompletedAt,
		ClosingInitiatedBy: s.ClosingInitiatedBy,
		RollbackReason:     s.RollbackReason,
		ReopenedBy:         s.ReopenedBy,
		ReopenedAt:         s.ReopenedAt,
		ReopenReason:       s.ReopenReason,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		Version:            s.Version,
	}
}

// PeriodsFromDomain converts domain financial periods to responses.
func PeriodsFromDomain(periods []*domain.FinancialPeriod) []*PeriodResponse {
	result := make([]*PeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = PeriodFromDomain(p)
	}
	return result
}

// ClosingRunResponse reports the steps a closing run went through.
type ClosingRunResponse struct {
	Period         *PeriodResponse         `json:"period"`
	ClosingEntries []*JournalEntryResponse `json:"closing_entries"`
	Steps          []string                `json:"steps"`
}

// ClosingRunFromDomain converts a closing result to response.
func ClosingRunFromDomain(r *usecase.ClosingResult) *ClosingRunResponse {
	resp := &ClosingRunResponse{
		ClosingEntries: JournalEntriesFromDomain(r.ClosingEntries),
		Steps:          make([]string, len(r.Steps)),
	}
	if r.Period != nil {
		resp.Period = PeriodFromDomain(r.Period)
	}
	for i, s := range r.Steps {
		resp.Steps[i] = string(s)
	}
	return resp
}

// BalanceResponse represents an account balance in one currency.
type BalanceResponse struct {
	AccountID   string          `json:"account_id"`
	Currency    string          `json:"currency"`
	DebitTotal  decimal.Decimal `json:"debit_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
	Balance     decimal.Decimal `json:"balance"`
	Version     int64           `json:"version"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BalancesFromDomain converts domain balances to responses.
func BalancesFromDomain(balances []*domain.AccountBalance) []*BalanceResponse {
	result := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = &BalanceResponse{
			AccountID:   b.AccountID,
			Currency:    b.Currency,
			DebitTotal:  b.DebitTotal,
			CreditTotal: b.CreditTotal,
			Balance:     b.Balance,
			Version:     b.Version,
			UpdatedAt:   b.UpdatedAt,
		}
	}
	return result
}

// PointBalanceResponse is the balance of an account in one currency, optionally as of a date.
type PointBalanceResponse struct {
	AccountID string          `json:"account_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      string          `json:"as_of,omitempty"`
}

// TrialBalanceRowResponse is one account line of a trial balance.
type TrialBalanceRowResponse struct {
	AccountID string          `json:"account_id"`
	Currency  string          `json:"currency"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse represents a trial balance in API responses.
type TrialBalanceResponse struct {
	AsOf     string                    `json:"as_of"`
	Balanced bool                      `json:"balanced"`
	Rows     []TrialBalanceRowResponse `json:"rows"`
	Totals   []CurrencyTotalsResponse  `json:"totals"`
}

// TrialBalanceFromDomain converts a domain trial balance to response.
func TrialBalanceFromDomain(tb *domain.TrialBalance) *TrialBalanceResponse {
	rows := make([]TrialBalanceRowResponse, len(tb.Rows))
	for i, r := range tb.Rows {
		rows[i] = TrialBalanceRowResponse{
			AccountID: r.AccountID,
			Currency:  r.Currency,
			Debit:     r.Debit,
			Credit:    r.Credit,
			Balance:   r.Balance,
		}
	}

	totals := TotalsFromDomain(tb.Totals)
	balanced := true
	for _, t := range totals {
		balanced = balanced && t.Balanced
	}

	return &TrialBalanceResponse{
		AsOf:     tb.AsOf.Format(DateLayout),
		Balanced: balanced,
		Rows:     rows,
		Totals:   totals,
	}
}

// MismatchResponse is an account balance that disagrees with its postings.
type MismatchResponse struct {
	AccountID  string          `json:"account_id"`
	Currency   string          `json:"currency"`
	Recorded   decimal.Decimal `json:"recorded"`
	Calculated decimal.Decimal `json:"calculated"`
	Difference decimal.Decimal `json:"difference"`
}

// ConsistencyResponse represents a ledger consistency report.
type ConsistencyResponse struct {
	Status      string                   `json:"status"`
	Consistent  bool                     `json:"consistent"`
	CheckedAt   time.Time                `json:"checked_at"`
	AccountRows int                      `json:"account_rows"`
	Totals      []CurrencyTotalsResponse `json:"totals"`
	Mismatches  []MismatchResponse       `json:"mismatches,omitempty"`
	Unbalanced  []string                 `json:"unbalanced_currencies,omitempty"`
}

// ConsistencyFromDomain converts a consistency report to response.
func ConsistencyFromDomain(r *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:      "consistent",
		Consistent:  r.Consistent,
		CheckedAt:   r.CheckedAt,
		AccountRows: r.AccountRows,
		Totals:      TotalsFromDomain(r.Totals),
		Unbalanced:  r.Unbalanced,
	}
	if !r.Consistent {
		resp.Status = "inconsistent"
	}
	for _, m := range r.Mismatches {
		resp.Mismatches = append(resp.Mismatches, MismatchResponse{
			AccountID:  m.AccountID,
			Currency:   m.Currency,
			Recorded:   m.Recorded,
			Calculated: m.Calculated,
			Difference: m.Difference(),
		})
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

// AuditLogResponse represents one audit trail row.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit rows to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		out[i] = AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			Reason:       l.Reason,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return out
}

// EventResponse represents a recorded domain event.
type EventResponse struct {
	ID            string         `json:"id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
	Published     bool           `json:"published"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
}

// EventsFromDomain converts outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []EventResponse {
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = EventResponse{
			ID:            e.ID,
			EventType:     e.EventType,
			AggregateType: e.AggregateType,
			AggregateID:   e.AggregateID,
			Payload:       e.Payload,
			CreatedAt:     e.CreatedAt,
			Published:     e.Published,
			PublishedAt:   e.PublishedAt,
		}
	}
	return out
}

// ChartResponse is the resolved chart of accounts.
type ChartResponse struct {
	Roles   map[string]string `json:"roles"`
	Nominal []string          `json:"nominal"`
}
