package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Fields, "; ")
}

// Validate checks struct tags on a decoded request.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return &ValidationError{Fields: fields}
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use %s)", s, DateLayout)
	}
	return t, nil
}

// LineRequest is one debit or credit line.
type LineRequest struct {
	AccountID   string          `json:"account_id" validate:"required,max=64"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" validate:"required,len=3,alpha"`
	IsDebit     bool            `json:"is_debit"`
	Description string          `json:"description,omitempty" validate:"max=1024"`
	Reference   string          `json:"reference,omitempty" validate:"max=255"`
}

// ToUseCaseInput converts to use case input.
func (r *LineRequest) ToUseCaseInput() usecase.LineInput {
	return usecase.LineInput{
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Currency:    strings.ToUpper(r.Currency),
		IsDebit:     r.IsDebit,
		Description: r.Description,
		Reference:   r.Reference,
	}
}

// CreateJournalEntryRequest represents a request to create a draft journal entry.
type CreateJournalEntryRequest struct {
	Number            string        `json:"number" validate:"required,max=64"`
	EntryDate         string        `json:"entry_date" validate:"required,datetime=2006-01-02"`
	Description       string        `json:"description" validate:"required,max=1024"`
	EntryType         string        `json:"entry_type,omitempty" validate:"omitempty,oneof=standard adjusting closing reversing opening recurring"`
	Reference         string        `json:"reference,omitempty"`
	SourceDocument    string        `json:"source_document,omitempty"`
	FinancialPeriodID string        `json:"financial_period_id,omitempty"`
	ModuleSource      string        `json:"module_source,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	CreatedBy         string        `json:"created_by,omitempty"`
	Lines             []LineRequest `json:"lines,omitempty" validate:"dive"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateJournalEntryRequest) ToUseCaseInput() (usecase.CreateJournalEntryInput, error) {
	entryDate, err := ParseDate(r.EntryDate)
	if err != nil {
		return usecase.CreateJournalEntryInput{}, err
	}

	entryType := domain.JournalEntryType(r.EntryType)
	if entryType == "" {
		entryType = domain.JournalEntryTypeStandard
	}

	lines := make([]usecase.LineInput, len(r.Lines))
	for i := range r.Lines {
		lines[i] = r.Lines[i].ToUseCaseInput()
	}

	return usecase.CreateJournalEntryInput{
		Number:            r.Number,
		EntryDate:         entryDate,
		Description:       r.Description,
		Type:              entryType,
		Reference:         r.Reference,
		SourceDocument:    r.SourceDocument,
		FinancialPeriodID: r.FinancialPeriodID,
		ModuleSource:      r.ModuleSource,
		Notes:             r.Notes,
		CreatedBy:         r.CreatedBy,
		Lines:             lines,
	}, nil
}

// ActorRequest carries the optional acting user of a transition. The
// X-Actor-ID header is used when it is empty.
type ActorRequest struct {
	By string `json:"by,omitempty" validate:"max=128"`
}

// RejectRequest represents a request to reject a pending entry.
type RejectRequest struct {
	By     string `json:"by,omitempty" validate:"max=128"`
	Reason string `json:"reason" validate:"required,max=1024"`
}

// ReverseRequest represents a request to reverse a posted entry.
type ReverseRequest struct {
	Number    string `json:"number,omitempty" validate:"max=64"`
	Reason    string `json:"reason" validate:"required,max=1024"`
	By        string `json:"by,omitempty" validate:"max=128"`
	EntryDate string `json:"entry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ToUseCaseInput converts to use case input. postedBy is the resolved actor.
func (r *ReverseRequest) ToUseCaseInput(postedBy string) (usecase.ReverseInput, error) {
	in := usecase.ReverseInput{
		Number:   r.Number,
		Reason:   r.Reason,
		PostedBy: postedBy,
	}
	if r.EntryDate != "" {
		d, err := ParseDate(r.EntryDate)
		if err != nil {
			return usecase.ReverseInput{}, err
		}
		in.EntryDate = &d
	}
	return in, nil
}

// CreatePeriodRequest represents a request to create a financial period.
type CreatePeriodRequest struct {
	PeriodCode         string `json:"period_code" validate:"required,max=32"`
	Name               string `json:"name" validate:"required,max=255"`
	StartDate          string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate            string `json:"end_date" validate:"required,datetime=2006-01-02"`
	FiscalYear         int    `json:"fiscal_year" validate:"required,min=1900,max=9999"`
	FiscalMonth        int    `json:"fiscal_month" validate:"min=0,max=13"`
	IsAdjustmentPeriod bool   `json:"is_adjustment_period"`
	CreatedBy          string `json:"created_by,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePeriodRequest) ToUseCaseInput() (usecase.CreatePeriodInput, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return usecase.CreatePeriodInput{}, err
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return usecase.CreatePeriodInput{}, err
	}

	return usecase.CreatePeriodInput{
		PeriodCode:         r.PeriodCode,
		Name:               r.Name,
		StartDate:          start,
		EndDate:            end,
		FiscalYear:         r.FiscalYear,
		FiscalMonth:        r.FiscalMonth,
		IsAdjustmentPeriod: r.IsAdjustmentPeriod,
		CreatedBy:          r.CreatedBy,
	}, nil
}

// ValidationErrorsRequest records problems found while validating a closing period.
type ValidationErrorsRequest struct {
	Errors []string `json:"errors" validate:"required,min=1,dive,required"`
}

// ReasonRequest carries the reason of a rollback or reopen.
type ReasonRequest struct {
	By     string `json:"by,omitempty" validate:"max=128"`
	Reason string `json:"reason" validate:"required,max=1024"`
}

// RemapRoleRequest points a ledger role at another account.
type RemapRoleRequest struct {
	AccountID string `json:"account_id" validate:"required,max=64"`
}

// NominalAccountsRequest replaces the accounts zeroed at period close.
type NominalAccountsRequest struct {
	AccountIDs []string `json:"account_ids" validate:"required,min=1,dive,required,max=64"`
}
