package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
)

func TestCreateJournalEntryRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateJournalEntryRequest{
		Number:      "JE-1",
		EntryDate:   "2024-03-15",
		Description: "Office rent",
		Lines: []LineRequest{
			{AccountID: "6100", Amount: decimal.RequireFromString("1200"), Currency: "usd", IsDebit: true},
			{AccountID: "1000", Amount: decimal.RequireFromString("1200"), Currency: "USD"},
		},
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Type != domain.JournalEntryTypeStandard {
		t.Fatalf("expected default entry type standard, got %q", got.Type)
	}
	if !got.EntryDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected entry date %v", got.EntryDate)
	}
	if len(got.Lines) != 2 || got.Lines[0].Currency != "USD" || !got.Lines[0].IsDebit {
		t.Fatalf("unexpected lines %+v", got.Lines)
	}
	if !got.Lines[1].Amount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("unexpected amount %s", got.Lines[1].Amount)
	}
}

func TestCreateJournalEntryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request CreateJournalEntryRequest
		wantErr bool
	}{
		{
			name:    "valid",
			request: CreateJournalEntryRequest{Number: "JE-1", EntryDate: "2024-03-15", Description: "rent"},
		},
		{
			name:    "missing number",
			request: CreateJournalEntryRequest{EntryDate: "2024-03-15", Description: "rent"},
			wantErr: true,
		},
		{
			name:    "bad date",
			request: CreateJournalEntryRequest{Number: "JE-1", EntryDate: "15/03/2024", Description: "rent"},
			wantErr: true,
		},
		{
			name:    "unknown entry type",
			request: CreateJournalEntryRequest{Number: "JE-1", EntryDate: "2024-03-15", Description: "rent", EntryType: "bogus"},
			wantErr: true,
		},
		{
			name: "line currency too long",
			request: CreateJournalEntryRequest{
				Number: "JE-1", EntryDate: "2024-03-15", Description: "rent",
				Lines:  []LineRequest{{AccountID: "1000", Currency: "USDT"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.request)
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) || len(verr.Fields) == 0 {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestReverseRequest_ToUseCaseInput(t *testing.T) {
	req := &ReverseRequest{Number: "JE-1-R", Reason: "duplicate"}

	got, err := req.ToUseCaseInput("controller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EntryDate != nil || got.PostedBy != "controller" || got.Reason != "duplicate" {
		t.Fatalf("unexpected input %+v", got)
	}

	req.EntryDate = "2024-04-01"
	got, err = req.ToUseCaseInput("controller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EntryDate == nil || got.EntryDate.Month() != time.April {
		t.Fatalf("expected entry date override, got %+v", got.EntryDate)
	}
}

func TestCreatePeriodRequest_ToUseCaseInput(t *testing.T) {
	req := &CreatePeriodRequest{
		PeriodCode:  "2024-03",
		Name:        "March 2024",
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
		FiscalYear:  2024,
		FiscalMonth: 3,
	}
	if err := Validate(req); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EndDate.Day() != 31 || got.FiscalMonth != 3 || got.PeriodCode != "2024-03" {
		t.Fatalf("unexpected input %+v", got)
	}

	req.FiscalYear = 0
	if err := Validate(req); err == nil {
		t.Fatalf("expected fiscal year to be required")
	}
}

func TestValidationErrorsRequest_RejectsEmptyList(t *testing.T) {
	if err := Validate(&ValidationErrorsRequest{}); err == nil {
		t.Fatalf("expected empty error list to fail")
	}
	if err := Validate(&ValidationErrorsRequest{Errors: []string{""}}); err == nil {
		t.Fatalf("expected blank error message to fail")
	}
	if err := Validate(&ValidationErrorsRequest{Errors: []string{"unposted drafts"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-02-30"); err == nil {
		t.Fatalf("expected invalid calendar date to fail")
	}
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Location() != time.UTC {
		t.Fatalf("expected UTC date, got %v", d.Location())
	}
}
