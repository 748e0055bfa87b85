package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/infrastructure/postgres/generated"
	"github.com/iho/glcore/internal/usecase"
)

// LedgerPostingRepository implements usecase.LedgerPostingRepository.
type LedgerPostingRepository struct {
	queries *generated.Queries
}

// NewLedgerPostingRepository creates a new LedgerPostingRepository.
func NewLedgerPostingRepository(db generated.DBTX) *LedgerPostingRepository {
	return &LedgerPostingRepository{queries: generated.New(db)}
}

// CreateBatch copies postings into the journal in one round trip.
func (r *LedgerPostingRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, postings []domain.LedgerPosting) error {
	if len(postings) == 0 {
		return nil
	}

	params := make([]generated.CreateLedgerPostingsParams, 0, len(postings))
	for _, p := range postings {
		params = append(params, generated.CreateLedgerPostingsParams{
			ID:             p.ID,
			JournalEntryID: p.JournalEntryID,
			LineID:         stringToPgText(p.LineID),
			AccountID:      p.AccountID,
			Currency:       p.Currency,
			Amount:         decimalToNumeric(p.Amount),
			EntryDate:      timeToPgDate(p.EntryDate),
			PostedAt:       timeToPgTimestamptz(p.PostedAt),
		})
	}

	n, err := queriesFor(tx).CreateLedgerPostings(ctx, params)
	if err != nil {
		return err
	}
	if n != int64(len(postings)) {
		return fmt.Errorf("copied %d of %d ledger postings", n, len(postings))
	}

	return nil
}

// BalanceAt sums the signed postings of an account and currency up to asOf.
func (r *LedgerPostingRepository) BalanceAt(ctx context.Context, accountID, currency string, asOf time.Time) (decimal.Decimal, error) {
	n, err := r.queries.GetAccountBalanceAt(ctx, generated.GetAccountBalanceAtParams{
		AccountID: accountID,
		Currency:  currency,
		AsOf:      timeToPgDate(asOf),
	})
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(n), nil
}

// Totals sums postings per account and currency up to asOf, or all when nil.
func (r *LedgerPostingRepository) Totals(ctx context.Context, asOf *time.Time) ([]domain.AccountTotals, error) {
	rows, err := r.queries.SumPostingsByAccount(ctx, timePtrToPgDate(asOf))
	if err != nil {
		return nil, err
	}

	totals := make([]domain.AccountTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.AccountTotals{
			AccountID: row.AccountID,
			Currency:  row.Currency,
			Debits:    numericToDecimal(row.Debits),
			Credits:   numericToDecimal(row.Credits),
		})
	}
	return totals, nil
}

// TotalsBetween sums postings dated within [from, to] inside tx.
func (r *LedgerPostingRepository) TotalsBetween(ctx context.Context, tx usecase.Transaction, from, to time.Time) ([]domain.AccountTotals, error) {
	rows, err := queriesFor(tx).SumPostingsBetween(ctx, generated.SumPostingsBetweenParams{
		FromDate: timeToPgDate(from),
		ToDate:   timeToPgDate(to),
	})
	if err != nil {
		return nil, err
	}

	totals := make([]domain.AccountTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.AccountTotals{
			AccountID: row.AccountID,
			Currency:  row.Currency,
			Debits:    numericToDecimal(row.Debits),
			Credits:   numericToDecimal(row.Credits),
		})
	}
	return totals, nil
}
