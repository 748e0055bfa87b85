package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// LedgerPostingRepository implements usecase.LedgerPostingRepository.
type LedgerPostingRepository struct {
	store *Store
}

// NewLedgerPostingRepository creates a new LedgerPostingRepository.
func NewLedgerPostingRepository(store *Store) *LedgerPostingRepository {
	return &LedgerPostingRepository{store: store}
}

// CreateBatch appends postings.
func (r *LedgerPostingRepository) CreateBatch(_ context.Context, tx usecase.Transaction, postings []domain.LedgerPosting) error {
	d, err := txData(tx)
	if err != nil {
		return err
	}
	d.postings = append(d.postings, postings...)
	return nil
}

// BalanceAt sums the account's postings dated on or before asOf.
func (r *LedgerPostingRepository) BalanceAt(_ context.Context, accountID, currency string, asOf time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	cutoff := endOfDay(asOf)
	r.store.read(func(d *dataset) {
		for _, p := range d.postings {
			if p.AccountID == accountID && p.Currency == currency && !p.EntryDate.After(cutoff) {
				sum = sum.Add(p.Amount)
			}
		}
	})
	return sum, nil
}

// Totals sums postings per account and currency.
func (r *LedgerPostingRepository) Totals(_ context.Context, asOf *time.Time) ([]domain.AccountTotals, error) {
	var totals []domain.AccountTotals
	r.store.read(func(d *dataset) {
		totals = sumPostings(d.postings, func(p domain.LedgerPosting) bool {
			return asOf == nil || !p.EntryDate.After(endOfDay(*asOf))
		})
	})
	return totals, nil
}

// TotalsBetween sums postings dated within [from, to].
func (r *LedgerPostingRepository) TotalsBetween(_ context.Context, tx usecase.Transaction, from, to time.Time) ([]domain.AccountTotals, error) {
	d, err := txData(tx)
	if err != nil {
		return nil, err
	}
	return sumPostings(d.postings, func(p domain.LedgerPosting) bool {
		return inDateRange(p.EntryDate, from, to)
	}), nil
}

func sumPostings(postings []domain.LedgerPosting, keep func(domain.LedgerPosting) bool) []domain.AccountTotals {
	index := make(map[domain.BalanceKey]int)
	var totals []domain.AccountTotals
	for _, p := range postings {
		if !keep(p) {
			continue
		}
		k := domain.BalanceKey{AccountID: p.AccountID, Currency: p.Currency}
		i, ok := index[k]
		if !ok {
			i = len(totals)
			index[k] = i
			totals = append(totals, domain.AccountTotals{
				AccountID: p.AccountID,
				Currency:  p.Currency,
				Debits:    decimal.Zero,
				Credits:   decimal.Zero,
			})
		}
		if p.Amount.IsPositive() {
			totals[i].Debits = totals[i].Debits.Add(p.Amount)
		} else {
			totals[i].Credits = totals[i].Credits.Sub(p.Amount)
		}
	}
	sortTotals(totals)
	return totals
}

func sortTotals(totals []domain.AccountTotals) {
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].AccountID != totals[j].AccountID {
			return totals[i].AccountID < totals[j].AccountID
		}
		return totals[i].Currency < totals[j].Currency
	})
}
