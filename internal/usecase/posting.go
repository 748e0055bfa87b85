package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/glcore/internal/domain"
)

// postToLedger folds a freshly posted entry into account balances and the
// posting journal. Balances are locked in BalanceKeys order. A residual
// difference left by the balance tolerance is booked to the rounding account.
func (d Deps) postToLedger(ctx context.Context, tx Transaction, entry *domain.JournalEntry, accounts AccountResolver) error {
	if entry.Status() != domain.JournalEntryStatusPosted {
		return fmt.Errorf("journal entry %s is %s, only posted entries touch balances", entry.ID(), entry.Status())
	}

	var rounding string
	if entry.NeedsRounding() {
		if accounts == nil {
			return fmt.Errorf("%w: no account resolver for rounding on %s", domain.ErrAccountResolutionFailed, entry.Number())
		}
		id, err := accounts.GetRoundingAccountID(ctx)
		if err != nil {
			return fmt.Errorf("%w: rounding: %v", domain.ErrAccountResolutionFailed, err)
		}
		rounding = id
	}

	postings, err := domain.NewLedgerPostings(entry, rounding, d.IDGen.Generate)
	if err != nil {
		return err
	}
	keys := domain.BalanceKeys(postings)

	locked, err := d.Repos.Balances.GetForUpdate(ctx, tx, keys)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	balances := make(map[domain.BalanceKey]*domain.AccountBalance, len(keys))
	for _, b := range locked {
		balances[domain.BalanceKey{AccountID: b.AccountID, Currency: b.Currency}] = b
	}
	for _, k := range keys {
		if _, ok := balances[k]; !ok {
			balances[k] = domain.NewAccountBalance(k.AccountID, k.Currency, now)
		}
	}

	for _, p := range postings {
		if err := balances[p.Key()].Apply(p, now); err != nil {
			return err
		}
	}

	for _, k := range keys {
		if err := d.Repos.Balances.Save(ctx, tx, balances[k]); err != nil {
			return fmt.Errorf("update balance %s/%s: %w", k.AccountID, k.Currency, err)
		}
	}

	return d.Repos.Postings.CreateBatch(ctx, tx, postings)
}

// periodForPosting returns the period an entry posts into, share-locked for
// the rest of the transaction so a concurrent close step waits for the post.
// Every other period covering the entry date is share-locked too and must
// accept the posting.
func (d Deps) periodForPosting(ctx context.Context, tx Transaction, periodID string, date time.Time, entryType domain.JournalEntryType) (*domain.FinancialPeriod, error) {
	var (
		period *domain.FinancialPeriod
		err    error
	)
	if periodID != "" {
		period, err = d.Repos.Periods.GetByIDForShare(ctx, tx, periodID)
	} else {
		period, err = d.Repos.Periods.FindByDateForShare(ctx, tx, date)
	}
	if err != nil {
		return nil, err
	}

	u := date.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	covering, err := d.Repos.Periods.FindOverlapping(ctx, tx, day, day)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureOpenAcross(covering, period.ID(), date, entryType); err != nil {
		return nil, err
	}

	return period, nil
}
