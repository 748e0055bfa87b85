package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInconsistentLedger is returned when ledger-wide debits and credits disagree.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: total debits do not equal total credits")

// AccountBalance is the running balance of one account in one currency.
// Only posting changes it.
type AccountBalance struct {
	AccountID   string
	Currency    string
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
	Balance     decimal.Decimal // DebitTotal - CreditTotal
	Version     int64
	UpdatedAt   time.Time
}

// NewAccountBalance returns an empty balance.
func NewAccountBalance(accountID, currency string, now time.Time) *AccountBalance {
	return &AccountBalance{
		AccountID:   accountID,
		Currency:    currency,
		DebitTotal:  decimal.Zero,
		CreditTotal: decimal.Zero,
		Balance:     decimal.Zero,
		UpdatedAt:   now,
	}
}

// Apply folds a ledger posting into the balance.
func (b *AccountBalance) Apply(p LedgerPosting, now time.Time) error {
	if p.AccountID != b.AccountID {
		return fmt.Errorf("posting account %s does not match balance account %s", p.AccountID, b.AccountID)
	}
	if p.Currency != b.Currency {
		return fmt.Errorf("%w: posting %s, balance %s", ErrCurrencyMismatch, p.Currency, b.Currency)
	}

	if p.Amount.IsPositive() {
		b.DebitTotal = b.DebitTotal.Add(p.Amount)
	} else {
		b.CreditTotal = b.CreditTotal.Sub(p.Amount)
	}
	b.Balance = b.DebitTotal.Sub(b.CreditTotal)
	b.UpdatedAt = now

	return nil
}

// Money returns the balance as Money.
func (b *AccountBalance) Money() Money {
	return Money{amount: b.Balance, currency: b.Currency}
}

// BalanceKey identifies an account balance row.
type BalanceKey struct {
	AccountID string
	Currency  string
}

// BalanceKeys returns the distinct (account, currency) pairs touched by
// postings, sorted so that balances are always locked in the same order.
func BalanceKeys(postings []LedgerPosting) []BalanceKey {
	seen := make(map[BalanceKey]bool, len(postings))
	keys := make([]BalanceKey, 0, len(postings))
	for _, p := range postings {
		k := p.Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].AccountID != keys[j].AccountID {
			return keys[i].AccountID < keys[j].AccountID
		}
		return keys[i].Currency < keys[j].Currency
	})
	return keys
}

// LedgerPosting is the immutable record of one posted line. Rounding
// postings have no LineID.
type LedgerPosting struct {
	ID             string
	JournalEntryID string
	LineID         string
	AccountID      string
	Currency       string
	Amount         decimal.Decimal // positive debit, negative credit
	EntryDate      time.Time
	PostedAt       time.Time
}

// Key returns the balance row the posting belongs to.
func (p LedgerPosting) Key() BalanceKey {
	return BalanceKey{AccountID: p.AccountID, Currency: p.Currency}
}

// NewLedgerPostings returns one posting per line of a posted entry. A
// currency group balanced only within tolerance gets one more posting that
// books the residual to roundingAccountID, so the ledger itself always
// balances exactly.
func NewLedgerPostings(entry *JournalEntry, roundingAccountID string, newID func() string) ([]LedgerPosting, error) {
	postedAt := entry.state.UpdatedAt
	if entry.state.PostedDate != nil {
		postedAt = *entry.state.PostedDate
	}

	postings := make([]LedgerPosting, 0, len(entry.state.Lines)+1)
	for _, l := range entry.state.Lines {
		postings = append(postings, LedgerPosting{
			ID:             newID(),
			JournalEntryID: entry.state.ID,
			LineID:         l.ID,
			AccountID:      l.AccountID,
			Currency:       l.Amount.Currency(),
			Amount:         l.SignedAmount(),
			EntryDate:      entry.state.EntryDate,
			PostedAt:       postedAt,
		})
	}

	for _, t := range entry.Totals() {
		diff := t.Difference()
		if diff.IsZero() {
			continue
		}
		if roundingAccountID == "" {
			return nil, fmt.Errorf("%w: rounding account for %s difference %s on %s",
				ErrAccountResolutionFailed, t.Currency, diff.String(), entry.state.Number)
		}
		postings = append(postings, LedgerPosting{
			ID:             newID(),
			JournalEntryID: entry.state.ID,
			AccountID:      roundingAccountID,
			Currency:       t.Currency,
			Amount:         diff.Neg(),
			EntryDate:      entry.state.EntryDate,
			PostedAt:       postedAt,
		})
	}

	return postings, nil
}

// TrialBalanceRow is one account/currency line of a trial balance.
type TrialBalanceRow struct {
	AccountID string
	Currency  string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal
}

// TrialBalance lists every account balance as of a date with per-currency totals.
type TrialBalance struct {
	AsOf   time.Time
	Rows   []TrialBalanceRow
	Totals []CurrencyTotals
}

// BuildTrialBalance aggregates rows and asserts debits equal credits per currency.
// The trial balance is returned even when the assertion fails.
func BuildTrialBalance(asOf time.Time, rows []TrialBalanceRow) (*TrialBalance, error) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Currency != rows[j].Currency {
			return rows[i].Currency < rows[j].Currency
		}
		return rows[i].AccountID < rows[j].AccountID
	})

	byCurrency := make(map[string]*CurrencyTotals)
	var currencies []string
	for _, r := range rows {
		t, ok := byCurrency[r.Currency]
		if !ok {
			t = &CurrencyTotals{Currency: r.Currency, Debits: decimal.Zero, Credits: decimal.Zero}
			byCurrency[r.Currency] = t
			currencies = append(currencies, r.Currency)
		}
		t.Debits = t.Debits.Add(r.Debit)
		t.Credits = t.Credits.Add(r.Credit)
	}

	tb := &TrialBalance{AsOf: asOf, Rows: rows}
	var err error
	for _, c := range currencies {
		t := *byCurrency[c]
		tb.Totals = append(tb.Totals, t)
		if err == nil && !t.Difference().IsZero() {
			err = fmt.Errorf("%w: %s debits %s, credits %s", ErrInconsistentLedger,
				c, t.Debits.StringFixed(2), t.Credits.StringFixed(2))
		}
	}

	return tb, err
}

// AccountTotals are summed debits and credits of one account in one currency.
type AccountTotals struct {
	AccountID string
	Currency  string
	Debits    decimal.Decimal
	Credits   decimal.Decimal
}

// Net returns debits minus credits.
func (a AccountTotals) Net() decimal.Decimal {
	return a.Debits.Sub(a.Credits)
}

// TrialBalanceRow presents the net in the debit or credit column.
func (a AccountTotals) TrialBalanceRow() TrialBalanceRow {
	net := a.Net()
	row := TrialBalanceRow{
		AccountID: a.AccountID,
		Currency:  a.Currency,
		Debit:     decimal.Zero,
		Credit:    decimal.Zero,
		Balance:   net,
	}
	if net.IsPositive() {
		row.Debit = net
	} else {
		row.Credit = net.Neg()
	}
	return row
}
