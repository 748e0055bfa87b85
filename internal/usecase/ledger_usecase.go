package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
)

// ErrInconsistentLedger is returned when the ledger is not balanced.
var ErrInconsistentLedger = domain.ErrInconsistentLedger

// LedgerUseCase answers balance and ledger-wide queries. It never mutates balances.
type LedgerUseCase struct {
	Deps
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(deps Deps) *LedgerUseCase {
	return &LedgerUseCase{Deps: deps}
}

// GetAccountBalance returns the current balance of an account in currency.
// An account with no postings in currency has a zero balance.
func (uc *LedgerUseCase) GetAccountBalance(ctx context.Context, accountID, currency string) (domain.Money, error) {
	currency = strings.ToUpper(currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return domain.Money{}, err
	}

	balances, err := uc.Repos.Balances.GetByAccount(ctx, accountID)
	if err != nil {
		return domain.Money{}, err
	}
	for _, b := range balances {
		if b.Currency == currency {
			return b.Money(), nil
		}
	}

	return domain.ZeroMoney(currency), nil
}

// GetAccountBalances returns the balances of an account in every currency it holds.
func (uc *LedgerUseCase) GetAccountBalances(ctx context.Context, accountID string) ([]*domain.AccountBalance, error) {
	balances, err := uc.Repos.Balances.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountBalanceNotFound, accountID)
	}
	return balances, nil
}

// GetAccountBalanceAt returns the balance from postings dated on or before asOf.
func (uc *LedgerUseCase) GetAccountBalanceAt(ctx context.Context, accountID, currency string, asOf time.Time) (domain.Money, error) {
	currency = strings.ToUpper(currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return domain.Money{}, err
	}

	amount, err := uc.Repos.Postings.BalanceAt(ctx, accountID, currency, asOf)
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(amount, currency)
}

// GenerateTrialBalance lists every account's net as of asOf and asserts that
// total debits equal total credits per currency. On ErrInconsistentLedger the
// trial balance is still returned for inspection.
func (uc *LedgerUseCase) GenerateTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	start := time.Now()
	defer func() {
		if uc.Metrics != nil {
			uc.Metrics.TrialBalanceDuration.Observe(time.Since(start).Seconds())
		}
	}()

	totals, err := uc.Repos.Postings.Totals(ctx, &asOf)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.TrialBalanceRow, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, t.TrialBalanceRow())
	}

	tb, err := domain.BuildTrialBalance(asOf, rows)
	if err != nil {
		uc.reportInconsistency(err)
	}

	return tb, err
}

// BalanceMismatch is an account balance that disagrees with its postings.
type BalanceMismatch struct {
	AccountID  string
	Currency   string
	Recorded   decimal.Decimal
	Calculated decimal.Decimal
}

// Difference returns recorded minus calculated.
func (m BalanceMismatch) Difference() decimal.Decimal {
	return m.Recorded.Sub(m.Calculated)
}

// ConsistencyReport is the result of CheckConsistency.
type ConsistencyReport struct {
	Consistent  bool
	CheckedAt   time.Time
	Totals      []domain.CurrencyTotals
	Mismatches  []BalanceMismatch
	Unbalanced  []string // currencies whose postings do not net to zero
	AccountRows int
}

// CheckConsistency verifies that materialised balances equal the sum of their
// postings and that postings net to zero in every currency.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	balances, err := uc.Repos.Balances.List(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := uc.Repos.Postings.Totals(ctx, nil)
	if err != nil {
		return nil, err
	}

	calculated := make(map[domain.BalanceKey]decimal.Decimal, len(totals))
	for _, t := range totals {
		calculated[domain.BalanceKey{AccountID: t.AccountID, Currency: t.Currency}] = t.Net()
	}

	report := &ConsistencyReport{
		CheckedAt:   time.Now().UTC(),
		Totals:      sumByCurrency(totals),
		AccountRows: len(balances),
	}

	seen := make(map[domain.BalanceKey]bool, len(balances))
	for _, b := range balances {
		k := domain.BalanceKey{AccountID: b.AccountID, Currency: b.Currency}
		seen[k] = true
		if calc := calculated[k]; !calc.Equal(b.Balance) {
			report.Mismatches = append(report.Mismatches, BalanceMismatch{
				AccountID: b.AccountID, Currency: b.Currency, Recorded: b.Balance, Calculated: calc,
			})
		}
	}
	for k, calc := range calculated {
		if !seen[k] && !calc.IsZero() {
			report.Mismatches = append(report.Mismatches, BalanceMismatch{
				AccountID: k.AccountID, Currency: k.Currency, Recorded: decimal.Zero, Calculated: calc,
			})
		}
	}
	sort.Slice(report.Mismatches, func(i, j int) bool {
		if report.Mismatches[i].AccountID != report.Mismatches[j].AccountID {
			return report.Mismatches[i].AccountID < report.Mismatches[j].AccountID
		}
		return report.Mismatches[i].Currency < report.Mismatches[j].Currency
	})

	for _, c := range report.Totals {
		if !c.Difference().IsZero() {
			report.Unbalanced = append(report.Unbalanced, c.Currency)
		}
	}

	report.Consistent = len(report.Mismatches) == 0 && len(report.Unbalanced) == 0
	if !report.Consistent {
		err := fmt.Errorf("%w: %d balance mismatches, unbalanced currencies %v",
			ErrInconsistentLedger, len(report.Mismatches), report.Unbalanced)
		uc.reportInconsistency(err)
		return report, err
	}

	return report, nil
}

func (uc *LedgerUseCase) reportInconsistency(err error) {
	if !errors.Is(err, ErrInconsistentLedger) {
		return
	}
	if uc.Metrics != nil {
		uc.Metrics.LedgerInconsistencies.Inc()
	}
	uc.logger().Error().Err(err).Msg("ledger consistency check failed")
}

// AuditTrail lists audit rows matching filter, newest first.
func (uc *LedgerUseCase) AuditTrail(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if uc.Repos.Audit == nil {
		return []*domain.AuditLog{}, nil
	}
	filter.Limit = clampLimit(filter.Limit)
	return uc.Repos.Audit.List(ctx, filter)
}

// EventHistory lists the outbox events recorded for one aggregate, oldest first.
func (uc *LedgerUseCase) EventHistory(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return uc.Repos.Outbox.GetByAggregate(ctx, aggregateType, aggregateID, clampLimit(limit), offset)
}
