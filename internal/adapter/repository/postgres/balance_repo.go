package postgres

import (
	"context"
	"fmt"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/infrastructure/postgres/generated"
	"github.com/iho/glcore/internal/usecase"
)

// AccountBalanceRepository implements usecase.AccountBalanceRepository.
type AccountBalanceRepository struct {
	queries *generated.Queries
}

// NewAccountBalanceRepository creates a new AccountBalanceRepository.
func NewAccountBalanceRepository(db generated.DBTX) *AccountBalanceRepository {
	return &AccountBalanceRepository{queries: generated.New(db)}
}

// GetForUpdate locks the existing balances among keys in a stable order.
func (r *AccountBalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, keys []domain.BalanceKey) ([]*domain.AccountBalance, error) {
	if len(keys) == 0 {
		return []*domain.AccountBalance{}, nil
	}

	accountIDs := make([]string, 0, len(keys))
	currencies := make([]string, 0, len(keys))
	for _, k := range keys {
		accountIDs = append(accountIDs, k.AccountID)
		currencies = append(currencies, k.Currency)
	}

	rows, err := queriesFor(tx).GetAccountBalancesForUpdate(ctx, generated.GetAccountBalancesForUpdateParams{
		AccountIds: accountIDs,
		Currencies: currencies,
	})
	if err != nil {
		return nil, err
	}

	return rowsToBalances(rows), nil
}

// Save inserts a new balance (version 0) or updates one whose version matches.
// A concurrent insert of the same key surfaces as a concurrent modification.
func (r *AccountBalanceRepository) Save(ctx context.Context, tx usecase.Transaction, balance *domain.AccountBalance) error {
	queries := queriesFor(tx)

	var (
		rows int64
		err  error
	)
	if balance.Version == 0 {
		rows, err = queries.InsertAccountBalance(ctx, generated.InsertAccountBalanceParams{
			AccountID:   balance.AccountID,
			Currency:    balance.Currency,
			DebitTotal:  decimalToNumeric(balance.DebitTotal),
			CreditTotal: decimalToNumeric(balance.CreditTotal),
			Balance:     decimalToNumeric(balance.Balance),
			UpdatedAt:   timeToPgTimestamptz(balance.UpdatedAt),
		})
	} else {
		rows, err = queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
			AccountID:   balance.AccountID,
			Currency:    balance.Currency,
			Version:     balance.Version,
			DebitTotal:  decimalToNumeric(balance.DebitTotal),
			CreditTotal: decimalToNumeric(balance.CreditTotal),
			Balance:     decimalToNumeric(balance.Balance),
			UpdatedAt:   timeToPgTimestamptz(balance.UpdatedAt),
		})
	}
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: balance %s/%s", domain.ErrConcurrentModification, balance.AccountID, balance.Currency)
	}

	balance.Version++
	return nil
}

// GetByAccount returns every currency balance of accountID.
func (r *AccountBalanceRepository) GetByAccount(ctx context.Context, accountID string) ([]*domain.AccountBalance, error) {
	rows, err := r.queries.GetAccountBalancesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return rowsToBalances(rows), nil
}

// List returns all balances.
func (r *AccountBalanceRepository) List(ctx context.Context) ([]*domain.AccountBalance, error) {
	rows, err := r.queries.ListAccountBalances(ctx)
	if err != nil {
		return nil, err
	}
	return rowsToBalances(rows), nil
}

func rowsToBalances(rows []generated.AccountBalance) []*domain.AccountBalance {
	balances := make([]*domain.AccountBalance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, &domain.AccountBalance{
			AccountID:   row.AccountID,
			Currency:    row.Currency,
			DebitTotal:  numericToDecimal(row.DebitTotal),
			CreditTotal: numericToDecimal(row.CreditTotal),
			Balance:     numericToDecimal(row.Balance),
			Version:     row.Version,
			UpdatedAt:   row.UpdatedAt.Time,
		})
	}
	return balances
}
