package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// AccountBalanceRepository implements usecase.AccountBalanceRepository.
type AccountBalanceRepository struct {
	store *Store
}

// NewAccountBalanceRepository creates a new AccountBalanceRepository.
func NewAccountBalanceRepository(store *Store) *AccountBalanceRepository {
	return &AccountBalanceRepository{store: store}
}

// GetForUpdate returns the stored balances among keys.
func (r *AccountBalanceRepository) GetForUpdate(_ context.Context, tx usecase.Transaction, keys []domain.BalanceKey) ([]*domain.AccountBalance, error) {
	d, err := txData(tx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.AccountBalance, 0, len(keys))
	for _, k := range keys {
		if b, ok := d.balances[k]; ok {
			out = append(out, &b)
		}
	}
	return out, nil
}

// Save inserts or version-checks and updates a balance.
func (r *AccountBalanceRepository) Save(_ context.Context, tx usecase.Transaction, balance *domain.AccountBalance) error {
	d, err := txData(tx)
	if err != nil {
		return err
	}

	k := domain.BalanceKey{AccountID: balance.AccountID, Currency: balance.Currency}
	stored, exists := d.balances[k]
	switch {
	case !exists && balance.Version != 0:
		return fmt.Errorf("%w: %s/%s", domain.ErrAccountBalanceNotFound, k.AccountID, k.Currency)
	case exists && stored.Version != balance.Version:
		return fmt.Errorf("%w: balance %s/%s", domain.ErrConcurrentModification, k.AccountID, k.Currency)
	}

	balance.Version++
	d.balances[k] = *balance
	return nil
}

// GetByAccount returns every currency balance of accountID.
func (r *AccountBalanceRepository) GetByAccount(_ context.Context, accountID string) ([]*domain.AccountBalance, error) {
	var out []*domain.AccountBalance
	r.store.read(func(d *dataset) {
		for k, b := range d.balances {
			if k.AccountID == accountID {
				out = append(out, &b)
			}
		}
	})
	sortBalances(out)
	return out, nil
}

// List returns all balances.
func (r *AccountBalanceRepository) List(_ context.Context) ([]*domain.AccountBalance, error) {
	var out []*domain.AccountBalance
	r.store.read(func(d *dataset) {
		for _, b := range d.balances {
			out = append(out, &b)
		}
	})
	sortBalances(out)
	return out, nil
}

func sortBalances(bs []*domain.AccountBalance) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].AccountID != bs[j].AccountID {
			return bs[i].AccountID < bs[j].AccountID
		}
		return bs[i].Currency < bs[j].Currency
	})
}
