package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// FinancialPeriodRepository implements usecase.FinancialPeriodRepository.
type FinancialPeriodRepository struct {
	store *Store
}

// NewFinancialPeriodRepository creates a new FinancialPeriodRepository.
func NewFinancialPeriodRepository(store *Store) *FinancialPeriodRepository {
	return &FinancialPeriodRepository{store: store}
}

// Create stores a new period.
func (r *FinancialPeriodRepository) Create(_ context.Context, tx usecase.Transaction, period *domain.FinancialPeriod) error {
	d, err := txData(tx)
	if err != nil {
		return err
	}

	s := period.State()
	for _, existing := range d.periods {
		if existing.PeriodCode == s.PeriodCode {
			return fmt.Errorf("%w: %s", domain.ErrDuplicatePeriodCode, s.PeriodCode)
		}
	}
	d.periods[s.ID] = s
	return nil
}

// Update stores period if the stored version matches.
func (r *FinancialPeriodRepository) Update(_ context.Context, tx usecase.Transaction, period *domain.FinancialPeriod) error {
	d, err := txData(tx)
	if err != nil {
		return err
	}

	stored, ok := d.periods[period.ID()]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPeriodNotFound, period.ID())
	}
	if stored.Version != period.Version() {
		return fmt.Errorf("%w: financial period %s", domain.ErrConcurrentModification, period.ID())
	}

	s := period.State()
	s.Version++
	d.periods[s.ID] = s
	period.AdvanceVersion()
	return nil
}

// GetByID retrieves a period.
func (r *FinancialPeriodRepository) GetByID(_ context.Context, id string) (*domain.FinancialPeriod, error) {
	var (
		s  domain.FinancialPeriodState
		ok bool
	)
	r.store.read(func(d *dataset) { s, ok = d.periods[id] })
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPeriodNotFound, id)
	}
	return domain.RestoreFinancialPeriod(s), nil
}

// GetByIDForUpdate retrieves a period inside tx.
func (r *FinancialPeriodRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.FinancialPeriod, error) {
	d, err := txData(tx)
	if err != nil {
		return nil, err
	}
	s, ok := d.periods[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPeriodNotFound, id)
	}
	return domain.RestoreFinancialPeriod(s), nil
}

// GetByIDForShare is GetByIDForUpdate; memory transactions are already exclusive.
func (r *FinancialPeriodRepository) GetByIDForShare(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancialPeriod, error) {
	return r.GetByIDForUpdate(ctx, tx, id)
}

// FindByDateForShare returns the regular period containing date.
func (r *FinancialPeriodRepository) FindByDateForShare(_ context.Context, tx usecase.Transaction, date time.Time) (*domain.FinancialPeriod, error) {
	d, err := txData(tx)
	if err != nil {
		return nil, err
	}
	for _, s := range d.periods {
		p := domain.RestoreFinancialPeriod(s)
		if !p.IsAdjustmentPeriod() && p.Contains(date) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no period contains %s", domain.ErrPeriodNotFound, date.Format(time.DateOnly))
}

// FindOverlapping returns periods sharing at least one day with [start, end].
func (r *FinancialPeriodRepository) FindOverlapping(_ context.Context, tx usecase.Transaction, start, end time.Time) ([]*domain.FinancialPeriod, error) {
	d, err := txData(tx)
	if err != nil {
		return nil, err
	}
	var out []*domain.FinancialPeriod
	for _, s := range d.periods {
		if !s.EndDate.Before(start) && !end.Before(s.StartDate) {
			out = append(out, domain.RestoreFinancialPeriod(s))
		}
	}
	return out, nil
}

// List returns periods ordered by start date.
func (r *FinancialPeriodRepository) List(_ context.Context, limit, offset int) ([]*domain.FinancialPeriod, error) {
	var states []domain.FinancialPeriodState
	r.store.read(func(d *dataset) {
		for _, s := range d.periods {
			states = append(states, s)
		}
	})
	sort.Slice(states, func(i, j int) bool {
		if !states[i].StartDate.Equal(states[j].StartDate) {
			return states[i].StartDate.Before(states[j].StartDate)
		}
		return states[i].PeriodCode < states[j].PeriodCode
	})

	out := make([]*domain.FinancialPeriod, 0, len(states))
	for i, s := range states {
		if i < offset {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, domain.RestoreFinancialPeriod(s))
	}
	return out, nil
}
