package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/infrastructure/postgres/generated"
	"github.com/iho/glcore/internal/usecase"
)

// FinancialPeriodRepository implements usecase.FinancialPeriodRepository.
type FinancialPeriodRepository struct {
	queries *generated.Queries
}

// NewFinancialPeriodRepository creates a new FinancialPeriodRepository.
func NewFinancialPeriodRepository(db generated.DBTX) *FinancialPeriodRepository {
	return &FinancialPeriodRepository{queries: generated.New(db)}
}

// Create inserts a new period.
func (r *FinancialPeriodRepository) Create(ctx context.Context, tx usecase.Transaction, period *domain.FinancialPeriod) error {
	s := period.State()

	err := queriesFor(tx).CreateFinancialPeriod(ctx, generated.CreateFinancialPeriodParams{
		ID:                 s.ID,
		PeriodCode:         s.PeriodCode,
		Name:               s.Name,
		StartDate:          timeToPgDate(s.StartDate),
		EndDate:            timeToPgDate(s.EndDate),
		FiscalYear:         int32(s.FiscalYear),
		FiscalMonth:        int32(s.FiscalMonth),
		IsAdjustmentPeriod: s.IsAdjustmentPeriod,
		IsClosed:           s.IsClosed,
		ClosingStatus:      string(s.ClosingStatus),
		ValidationErrors:   nonNilStrings(s.ValidationErrors),
		CreatedAt:          timeToPgTimestamptz(s.CreatedAt),
		UpdatedAt:          timeToPgTimestamptz(s.UpdatedAt),
		Version:            s.Version,
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicatePeriodCode, s.PeriodCode)
	}

	return err
}

// Update persists the period if the stored version matches.
func (r *FinancialPeriodRepository) Update(ctx context.Context, tx usecase.Transaction, period *domain.FinancialPeriod) error {
	s := period.State()

	rows, err := queriesFor(tx).UpdateFinancialPeriod(ctx, generated.UpdateFinancialPeriodParams{
		ID:                 s.ID,
		Version:            s.Version,
		IsClosed:           s.IsClosed,
		ClosedDate:         timePtrToPgTimestamptz(s.ClosedDate),
		ClosedBy:           s.ClosedBy,
		ClosingStatus:      string(s.ClosingStatus),
		ValidationErrors:   nonNilStrings(s.ValidationErrors),
		ClosingStartedAt:   timePtrToPgTimestamptz(s.ClosingStartedAt),
		ClosingCompletedAt: timePtrToPgTimestamptz(s.ClosingCompletedAt),
		ClosingInitiatedBy: s.ClosingInitiatedBy,
		RollbackReason:     s.RollbackReason,
		ReopenedBy:         s.ReopenedBy,
		ReopenedAt:         timePtrToPgTimestamptz(s.ReopenedAt),
		ReopenReason:       s.ReopenReason,
		UpdatedAt:          timeToPgTimestamptz(s.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: financial period %s", domain.ErrConcurrentModification, s.ID)
	}

	period.AdvanceVersion()
	return nil
}

// GetByID retrieves a period.
func (r *FinancialPeriodRepository) GetByID(ctx context.Context, id string) (*domain.FinancialPeriod, error) {
	row, err := r.queries.GetFinancialPeriodByID(ctx, id)
	if err != nil {
		return nil, periodNotFound(err, id)
	}
	return rowToFinancialPeriod(row), nil
}

// GetByIDForUpdate takes an exclusive row lock inside tx.
func (r *FinancialPeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancialPeriod, error) {
	row, err := queriesFor(tx).GetFinancialPeriodByIDForUpdate(ctx, id)
	if err != nil {
		return nil, periodNotFound(err, id)
	}
	return rowToFinancialPeriod(row), nil
}

// GetByIDForShare takes a shared row lock inside tx.
func (r *FinancialPeriodRepository) GetByIDForShare(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancialPeriod, error) {
	row, err := queriesFor(tx).GetFinancialPeriodByIDForShare(ctx, id)
	if err != nil {
		return nil, periodNotFound(err, id)
	}
	return rowToFinancialPeriod(row), nil
}

// FindByDateForShare returns the regular period containing date.
func (r *FinancialPeriodRepository) FindByDateForShare(ctx context.Context, tx usecase.Transaction, date time.Time) (*domain.FinancialPeriod, error) {
	row, err := queriesFor(tx).FindFinancialPeriodByDateForShare(ctx, timeToPgDate(date))
	if err != nil {
		return nil, periodNotFound(err, "no period contains "+date.Format(time.DateOnly))
	}
	return rowToFinancialPeriod(row), nil
}

// FindOverlapping returns periods sharing at least one day with [start, end].
func (r *FinancialPeriodRepository) FindOverlapping(ctx context.Context, tx usecase.Transaction, start, end time.Time) ([]*domain.FinancialPeriod, error) {
	rows, err := queriesFor(tx).FindOverlappingFinancialPeriods(ctx, generated.FindOverlappingFinancialPeriodsParams{
		EndDate:   timeToPgDate(end),
		StartDate: timeToPgDate(start),
	})
	if err != nil {
		return nil, err
	}

	return rowsToFinancialPeriods(rows), nil
}

// List returns periods ordered by start date.
func (r *FinancialPeriodRepository) List(ctx context.Context, limit, offset int) ([]*domain.FinancialPeriod, error) {
	rows, err := r.queries.ListFinancialPeriods(ctx, generated.ListFinancialPeriodsParams{
		Limit:  pageLimit(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToFinancialPeriods(rows), nil
}

func periodNotFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrPeriodNotFound, what)
	}
	return err
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func rowsToFinancialPeriods(rows []generated.FinancialPeriod) []*domain.FinancialPeriod {
	periods := make([]*domain.FinancialPeriod, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, rowToFinancialPeriod(row))
	}
	return periods
}

func rowToFinancialPeriod(row generated.FinancialPeriod) *domain.FinancialPeriod {
	var validationErrors []string
	if len(row.ValidationErrors) > 0 {
		validationErrors = row.ValidationErrors
	}

	return domain.RestoreFinancialPeriod(domain.FinancialPeriodState{
		ID:                 row.ID,
		PeriodCode:         row.PeriodCode,
		Name:               row.Name,
		StartDate:          row.StartDate.Time,
		EndDate:            row.EndDate.Time,
		FiscalYear:         int(row.FiscalYear),
		FiscalMonth:        int(row.FiscalMonth),
		IsAdjustmentPeriod: row.IsAdjustmentPeriod,
		IsClosed:           row.IsClosed,
		ClosedDate:         pgTimestamptzToPtr(row.ClosedDate),
		ClosedBy:           row.ClosedBy,
		ClosingStatus:      domain.ClosingStatus(row.ClosingStatus),
		ValidationErrors:   validationErrors,
		ClosingStartedAt:   pgTimestamptzToPtr(row.ClosingStartedAt),
		ClosingCompletedAt: pgTimestamptzToPtr(row.ClosingCompletedAt),
		ClosingInitiatedBy: row.ClosingInitiatedBy,
		RollbackReason:     row.RollbackReason,
		ReopenedBy:         row.ReopenedBy,
		ReopenedAt:         pgTimestamptzToPtr(row.ReopenedAt),
		ReopenReason:       row.ReopenReason,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
		Version:            row.Version,
	})
}
