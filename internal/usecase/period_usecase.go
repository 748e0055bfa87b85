package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/glcore/internal/domain"
)

// PeriodUseCase manages financial periods and each step of their closing workflow.
// Every step runs in its own transaction so a close can resume after a crash.
type PeriodUseCase struct {
	Deps
}

// NewPeriodUseCase creates a new PeriodUseCase.
func NewPeriodUseCase(deps Deps) *PeriodUseCase {
	return &PeriodUseCase{Deps: deps}
}

// CreatePeriodInput represents input for creating a financial period.
type CreatePeriodInput struct {
	PeriodCode         string
	Name               string
	StartDate          time.Time
	EndDate            time.Time
	FiscalYear         int
	FiscalMonth        int
	IsAdjustmentPeriod bool
	CreatedBy          string
}

// CreatePeriod creates an open period. Regular periods may not overlap.
func (uc *PeriodUseCase) CreatePeriod(ctx context.Context, input CreatePeriodInput) (*domain.FinancialPeriod, error) {
	var period *domain.FinancialPeriod

	err := uc.inTx(ctx, input.CreatedBy, func(ctx context.Context, uow *unitOfWork) error {
		p, err := domain.NewFinancialPeriod(domain.NewFinancialPeriodParams{
			ID:                 uc.IDGen.Generate(),
			PeriodCode:         input.PeriodCode,
			Name:               input.Name,
			StartDate:          input.StartDate,
			EndDate:            input.EndDate,
			FiscalYear:         input.FiscalYear,
			FiscalMonth:        input.FiscalMonth,
			IsAdjustmentPeriod: input.IsAdjustmentPeriod,
		}, time.Now().UTC())
		if err != nil {
			return err
		}

		if !p.IsAdjustmentPeriod() {
			overlapping, err := uc.Repos.Periods.FindOverlapping(ctx, uow.tx, p.StartDate(), p.EndDate())
			if err != nil {
				return err
			}
			for _, o := range overlapping {
				if !o.IsAdjustmentPeriod() {
					return fmt.Errorf("%w: %s", domain.ErrOverlappingPeriod, o.PeriodCode())
				}
			}
		}

		if err := uc.Repos.Periods.Create(ctx, uow.tx, p); err != nil {
			return err
		}

		uow.record(p.PullEvents()...)
		uow.audit(domain.AuditActionPeriodCreate, domain.AggregateTypeFinancialPeriod, p.ID(), "", nil, p.State())
		period = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger().Info().
		Str("financial_period_id", period.ID()).
		Str("period_code", period.PeriodCode()).
		Msg("financial period created")

	return period, nil
}

// StartClosingProcess begins closing the period.
func (uc *PeriodUseCase) StartClosingProcess(ctx context.Context, periodID, initiatedBy string) (*domain.FinancialPeriod, error) {
	return uc.transition(ctx, periodID, initiatedBy, domain.AuditActionPeriodStartClosing, "", func(p *domain.FinancialPeriod, now time.Time) error {
		return p.StartClosingProcess(initiatedBy, now)
	})
}

// SetValidationErrors records why the period cannot be closed.
func (uc *PeriodUseCase) SetValidationErrors(ctx context.Context, periodID string, errs []string) (*domain.FinancialPeriod, error) {
	return uc.transition(ctx, periodID, "", domain.AuditActionPeriodValidationFailed, "", func(p *domain.FinancialPeriod, now time.Time) error {
		return p.SetValidationErrors(errs, now)
	})
}

// CompleteValidation marks pre-close validation as passed.
func (uc *PeriodUseCase) CompleteValidation(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	return uc.transition(ctx, periodID, "", domain.AuditActionPeriodValidated, "", func(p *domain.FinancialPeriod, now time.Time) error {
		return p.CompleteValidation(now)
	})
}

// CompleteClosingEntries marks closing entries as posted.
func (uc *PeriodUseCase) CompleteClosingEntries(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	return uc.transition(ctx, periodID, "", domain.AuditActionPeriodClosingEntries, "", func(p *domain.FinancialPeriod, now time.Time) error {
		return p.CompleteClosingEntries(now)
	})
}

// Close freezes the period.
func (uc *PeriodUseCase) Close(ctx context.Context, periodID, closedBy string) (*domain.FinancialPeriod, error) {
	return uc.transition(ctx, periodID, closedBy, domain.AuditActionPeriodClose, "", func(p *domain.FinancialPeriod, now time.Time) error {
		return p.Close(closedBy, now)
	})
}

// RollBackClosingProcess abandons an unfinished close.
func (uc *PeriodUseCase) RollBackClosingProcess(ctx context.Context, periodID, reason string) (*domain.FinancialPeriod, error) {
	return uc.transition(ctx, periodID, "", domain.AuditActionPeriodRollback, reason, func(p *domain.FinancialPeriod, now time.Time) error {
		return p.RollBackClosingProcess(reason, now)
	})
}

// ReopenPeriod reopens a closed period.
func (uc *PeriodUseCase) ReopenPeriod(ctx context.Context, periodID, reopenedBy, reason string) (*domain.FinancialPeriod, error) {
	return uc.transition(ctx, periodID, reopenedBy, domain.AuditActionPeriodReopen, reason, func(p *domain.FinancialPeriod, now time.Time) error {
		return p.ReopenPeriod(reopenedBy, reason, now)
	})
}

// GetPeriod retrieves a period by ID.
func (uc *PeriodUseCase) GetPeriod(ctx context.Context, id string) (*domain.FinancialPeriod, error) {
	return uc.Repos.Periods.GetByID(ctx, id)
}

// ListPeriods lists periods ordered by start date.
func (uc *PeriodUseCase) ListPeriods(ctx context.Context, limit, offset int) ([]*domain.FinancialPeriod, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.Repos.Periods.List(ctx, limit, offset)
}

func (uc *PeriodUseCase) transition(
	ctx context.Context,
	periodID, actor string,
	action domain.AuditAction,
	reason string,
	fn func(p *domain.FinancialPeriod, now time.Time) error,
) (*domain.FinancialPeriod, error) {
	var period *domain.FinancialPeriod

	err := uc.inTx(ctx, actor, func(ctx context.Context, uow *unitOfWork) error {
		p, err := uc.mutatePeriod(ctx, uow, periodID, action, reason, fn)
		period = p
		return err
	})
	if err != nil {
		uc.logger().Warn().Err(err).
			Str("financial_period_id", periodID).
			Str("action", string(action)).
			Msg("financial period transition refused")
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.PeriodClosingTransitions.WithLabelValues(string(period.ClosingStatus())).Inc()
	}
	uc.logger().Info().
		Str("financial_period_id", period.ID()).
		Str("period_code", period.PeriodCode()).
		Str("closing_status", string(period.ClosingStatus())).
		Bool("is_closed", period.IsClosed()).
		Msg("financial period updated")

	return period, nil
}

// mutatePeriod locks the period, applies fn and persists it within uow.
func (d Deps) mutatePeriod(
	ctx context.Context,
	uow *unitOfWork,
	periodID string,
	action domain.AuditAction,
	reason string,
	fn func(p *domain.FinancialPeriod, now time.Time) error,
) (*domain.FinancialPeriod, error) {
	p, err := d.Repos.Periods.GetByIDForUpdate(ctx, uow.tx, periodID)
	if err != nil {
		return nil, err
	}

	before := p.State()
	if err := fn(p, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := d.Repos.Periods.Update(ctx, uow.tx, p); err != nil {
		return nil, err
	}

	uow.record(p.PullEvents()...)
	uow.audit(action, domain.AggregateTypeFinancialPeriod, p.ID(), reason, before, p.State())
	return p, nil
}
