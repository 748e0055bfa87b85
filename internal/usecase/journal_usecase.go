package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
)

// JournalUseCase drives journal entries through their approval and posting lifecycle.
type JournalUseCase struct {
	Deps
	accounts AccountResolver
}

// NewJournalUseCase creates a new JournalUseCase. accounts supplies the
// rounding account for entries balanced within tolerance.
func NewJournalUseCase(deps Deps, accounts AccountResolver) *JournalUseCase {
	return &JournalUseCase{Deps: deps, accounts: accounts}
}

// LineInput describes one debit or credit leg.
type LineInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Currency    string
	IsDebit     bool
	Description string
	Reference   string
}

// CreateJournalEntryInput represents input for creating a journal entry.
type CreateJournalEntryInput struct {
	Number            string
	EntryDate         time.Time
	Description       string
	Type              domain.JournalEntryType
	Reference         string
	SourceDocument    string
	FinancialPeriodID string
	ModuleSource      string
	Notes             string
	CreatedBy         string
	Lines             []LineInput
}

// CreateJournalEntry creates a draft entry, optionally with its initial lines.
func (uc *JournalUseCase) CreateJournalEntry(ctx context.Context, input CreateJournalEntryInput) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry

	err := uc.inTx(ctx, input.CreatedBy, func(ctx context.Context, uow *unitOfWork) error {
		now := time.Now().UTC()

		e, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
			ID:                uc.IDGen.Generate(),
			Number:            input.Number,
			EntryDate:         input.EntryDate,
			Description:       input.Description,
			Type:              input.Type,
			Reference:         input.Reference,
			SourceDocument:    input.SourceDocument,
			FinancialPeriodID: input.FinancialPeriodID,
			ModuleSource:      input.ModuleSource,
			Notes:             input.Notes,
			CreatedBy:         uow.actor.ID,
		}, now)
		if err != nil {
			return err
		}

		for _, li := range input.Lines {
			if _, err := uc.addLine(e, li, now); err != nil {
				return err
			}
		}

		if err := uc.Repos.Entries.Create(ctx, uow.tx, e); err != nil {
			return err
		}

		uow.record(e.PullEvents()...)
		uow.audit(domain.AuditActionEntryCreate, domain.AggregateTypeJournalEntry, e.ID(), "", nil, e.State())
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.JournalEntriesCreated.Inc()
	}
	uc.logger().Info().
		Str("journal_entry_id", entry.ID()).
		Str("number", entry.Number()).
		Str("module_source", entry.ModuleSource()).
		Msg("journal entry created")

	return entry, nil
}

func (uc *JournalUseCase) addLine(e *domain.JournalEntry, li LineInput, now time.Time) (domain.JournalEntryLine, error) {
	amount, err := domain.NewMoney(li.Amount, li.Currency)
	if err != nil {
		return domain.JournalEntryLine{}, err
	}
	return e.AddLine(domain.AddLineParams{
		ID:          uc.IDGen.Generate(),
		AccountID:   li.AccountID,
		Amount:      amount,
		IsDebit:     li.IsDebit,
		Description: li.Description,
		Reference:   li.Reference,
	}, now)
}

// AddLine appends a leg to a draft entry.
func (uc *JournalUseCase) AddLine(ctx context.Context, entryID string, input LineInput) (domain.JournalEntryLine, error) {
	var line domain.JournalEntryLine

	err := uc.mutate(ctx, entryID, "", func(ctx context.Context, uow *unitOfWork, e *domain.JournalEntry) error {
		l, err := uc.addLine(e, input, time.Now().UTC())
		if err != nil {
			return err
		}
		line = l
		uow.audit(domain.AuditActionEntryAddLine, domain.AggregateTypeJournalEntry, e.ID(), "", nil, l)
		return nil
	})

	return line, err
}

// RemoveLine removes a leg from a draft entry.
func (uc *JournalUseCase) RemoveLine(ctx context.Context, entryID, lineID string) (*domain.JournalEntry, error) {
	return uc.transition(ctx, entryID, "", domain.AuditActionEntryDelLine, "", func(e *domain.JournalEntry, now time.Time) error {
		return e.RemoveLine(lineID, now)
	})
}

// SubmitForApproval moves a balanced draft to pending.
func (uc *JournalUseCase) SubmitForApproval(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return uc.transition(ctx, entryID, "", domain.AuditActionEntrySubmit, "submitted", func(e *domain.JournalEntry, now time.Time) error {
		return e.SubmitForApproval(uc.BalanceTolerance, now)
	})
}

// Approve accepts a pending entry.
func (uc *JournalUseCase) Approve(ctx context.Context, entryID, approvedBy string) (*domain.JournalEntry, error) {
	return uc.transition(ctx, entryID, approvedBy, domain.AuditActionEntryApprove, "approved", func(e *domain.JournalEntry, now time.Time) error {
		return e.Approve(approvedBy, now)
	})
}

// Reject refuses a pending entry.
func (uc *JournalUseCase) Reject(ctx context.Context, entryID, rejectedBy, reason string) (*domain.JournalEntry, error) {
	return uc.transition(ctx, entryID, rejectedBy, domain.AuditActionEntryReject, "rejected", func(e *domain.JournalEntry, now time.Time) error {
		return e.Reject(rejectedBy, reason, now)
	})
}

// Post commits an approved entry and applies it to account balances in the
// same transaction. If any balance cannot be written nothing is committed.
func (uc *JournalUseCase) Post(ctx context.Context, entryID, postedBy string) (*domain.JournalEntry, error) {
	start := time.Now()

	entry, err := uc.transitionWithTx(ctx, entryID, postedBy, domain.AuditActionEntryPost, "posted",
		func(ctx context.Context, uow *unitOfWork, e *domain.JournalEntry, now time.Time) error {
			period, err := uc.periodForPosting(ctx, uow.tx, e.FinancialPeriodID(), e.EntryDate(), e.EntryType())
			if err != nil {
				return err
			}
			if err := e.Post(postedBy, period, uc.BalanceTolerance, now); err != nil {
				return err
			}
			return uc.postToLedger(ctx, uow.tx, e, uc.accounts)
		})

	if uc.Metrics != nil {
		uc.Metrics.PostingDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			uc.Metrics.PostingErrors.WithLabelValues(errorLabel(err)).Inc()
		}
	}

	return entry, err
}

// ReverseInput represents input for reversing a posted entry.
type ReverseInput struct {
	Number    string // defaults to the original number with an "-R" suffix
	Reason    string
	PostedBy  string
	EntryDate *time.Time // defaults to the original entry date
}

// Reverse creates and posts the mirror of a posted entry, links both and marks
// the original reversed, all in one transaction.
func (uc *JournalUseCase) Reverse(ctx context.Context, entryID string, input ReverseInput) (*domain.JournalEntry, error) {
	var reversal *domain.JournalEntry

	err := uc.inTx(ctx, input.PostedBy, func(ctx context.Context, uow *unitOfWork) error {
		original, err := uc.Repos.Entries.GetByIDForUpdate(ctx, uow.tx, entryID)
		if err != nil {
			return err
		}
		before := original.State()

		date := original.EntryDate()
		periodID := original.FinancialPeriodID()
		if input.EntryDate != nil && !input.EntryDate.Equal(date) {
			date = *input.EntryDate
			periodID = ""
		}

		period, err := uc.periodForPosting(ctx, uow.tx, periodID, date, domain.JournalEntryTypeReversing)
		if err != nil {
			return err
		}

		number := input.Number
		if number == "" {
			number = original.Number() + "-R"
		}

		now := time.Now().UTC()
		r, err := original.CreateReversal(domain.ReversalParams{
			ID:        uc.IDGen.Generate(),
			Number:    number,
			Reason:    input.Reason,
			PostedBy:  input.PostedBy,
			EntryDate: date,
			Tolerance: uc.BalanceTolerance,
			NewLineID: uc.IDGen.Generate,
		}, period, now)
		if err != nil {
			return err
		}

		if err := uc.Repos.Entries.Create(ctx, uow.tx, r); err != nil {
			return err
		}
		if err := uc.postToLedger(ctx, uow.tx, r, uc.accounts); err != nil {
			return err
		}
		if err := uc.Repos.Entries.Update(ctx, uow.tx, original); err != nil {
			return err
		}

		uow.record(r.PullEvents()...)
		uow.record(original.PullEvents()...)
		uow.audit(domain.AuditActionEntryCreate, domain.AggregateTypeJournalEntry, r.ID(), input.Reason, nil, r.State())
		uow.audit(domain.AuditActionEntryReverse, domain.AggregateTypeJournalEntry, original.ID(), input.Reason, before, original.State())
		reversal = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.JournalEntriesReversed.Inc()
	}
	uc.logger().Info().
		Str("journal_entry_id", entryID).
		Str("reversal_journal_entry_id", reversal.ID()).
		Str("reason", input.Reason).
		Msg("journal entry reversed")

	return reversal, nil
}

// GetJournalEntry retrieves an entry by ID.
func (uc *JournalUseCase) GetJournalEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return uc.Repos.Entries.GetByID(ctx, id)
}

// GetJournalEntryByNumber retrieves an entry by its human readable number.
func (uc *JournalUseCase) GetJournalEntryByNumber(ctx context.Context, number string) (*domain.JournalEntry, error) {
	return uc.Repos.Entries.GetByNumber(ctx, number)
}

// ListJournalEntries lists entries matching filter.
func (uc *JournalUseCase) ListJournalEntries(ctx context.Context, filter JournalEntryFilter) ([]*domain.JournalEntry, error) {
	filter.Limit = clampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.Repos.Entries.List(ctx, filter)
}

func (uc *JournalUseCase) transition(
	ctx context.Context,
	entryID, actor string,
	action domain.AuditAction,
	metricLabel string,
	fn func(e *domain.JournalEntry, now time.Time) error,
) (*domain.JournalEntry, error) {
	return uc.transitionWithTx(ctx, entryID, actor, action, metricLabel,
		func(_ context.Context, _ *unitOfWork, e *domain.JournalEntry, now time.Time) error {
			return fn(e, now)
		})
}

func (uc *JournalUseCase) transitionWithTx(
	ctx context.Context,
	entryID, actor string,
	action domain.AuditAction,
	metricLabel string,
	fn func(ctx context.Context, uow *unitOfWork, e *domain.JournalEntry, now time.Time) error,
) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry

	err := uc.mutate(ctx, entryID, actor, func(ctx context.Context, uow *unitOfWork, e *domain.JournalEntry) error {
		before := e.State()
		if err := fn(ctx, uow, e, time.Now().UTC()); err != nil {
			return err
		}
		reason := ""
		if action == domain.AuditActionEntryReject {
			reason = e.Notes()
		}
		uow.audit(action, domain.AggregateTypeJournalEntry, e.ID(), reason, before, e.State())
		entry = e
		return nil
	})
	if err != nil {
		uc.logger().Warn().Err(err).
			Str("journal_entry_id", entryID).
			Str("action", string(action)).
			Msg("journal entry transition refused")
		return nil, err
	}

	if uc.Metrics != nil && metricLabel != "" {
		uc.Metrics.JournalEntryTransitions.WithLabelValues(metricLabel).Inc()
	}
	uc.logger().Info().
		Str("journal_entry_id", entry.ID()).
		Str("number", entry.Number()).
		Str("status", string(entry.Status())).
		Msg("journal entry updated")

	return entry, nil
}

// mutate loads the entry under lock, applies fn and persists the result with
// the entry's pending events.
func (uc *JournalUseCase) mutate(
	ctx context.Context,
	entryID, actor string,
	fn func(ctx context.Context, uow *unitOfWork, e *domain.JournalEntry) error,
) error {
	return uc.inTx(ctx, actor, func(ctx context.Context, uow *unitOfWork) error {
		e, err := uc.Repos.Entries.GetByIDForUpdate(ctx, uow.tx, entryID)
		if err != nil {
			return err
		}
		if err := fn(ctx, uow, e); err != nil {
			return err
		}
		if err := uc.Repos.Entries.Update(ctx, uow.tx, e); err != nil {
			return err
		}
		uow.record(e.PullEvents()...)
		return nil
	})
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return "invalid_state_transition"
	case errors.Is(err, domain.ErrImbalancedEntry):
		return "imbalanced_entry"
	case errors.Is(err, domain.ErrInsufficientLines):
		return "insufficient_lines"
	case errors.Is(err, domain.ErrPeriodClosed):
		return "period_closed"
	case errors.Is(err, domain.ErrEntryDateOutsidePeriod):
		return "entry_date_outside_period"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "concurrent_modification"
	case domain.IsNotFound(err):
		return "not_found"
	default:
		return "internal"
	}
}
