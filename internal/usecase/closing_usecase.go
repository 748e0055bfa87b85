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

// ErrClosingValidationFailed is returned by RunClosing when the period failed validation.
var ErrClosingValidationFailed = errors.New("period closing validation failed")

// ClosingValidationError lists why a period cannot be closed.
type ClosingValidationError struct {
	PeriodID string
	Errors   []string
}

func (e *ClosingValidationError) Error() string {
	return fmt.Sprintf("period %s failed closing validation: %s", e.PeriodID, strings.Join(e.Errors, "; "))
}

func (e *ClosingValidationError) Unwrap() error { return ErrClosingValidationFailed }

// ClosingUseCase runs the whole closing workflow, resuming from whatever step
// the period last persisted.
type ClosingUseCase struct {
	Deps
	periods  *PeriodUseCase
	resolver AccountResolver
}

// NewClosingUseCase creates a new ClosingUseCase.
func NewClosingUseCase(deps Deps, resolver AccountResolver) *ClosingUseCase {
	return &ClosingUseCase{
		Deps:     deps,
		periods:  NewPeriodUseCase(deps),
		resolver: resolver,
	}
}

// ClosingResult describes one RunClosing call.
type ClosingResult struct {
	Period         *domain.FinancialPeriod
	ClosingEntries []*domain.JournalEntry
	Steps          []domain.ClosingStatus // statuses reached by this run, in order
}

// RunClosing drives the period to Completed. A period in ValidationFailed stops
// the run with a *ClosingValidationError; the caller rolls it back once the
// problems are fixed and calls RunClosing again.
func (uc *ClosingUseCase) RunClosing(ctx context.Context, periodID, initiatedBy string) (*ClosingResult, error) {
	result := &ClosingResult{}

	for {
		p, err := uc.Repos.Periods.GetByID(ctx, periodID)
		if err != nil {
			return result, err
		}
		result.Period = p

		switch p.ClosingStatus() {
		case domain.ClosingStatusNotStarted, domain.ClosingStatusFailed:
			p, err = uc.periods.StartClosingProcess(ctx, periodID, initiatedBy)
		case domain.ClosingStatusInitiated:
			p, err = uc.Validate(ctx, periodID)
		case domain.ClosingStatusValidationFailed:
			return result, &ClosingValidationError{PeriodID: periodID, Errors: p.ValidationErrors()}
		case domain.ClosingStatusValidated:
			var entries []*domain.JournalEntry
			p, entries, err = uc.PostClosingEntries(ctx, periodID, initiatedBy)
			result.ClosingEntries = append(result.ClosingEntries, entries...)
		case domain.ClosingStatusClosingEntriesPosted:
			p, err = uc.periods.Close(ctx, periodID, initiatedBy)
		case domain.ClosingStatusCompleted:
			return result, nil
		default:
			return result, fmt.Errorf("period %s has unknown closing status %q", periodID, p.ClosingStatus())
		}
		if err != nil {
			return result, err
		}

		result.Period = p
		result.Steps = append(result.Steps, p.ClosingStatus())
	}
}

// Validate checks an initiated period and moves it to Validated or ValidationFailed.
// The period is locked for the duration of the check.
func (uc *ClosingUseCase) Validate(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	var period *domain.FinancialPeriod

	err := uc.inTx(ctx, "", func(ctx context.Context, uow *unitOfWork) error {
		locked, err := uc.Repos.Periods.GetByIDForUpdate(ctx, uow.tx, periodID)
		if err != nil {
			return err
		}

		problems, err := uc.closingProblems(ctx, uow.tx, locked)
		if err != nil {
			return err
		}

		action := domain.AuditActionPeriodValidated
		if len(problems) > 0 {
			action = domain.AuditActionPeriodValidationFailed
		}

		period, err = uc.mutatePeriod(ctx, uow, periodID, action, strings.Join(problems, "; "),
			func(p *domain.FinancialPeriod, now time.Time) error {
				if len(problems) > 0 {
					return p.SetValidationErrors(problems, now)
				}
				return p.CompleteValidation(now)
			})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger().Info().
		Str("financial_period_id", periodID).
		Str("closing_status", string(period.ClosingStatus())).
		Strs("validation_errors", period.ValidationErrors()).
		Msg("period closing validated")

	return period, nil
}

func (uc *ClosingUseCase) closingProblems(ctx context.Context, tx Transaction, p *domain.FinancialPeriod) ([]string, error) {
	var problems []string

	unposted, err := uc.Repos.Entries.CountByDateRange(ctx, tx, p.StartDate(), p.EndDate(), []domain.JournalEntryStatus{
		domain.JournalEntryStatusDraft,
		domain.JournalEntryStatusPending,
		domain.JournalEntryStatusApproved,
	})
	if err != nil {
		return nil, err
	}
	if unposted > 0 {
		problems = append(problems, fmt.Sprintf("%d unposted journal entries dated within the period", unposted))
	}

	totals, err := uc.Repos.Postings.TotalsBetween(ctx, tx, p.StartDate(), p.EndDate())
	if err != nil {
		return nil, err
	}
	for _, c := range sumByCurrency(totals) {
		if !c.Difference().IsZero() {
			problems = append(problems, fmt.Sprintf("postings in %s do not balance: debits %s, credits %s",
				c.Currency, c.Debits.StringFixed(2), c.Credits.StringFixed(2)))
		}
	}

	return problems, nil
}

// PostClosingEntries moves the period net of every nominal account into
// retained earnings, one closing entry per currency, and marks the step done.
// Entries and the period transition commit together.
func (uc *ClosingUseCase) PostClosingEntries(ctx context.Context, periodID, postedBy string) (*domain.FinancialPeriod, []*domain.JournalEntry, error) {
	var (
		period  *domain.FinancialPeriod
		entries []*domain.JournalEntry
	)

	err := uc.inTx(ctx, postedBy, func(ctx context.Context, uow *unitOfWork) error {
		var err error
		period, err = uc.mutatePeriod(ctx, uow, periodID, domain.AuditActionPeriodClosingEntries, "",
			func(p *domain.FinancialPeriod, now time.Time) error {
				if p.ClosingStatus() != domain.ClosingStatusValidated {
					return p.CompleteClosingEntries(now)
				}
				entries, err = uc.closingEntries(ctx, uow, p, postedBy, now)
				if err != nil {
					return err
				}
				return p.CompleteClosingEntries(now)
			})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	uc.logger().Info().
		Str("financial_period_id", periodID).
		Int("closing_entries", len(entries)).
		Msg("closing entries posted")

	return period, entries, nil
}

func (uc *ClosingUseCase) closingEntries(
	ctx context.Context,
	uow *unitOfWork,
	p *domain.FinancialPeriod,
	postedBy string,
	now time.Time,
) ([]*domain.JournalEntry, error) {
	if strings.TrimSpace(postedBy) == "" {
		return nil, fmt.Errorf("%w: posted by", domain.ErrActorRequired)
	}

	retained, err := uc.resolver.GetRetainedEarningsAccountID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: retained earnings: %v", domain.ErrAccountResolutionFailed, err)
	}
	if retained == "" {
		return nil, fmt.Errorf("%w: no retained earnings account configured", domain.ErrAccountResolutionFailed)
	}
	nominalIDs, err := uc.resolver.NominalAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: nominal accounts: %v", domain.ErrAccountResolutionFailed, err)
	}
	nominal := make(map[string]bool, len(nominalIDs))
	for _, id := range nominalIDs {
		nominal[id] = true
	}

	totals, err := uc.Repos.Postings.TotalsBetween(ctx, uow.tx, p.StartDate(), p.EndDate())
	if err != nil {
		return nil, err
	}

	byCurrency := make(map[string][]domain.AccountTotals)
	for _, t := range totals {
		if nominal[t.AccountID] && !t.Net().IsZero() {
			byCurrency[t.Currency] = append(byCurrency[t.Currency], t)
		}
	}
	currencies := make([]string, 0, len(byCurrency))
	for c := range byCurrency {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	var entries []*domain.JournalEntry
	for _, currency := range currencies {
		accounts := byCurrency[currency]
		sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })

		e, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
			ID:                uc.IDGen.Generate(),
			Number:            closingEntryNumber(p, currency),
			EntryDate:         p.EndDate(),
			Description:       fmt.Sprintf("Close %s nominal accounts to retained earnings (%s)", p.PeriodCode(), currency),
			Type:              domain.JournalEntryTypeClosing,
			FinancialPeriodID: p.ID(),
			ModuleSource:      ClosingModuleSource,
			CreatedBy:         postedBy,
		}, now)
		if err != nil {
			return nil, err
		}

		sum := decimal.Zero
		for _, t := range accounts {
			net := t.Net()
			sum = sum.Add(net)
			if err := uc.addClosingLine(e, t.AccountID, net.Neg(), currency, now); err != nil {
				return nil, err
			}
		}
		if !sum.IsZero() {
			if err := uc.addClosingLine(e, retained, sum, currency, now); err != nil {
				return nil, err
			}
		}

		if err := e.SubmitForApproval(decimal.Zero, now); err != nil {
			return nil, err
		}
		if err := e.Approve(postedBy, now); err != nil {
			return nil, err
		}
		if err := e.Post(postedBy, p, decimal.Zero, now); err != nil {
			return nil, err
		}
		if err := uc.Repos.Entries.Create(ctx, uow.tx, e); err != nil {
			return nil, err
		}
		if err := uc.postToLedger(ctx, uow.tx, e, uc.resolver); err != nil {
			return nil, err
		}

		uow.record(e.PullEvents()...)
		uow.audit(domain.AuditActionEntryPost, domain.AggregateTypeJournalEntry, e.ID(), "period close", nil, e.State())
		entries = append(entries, e)
	}

	return entries, nil
}

// closingEntryNumber is unique per close of a period: the period version
// only grows, so a close after a reopen gets new numbers.
func closingEntryNumber(p *domain.FinancialPeriod, currency string) string {
	return fmt.Sprintf("CLOSE-%s-%s-%d", p.PeriodCode(), currency, p.Version())
}

// addClosingLine adds a leg whose signed amount is delta: positive debits, negative credits.
func (uc *ClosingUseCase) addClosingLine(e *domain.JournalEntry, accountID string, delta decimal.Decimal, currency string, now time.Time) error {
	amount, err := domain.NewMoney(delta.Abs(), currency)
	if err != nil {
		return err
	}
	_, err = e.AddLine(domain.AddLineParams{
		ID:          uc.IDGen.Generate(),
		AccountID:   accountID,
		Amount:      amount,
		IsDebit:     delta.IsPositive(),
		Description: "period close",
	}, now)
	return err
}

func sumByCurrency(totals []domain.AccountTotals) []domain.CurrencyTotals {
	byCurrency := make(map[string]*domain.CurrencyTotals)
	for _, t := range totals {
		c, ok := byCurrency[t.Currency]
		if !ok {
			c = &domain.CurrencyTotals{Currency: t.Currency, Debits: decimal.Zero, Credits: decimal.Zero}
			byCurrency[t.Currency] = c
		}
		c.Debits = c.Debits.Add(t.Debits)
		c.Credits = c.Credits.Add(t.Credits)
	}

	out := make([]domain.CurrencyTotals, 0, len(byCurrency))
	for _, c := range byCurrency {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
