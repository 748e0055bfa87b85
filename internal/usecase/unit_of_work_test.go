package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
	"github.com/iho/glcore/internal/usecase/mocks"
)

type postingMocks struct {
	tx       *mocks.MockTransaction
	txm      *mocks.MockTransactionManager
	entries  *mocks.MockJournalEntryRepository
	periods  *mocks.MockFinancialPeriodRepository
	balances *mocks.MockAccountBalanceRepository
	postings *mocks.MockLedgerPostingRepository
	outbox   *mocks.MockOutboxRepository
	dispatch *mocks.MockEventDispatcher
}

func newPostingMocks(ctrl *gomock.Controller) *postingMocks {
	return &postingMocks{
		tx:       mocks.NewMockTransaction(ctrl),
		txm:      mocks.NewMockTransactionManager(ctrl),
		entries:  mocks.NewMockJournalEntryRepository(ctrl),
		periods:  mocks.NewMockFinancialPeriodRepository(ctrl),
		balances: mocks.NewMockAccountBalanceRepository(ctrl),
		postings: mocks.NewMockLedgerPostingRepository(ctrl),
		outbox:   mocks.NewMockOutboxRepository(ctrl),
		dispatch: mocks.NewMockEventDispatcher(ctrl),
	}
}

func (m *postingMocks) useCase() *usecase.JournalUseCase {
	return usecase.NewJournalUseCase(usecase.Deps{
		TxManager: m.txm,
		Repos: usecase.Repositories{
			Entries:  m.entries,
			Periods:  m.periods,
			Balances: m.balances,
			Postings: m.postings,
			Outbox:   m.outbox,
		},
		IDGen:      &seqIDGenerator{},
		Dispatcher: m.dispatch,
	}, nil)
}

func (m *postingMocks) expectPeriod(period *domain.FinancialPeriod, times int) {
	m.periods.EXPECT().GetByIDForShare(gomock.Any(), m.tx, period.ID()).Return(period, nil).Times(times)
	m.periods.EXPECT().FindOverlapping(gomock.Any(), m.tx, gomock.Any(), gomock.Any()).
		Return([]*domain.FinancialPeriod{period}, nil).Times(times)
}

func approvedEntry(t *testing.T, period *domain.FinancialPeriod) *domain.JournalEntry {
	t.Helper()
	now := time.Now().UTC()
	e, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
		ID:                "je-1",
		Number:            "JE-1",
		EntryDate:         period.StartDate(),
		FinancialPeriodID: period.ID(),
	}, now)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	for i, leg := range []struct {
		account string
		debit   bool
	}{{"cash", true}, {"revenue", false}} {
		if _, err := e.AddLine(domain.AddLineParams{
			ID:        []string{"l1", "l2"}[i],
			AccountID: leg.account,
			Amount:    domain.MustMoney("100", "NGN"),
			IsDebit:   leg.debit,
		}, now); err != nil {
			t.Fatalf("add line: %v", err)
		}
	}
	if err := e.SubmitForApproval(decimal.Zero, now); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := e.Approve("approver", now); err != nil {
		t.Fatalf("approve: %v", err)
	}
	e.PullEvents()
	return e
}

func mockPeriod(t *testing.T) *domain.FinancialPeriod {
	t.Helper()
	p, err := domain.NewFinancialPeriod(domain.NewFinancialPeriodParams{
		ID:         "p-1",
		PeriodCode: "2024-03",
		StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}, time.Now())
	if err != nil {
		t.Fatalf("new period: %v", err)
	}
	return p
}

func TestPost_BalanceWriteFailureCommitsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPostingMocks(ctrl)
	period := mockPeriod(t)
	saveErr := errors.New("balance row locked out")

	m.txm.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entries.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "je-1").Return(approvedEntry(t, period), nil)
	m.expectPeriod(period, 1)
	m.balances.EXPECT().GetForUpdate(gomock.Any(), m.tx, gomock.Len(2)).Return(nil, nil)
	m.balances.EXPECT().Save(gomock.Any(), m.tx, gomock.Any()).Return(saveErr)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	// No Update, outbox write, Commit or Dispatch may happen.

	_, err := m.useCase().Post(context.Background(), "je-1", "poster")
	if !errors.Is(err, saveErr) {
		t.Fatalf("expected balance error, got %v", err)
	}
}

func TestPost_CommitFailureDispatchesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPostingMocks(ctrl)
	period := mockPeriod(t)
	commitErr := errors.New("serialization failure")

	m.txm.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entries.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "je-1").Return(approvedEntry(t, period), nil)
	m.expectPeriod(period, 1)
	m.balances.EXPECT().GetForUpdate(gomock.Any(), m.tx, gomock.Any()).Return(nil, nil)
	m.balances.EXPECT().Save(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	m.postings.EXPECT().CreateBatch(gomock.Any(), m.tx, gomock.Len(2)).Return(nil)
	m.entries.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, e *domain.OutboxEvent) error {
			if e.EventType != string(domain.EventTypeJournalEntryPosted) {
				t.Fatalf("unexpected outbox event %s", e.EventType)
			}
			return nil
		})
	m.tx.EXPECT().Commit(gomock.Any()).Return(commitErr)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := m.useCase().Post(context.Background(), "je-1", "poster")
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestPost_DispatchesOnceAfterCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPostingMocks(ctrl)
	period := mockPeriod(t)

	m.txm.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entries.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "je-1").Return(approvedEntry(t, period), nil)
	m.expectPeriod(period, 1)
	m.balances.EXPECT().GetForUpdate(gomock.Any(), m.tx, gomock.Any()).Return(nil, nil)
	m.balances.EXPECT().Save(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	m.postings.EXPECT().CreateBatch(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.entries.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	commit := m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.dispatch.EXPECT().Dispatch(gomock.Any(), gomock.Len(1)).After(commit)

	entry, err := m.useCase().Post(context.Background(), "je-1", "poster")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status() != domain.JournalEntryStatusPosted {
		t.Fatalf("expected posted, got %s", entry.Status())
	}
}

type countingRetrier struct {
	attempts int
}

func (r *countingRetrier) Retry(_ context.Context, op func() error) error {
	var err error
	for r.attempts = 1; r.attempts <= 3; r.attempts++ {
		if err = op(); !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
	}
	return err
}

func TestRetrierReloadsAggregateEachAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPostingMocks(ctrl)
	period := mockPeriod(t)

	m.txm.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(2)
	m.entries.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "je-1").DoAndReturn(
		func(context.Context, usecase.Transaction, string) (*domain.JournalEntry, error) {
			return approvedEntry(t, period), nil
		}).Times(2)
	m.expectPeriod(period, 2)
	m.balances.EXPECT().GetForUpdate(gomock.Any(), m.tx, gomock.Any()).Return(nil, nil).Times(2)
	gomock.InOrder(
		m.balances.EXPECT().Save(gomock.Any(), m.tx, gomock.Any()).Return(domain.ErrConcurrentModification),
		m.balances.EXPECT().Save(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2),
	)
	m.postings.EXPECT().CreateBatch(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.entries.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).Times(2)
	m.dispatch.EXPECT().Dispatch(gomock.Any(), gomock.Len(1)).Times(1)

	retrier := &countingRetrier{}
	uc := m.useCase()
	uc.Retrier = retrier

	if _, err := uc.Post(context.Background(), "je-1", "poster"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retrier.attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", retrier.attempts)
	}
}

func TestPost_LogsThroughConfiguredLogger(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPostingMocks(ctrl)
	period := mockPeriod(t)

	m.txm.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entries.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "je-1").Return(approvedEntry(t, period), nil)
	m.expectPeriod(period, 1)
	m.balances.EXPECT().GetForUpdate(gomock.Any(), m.tx, gomock.Any()).Return(nil, nil)
	m.balances.EXPECT().Save(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	m.postings.EXPECT().CreateBatch(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.entries.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.dispatch.EXPECT().Dispatch(gomock.Any(), gomock.Any())

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	uc := m.useCase()
	uc.Logger = &logger

	if _, err := uc.Post(context.Background(), "je-1", "poster"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"message":"journal entry updated"`) || !strings.Contains(out, `"journal_entry_id":"je-1"`) {
		t.Fatalf("expected transition log line, got %q", out)
	}
}

func TestPost_RefusesDateInsideAnotherClosedPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPostingMocks(ctrl)
	period := mockPeriod(t)

	closed := domain.RestoreFinancialPeriod(domain.FinancialPeriodState{
		ID:            "p-closed",
		PeriodCode:    "2024-03-A",
		StartDate:     period.StartDate(),
		EndDate:       period.EndDate(),
		IsClosed:      true,
		ClosingStatus: domain.ClosingStatusCompleted,
		Version:       5,
	})

	m.txm.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entries.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "je-1").Return(approvedEntry(t, period), nil)
	m.periods.EXPECT().GetByIDForShare(gomock.Any(), m.tx, "p-1").Return(period, nil)
	m.periods.EXPECT().FindOverlapping(gomock.Any(), m.tx, period.StartDate(), period.StartDate()).
		Return([]*domain.FinancialPeriod{period, closed}, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := m.useCase().Post(context.Background(), "je-1", "poster")
	if !errors.Is(err, domain.ErrPeriodClosed) {
		t.Fatalf("expected period closed, got %v", err)
	}
}
