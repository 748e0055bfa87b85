package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

func TestPostTwoLineEntryUpdatesBalances(t *testing.T) {
	env := newLedgerEnv(t)
	env.createPeriod(t, "2024-03", time.March)

	posted := env.post(t, "JE-1001", day(time.March, 10),
		debit("cash", "1000", "NGN"),
		credit("revenue", "1000", "NGN"),
	)

	assert.Equal(t, domain.JournalEntryStatusPosted, posted.Status())
	assert.Equal(t, "poster", posted.PostedBy())
	assert.NotEmpty(t, posted.FinancialPeriodID())
	assert.True(t, env.balance(t, "cash", "NGN").Equal(decimal.NewFromInt(1000)))
	assert.True(t, env.balance(t, "revenue", "NGN").Equal(decimal.NewFromInt(-1000)))
	assert.True(t, env.balance(t, "cash", "USD").IsZero())

	assert.Equal(t, []domain.EventType{
		domain.EventTypeFinancialPeriodCreated,
		domain.EventTypeJournalEntryCreated,
		domain.EventTypeJournalEntrySubmitted,
		domain.EventTypeJournalEntryApproved,
		domain.EventTypeJournalEntryPosted,
	}, env.dispatcher.types())

	outbox, err := env.outbox.GetByAggregate(context.Background(), domain.AggregateTypeJournalEntry, posted.ID(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, outbox, 4)

	audits, err := env.audit.List(context.Background(), domain.AuditFilter{ResourceID: posted.ID()})
	require.NoError(t, err)
	require.Len(t, audits, 4)
	assert.Equal(t, string(domain.AuditActionEntryPost), audits[0].Action)
	assert.Equal(t, "poster", audits[0].UserID)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.JournalEntriesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.JournalEntryTransitions.WithLabelValues("posted")))
}

func TestSubmitRejectsMixedCurrencyEntry(t *testing.T) {
	env := newLedgerEnv(t)
	env.createPeriod(t, "2024-03", time.March)

	e := env.draft(t, "JE-1002", day(time.March, 10),
		debit("cash", "1000", "USD"),
		credit("revenue", "1000", "NGN"),
	)

	_, err := env.journal.SubmitForApproval(context.Background(), e.ID())
	require.ErrorIs(t, err, domain.ErrImbalancedEntry)

	stored, err := env.journal.GetJournalEntry(context.Background(), e.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.JournalEntryStatusDraft, stored.Status())
}

func TestLinesAreAddedOneAtATime(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.createPeriod(t, "2024-03", time.March)

	e := env.draft(t, "JE-1003", day(time.March, 10))

	first, err := env.journal.AddLine(ctx, e.ID(), debit("cash", "250.50", "NGN"))
	require.NoError(t, err, "a single unbalanced line is accepted on a draft")
	_, err = env.journal.AddLine(ctx, e.ID(), debit("cash", "1", "NGN"))
	require.NoError(t, err)
	_, err = env.journal.AddLine(ctx, e.ID(), credit("revenue", "250.50", "NGN"))
	require.NoError(t, err)

	_, err = env.journal.SubmitForApproval(ctx, e.ID())
	require.ErrorIs(t, err, domain.ErrImbalancedEntry)

	stored, err := env.journal.GetJournalEntry(ctx, e.ID())
	require.NoError(t, err)
	lines := stored.Lines()
	require.Len(t, lines, 3)

	updated, err := env.journal.RemoveLine(ctx, e.ID(), lines[1].ID)
	require.NoError(t, err)
	assert.Len(t, updated.Lines(), 2)
	assert.Equal(t, first.ID, updated.Lines()[0].ID)

	submitted, err := env.journal.SubmitForApproval(ctx, e.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.JournalEntryStatusPending, submitted.Status())

	_, err = env.journal.AddLine(ctx, e.ID(), debit("cash", "1", "NGN"))
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestApproveTwiceFails(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.createPeriod(t, "2024-03", time.March)

	e := env.draft(t, "JE-1004", day(time.March, 10),
		debit("cash", "10", "NGN"),
		credit("revenue", "10", "NGN"),
	)
	_, err := env.journal.SubmitForApproval(ctx, e.ID())
	require.NoError(t, err)

	approved, err := env.journal.Approve(ctx, e.ID(), "approver")
	require.NoError(t, err)
	assert.Equal(t, domain.JournalEntryStatusApproved, approved.Status())

	_, err = env.journal.Approve(ctx, e.ID(), "approver")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	var transitionErr *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, string(domain.JournalEntryStatusApproved), transitionErr.From)
}

func TestRejectKeepsReason(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.createPeriod(t, "2024-03", time.March)

	e := env.draft(t, "JE-1005", day(time.March, 10),
		debit("cash", "10", "NGN"),
		credit("revenue", "10", "NGN"),
	)
	_, err := env.journal.SubmitForApproval(ctx, e.ID())
	require.NoError(t, err)

	_, err = env.journal.Reject(ctx, e.ID(), "approver", "")
	require.ErrorIs(t, err, domain.ErrReasonRequired)

	rejected, err := env.journal.Reject(ctx, e.ID(), "approver", "wrong account")
	require.NoError(t, err)
	assert.Equal(t, domain.JournalEntryStatusRejected, rejected.Status())
	assert.Equal(t, "wrong account", rejected.Notes())

	_, err = env.journal.Approve(ctx, e.ID(), "approver")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	audits, err := env.audit.List(ctx, domain.AuditFilter{Action: string(domain.AuditActionEntryReject)})
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, "wrong account", audits[0].Reason)
}

func TestPostIntoClosedPeriodFails(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	p := env.createPeriod(t, "2024-03", time.March)

	e := env.draft(t, "JE-1006", day(time.March, 10),
		debit("cash", "10", "NGN"),
		credit("revenue", "10", "NGN"),
	)
	_, err := env.journal.SubmitForApproval(ctx, e.ID())
	require.NoError(t, err)
	_, err = env.journal.Approve(ctx, e.ID(), "approver")
	require.NoError(t, err)

	_, err = env.periods.StartClosingProcess(ctx, p.ID(), "controller")
	require.NoError(t, err)

	_, err = env.journal.Post(ctx, e.ID(), "poster")
	require.ErrorIs(t, err, domain.ErrPeriodClosed)

	stored, err := env.journal.GetJournalEntry(ctx, e.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.JournalEntryStatusApproved, stored.Status())
	assert.True(t, env.balance(t, "cash", "NGN").IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PostingErrors.WithLabelValues("period_closed")))
}

func TestPostWithoutPeriodFails(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	e := env.draft(t, "JE-1007", day(time.March, 10),
		debit("cash", "10", "NGN"),
		credit("revenue", "10", "NGN"),
	)
	_, err := env.journal.SubmitForApproval(ctx, e.ID())
	require.NoError(t, err)
	_, err = env.journal.Approve(ctx, e.ID(), "approver")
	require.NoError(t, err)

	_, err = env.journal.Post(ctx, e.ID(), "poster")
	require.ErrorIs(t, err, domain.ErrPeriodNotFound)
}

func TestReverseMirrorsPostedEntry(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.createPeriod(t, "2024-03", time.March)

	original := env.post(t, "JE-2001", day(time.March, 10),
		debit("cash", "1000", "NGN"),
		credit("revenue", "1000", "NGN"),
	)
	env.dispatcher.reset()

	reversal, err := env.journal.Reverse(ctx, original.ID(), usecase.ReverseInput{
		Reason:   "duplicate",
		PostedBy: "controller",
	})
	require.NoError(t, err)

	assert.Equal(t, "JE-2001-R", reversal.Number())
	assert.Equal(t, domain.JournalEntryStatusPosted, reversal.Status())
	assert.Equal(t, domain.JournalEntryTypeReversing, reversal.EntryType())
	assert.Equal(t, original.ID(), reversal.ReversalJournalEntryID())

	origLines, revLines := original.Lines(), reversal.Lines()
	require.Len(t, revLines, len(origLines))
	for i := range origLines {
		assert.Equal(t, origLines[i].AccountID, revLines[i].AccountID)
		assert.Equal(t, !origLines[i].IsDebit, revLines[i].IsDebit)
		assert.True(t, origLines[i].Amount.Equal(revLines[i].Amount))
	}

	stored, err := env.journal.GetJournalEntry(ctx, original.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.JournalEntryStatusReversed, stored.Status())
	assert.Equal(t, reversal.ID(), stored.ReversalJournalEntryID())
	assert.Equal(t, "duplicate", stored.ReversalReason())

	assert.True(t, env.balance(t, "cash", "NGN").IsZero())
	assert.True(t, env.balance(t, "revenue", "NGN").IsZero())

	types := env.dispatcher.types()
	require.NotEmpty(t, types)
	assert.Equal(t, domain.EventTypeJournalEntryReversed, types[len(types)-1])

	_, err = env.journal.Reverse(ctx, original.ID(), usecase.ReverseInput{Reason: "again", PostedBy: "controller"})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestReverseIntoLaterPeriod(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.createPeriod(t, "2024-03", time.March)
	april := env.createPeriod(t, "2024-04", time.April)

	original := env.post(t, "JE-2002", day(time.March, 10),
		debit("cash", "75", "NGN"),
		credit("revenue", "75", "NGN"),
	)

	date := day(time.April, 2)
	reversal, err := env.journal.Reverse(ctx, original.ID(), usecase.ReverseInput{
		Number:    "REV-2002",
		Reason:    "accrual reversal",
		PostedBy:  "controller",
		EntryDate: &date,
	})
	require.NoError(t, err)
	assert.Equal(t, april.ID(), reversal.FinancialPeriodID())
	assert.Equal(t, "REV-2002", reversal.Number())

	marchBalance, err := env.ledger.GetAccountBalanceAt(ctx, "cash", "NGN", day(time.March, 31))
	require.NoError(t, err)
	assert.True(t, marchBalance.Amount().Equal(decimal.NewFromInt(75)))
	assert.True(t, env.balance(t, "cash", "NGN").IsZero())
}

func TestReverseIntoClosedPeriodRollsBack(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	p := env.createPeriod(t, "2024-03", time.March)

	original := env.post(t, "JE-2003", day(time.March, 10),
		debit("cash", "75", "NGN"),
		credit("revenue", "75", "NGN"),
	)
	_, err := env.periods.StartClosingProcess(ctx, p.ID(), "controller")
	require.NoError(t, err)

	_, err = env.journal.Reverse(ctx, original.ID(), usecase.ReverseInput{Reason: "late", PostedBy: "controller"})
	require.ErrorIs(t, err, domain.ErrPeriodClosed)

	stored, err := env.journal.GetJournalEntry(ctx, original.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.JournalEntryStatusPosted, stored.Status())
	assert.Empty(t, stored.ReversalJournalEntryID())

	_, err = env.journal.GetJournalEntryByNumber(ctx, "JE-2003-R")
	require.ErrorIs(t, err, domain.ErrJournalEntryNotFound)
}

func TestCreateJournalEntryDuplicateNumber(t *testing.T) {
	env := newLedgerEnv(t)
	env.draft(t, "JE-3001", day(time.March, 10))

	_, err := env.journal.CreateJournalEntry(context.Background(), usecase.CreateJournalEntryInput{
		Number:    "JE-3001",
		EntryDate: day(time.March, 11),
		CreatedBy: "clerk",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateNumber)
}

func TestActorFromContextIsAudited(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := domain.ContextWithActor(context.Background(), domain.Actor{ID: "api-user", RequestID: "req-1"})

	e, err := env.journal.CreateJournalEntry(ctx, usecase.CreateJournalEntryInput{
		Number:    "JE-3002",
		EntryDate: day(time.March, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, "api-user", e.State().CreatedBy)

	audits, err := env.audit.List(ctx, domain.AuditFilter{ResourceID: e.ID()})
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, "api-user", audits[0].UserID)
	assert.Equal(t, "req-1", audits[0].RequestID)
}

func TestListJournalEntries(t *testing.T) {
	env := newLedgerEnv(t)
	env.createPeriod(t, "2024-03", time.March)

	env.post(t, "JE-4001", day(time.March, 1), debit("cash", "1", "NGN"), credit("revenue", "1", "NGN"))
	env.draft(t, "JE-4002", day(time.March, 2))
	env.draft(t, "JE-4003", day(time.March, 3))

	drafts, err := env.journal.ListJournalEntries(context.Background(), usecase.JournalEntryFilter{
		Status: domain.JournalEntryStatusDraft,
	})
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "JE-4002", drafts[0].Number())

	all, err := env.journal.ListJournalEntries(context.Background(), usecase.JournalEntryFilter{ModuleSource: "loans", Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAdjustmentPeriodCannotPostIntoClosedDates(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	march := env.createPeriod(t, "2024-03", time.March)
	_, err := env.closing.RunClosing(ctx, march.ID(), "controller")
	require.NoError(t, err)

	adj, err := env.periods.CreatePeriod(ctx, usecase.CreatePeriodInput{
		PeriodCode:         "2024-ADJ",
		StartDate:          day(time.January, 1),
		EndDate:            day(time.December, 31),
		FiscalYear:         2024,
		IsAdjustmentPeriod: true,
		CreatedBy:          "controller",
	})
	require.NoError(t, err)

	adjusting := func(number string, date time.Time) *domain.JournalEntry {
		e, err := env.journal.CreateJournalEntry(ctx, usecase.CreateJournalEntryInput{
			Number:            number,
			EntryDate:         date,
			Description:       "year-end adjustment",
			Type:              domain.JournalEntryTypeAdjusting,
			FinancialPeriodID: adj.ID(),
			CreatedBy:         "clerk",
			Lines:             []usecase.LineInput{debit("cash", "7", "NGN"), credit("revenue", "7", "NGN")},
		})
		require.NoError(t, err)
		_, err = env.journal.SubmitForApproval(ctx, e.ID())
		require.NoError(t, err)
		_, err = env.journal.Approve(ctx, e.ID(), "approver")
		require.NoError(t, err)
		return e
	}

	intoClosed := adjusting("JE-ADJ-1", day(time.March, 15))
	_, err = env.journal.Post(ctx, intoClosed.ID(), "poster")
	require.ErrorIs(t, err, domain.ErrPeriodClosed)

	var closedErr *domain.PeriodClosedError
	require.ErrorAs(t, err, &closedErr)
	assert.Equal(t, march.ID(), closedErr.PeriodID)
	assert.True(t, env.balance(t, "cash", "NGN").IsZero())

	intoOpen := adjusting("JE-ADJ-2", day(time.April, 2))
	posted, err := env.journal.Post(ctx, intoOpen.ID(), "poster")
	require.NoError(t, err)
	assert.Equal(t, adj.ID(), posted.FinancialPeriodID())
	assert.True(t, env.balance(t, "cash", "NGN").Equal(decimal.NewFromInt(7)))
}

func TestApproveAndRejectRace(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.createPeriod(t, "2024-03", time.March)

	e := env.draft(t, "JE-1301", day(time.March, 10), debit("cash", "10", "NGN"), credit("revenue", "10", "NGN"))
	_, err := env.journal.SubmitForApproval(ctx, e.ID())
	require.NoError(t, err)

	var (
		wg                    sync.WaitGroup
		approveErr, rejectErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr = env.journal.Approve(ctx, e.ID(), "approver")
	}()
	go func() {
		defer wg.Done()
		_, rejectErr = env.journal.Reject(ctx, e.ID(), "reviewer", "wrong account")
	}()
	wg.Wait()

	require.True(t, (approveErr == nil) != (rejectErr == nil), "exactly one writer wins: approve=%v reject=%v", approveErr, rejectErr)

	loser := approveErr
	want := domain.JournalEntryStatusRejected
	if approveErr == nil {
		loser = rejectErr
		want = domain.JournalEntryStatusApproved
	}
	assert.True(t, errors.Is(loser, domain.ErrInvalidStateTransition) || errors.Is(loser, domain.ErrConcurrentModification), loser)

	stored, err := env.journal.GetJournalEntry(ctx, e.ID())
	require.NoError(t, err)
	assert.Equal(t, want, stored.Status())
}
