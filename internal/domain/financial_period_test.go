package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedPeriod(t *testing.T) *FinancialPeriod {
	t.Helper()
	p := openPeriod(t)
	require.NoError(t, p.StartClosingProcess("controller", testNow))
	require.NoError(t, p.CompleteValidation(testNow))
	require.NoError(t, p.CompleteClosingEntries(testNow))
	require.NoError(t, p.Close("controller", testNow))
	p.PullEvents()
	return p
}

func TestNewFinancialPeriod(t *testing.T) {
	p, err := NewFinancialPeriod(NewFinancialPeriodParams{
		ID:         "p1",
		PeriodCode: "2024-03",
		StartDate:  time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, ClosingStatusNotStarted, p.ClosingStatus())
	assert.False(t, p.IsClosed())
	assert.Equal(t, "2024-03", p.Name())
	assert.Equal(t, 2024, p.State().FiscalYear)
	assert.True(t, p.StartDate().Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []EventType{EventTypeFinancialPeriodCreated}, eventTypes(p.PullEvents()))
}

func TestNewFinancialPeriodRejectsInvertedDates(t *testing.T) {
	_, err := NewFinancialPeriod(NewFinancialPeriodParams{
		ID:         "p1",
		PeriodCode: "2024-03",
		StartDate:  time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, testNow)
	require.ErrorIs(t, err, ErrInvalidPeriodDates)
}

func TestPeriodContainsAndOverlaps(t *testing.T) {
	march := openPeriod(t)
	april, err := NewFinancialPeriod(NewFinancialPeriodParams{
		ID:         "p-apr",
		PeriodCode: "2024-04",
		StartDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
	}, testNow)
	require.NoError(t, err)

	assert.True(t, march.Contains(time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, march.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, march.Overlaps(april))

	q1, err := NewFinancialPeriod(NewFinancialPeriodParams{
		ID:         "p-q1",
		PeriodCode: "2024-Q1",
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, testNow)
	require.NoError(t, err)
	assert.True(t, march.Overlaps(q1))
}

func TestClosingHappyPath(t *testing.T) {
	p := openPeriod(t)

	require.NoError(t, p.StartClosingProcess("controller", testNow))
	assert.Equal(t, ClosingStatusInitiated, p.ClosingStatus())
	require.NoError(t, p.CompleteValidation(testNow))
	assert.Equal(t, ClosingStatusValidated, p.ClosingStatus())
	require.NoError(t, p.CompleteClosingEntries(testNow))
	assert.Equal(t, ClosingStatusClosingEntriesPosted, p.ClosingStatus())
	require.NoError(t, p.Close("controller", testNow))

	assert.Equal(t, ClosingStatusCompleted, p.ClosingStatus())
	assert.True(t, p.IsClosed())
	s := p.State()
	assert.Equal(t, "controller", s.ClosedBy)
	require.NotNil(t, s.ClosedDate)
	require.NotNil(t, s.ClosingCompletedAt)

	assert.Equal(t, []EventType{
		EventTypePeriodClosingInitiated,
		EventTypePeriodClosingValidated,
		EventTypePeriodClosingEntriesPosted,
		EventTypeFinancialPeriodClosed,
	}, eventTypes(p.PullEvents()))
}

func TestCloseRequiresClosingEntriesPosted(t *testing.T) {
	for _, steps := range [][]func(*FinancialPeriod) error{
		{},
		{func(p *FinancialPeriod) error { return p.StartClosingProcess("c", testNow) }},
		{
			func(p *FinancialPeriod) error { return p.StartClosingProcess("c", testNow) },
			func(p *FinancialPeriod) error { return p.CompleteValidation(testNow) },
		},
	} {
		p := openPeriod(t)
		for _, step := range steps {
			require.NoError(t, step(p))
		}
		require.ErrorIs(t, p.Close("controller", testNow), ErrInvalidStateTransition)
		assert.False(t, p.IsClosed())
	}
}

// Scenario D
func TestValidationFailedRequiresRollbackBeforeRetry(t *testing.T) {
	p := openPeriod(t)

	require.NoError(t, p.StartClosingProcess("controller", testNow))
	require.NoError(t, p.SetValidationErrors([]string{"unposted drafts"}, testNow))
	assert.Equal(t, ClosingStatusValidationFailed, p.ClosingStatus())
	assert.Equal(t, []string{"unposted drafts"}, p.ValidationErrors())

	err := p.StartClosingProcess("controller", testNow)
	var transition *InvalidStateTransitionError
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, string(ClosingStatusValidationFailed), transition.From)

	require.NoError(t, p.RollBackClosingProcess("fixed", testNow))
	assert.Equal(t, ClosingStatusFailed, p.ClosingStatus())
	assert.Equal(t, "fixed", p.RollbackReason())

	require.NoError(t, p.StartClosingProcess("controller", testNow))
	assert.Equal(t, ClosingStatusInitiated, p.ClosingStatus())
	assert.Empty(t, p.ValidationErrors())

	assert.Equal(t, []EventType{
		EventTypePeriodClosingInitiated,
		EventTypePeriodClosingValidationFailed,
		EventTypePeriodClosingRolledBack,
		EventTypePeriodClosingInitiated,
	}, eventTypes(p.PullEvents()))
}

func TestRollbackGuards(t *testing.T) {
	p := openPeriod(t)
	require.ErrorIs(t, p.RollBackClosingProcess("nothing to roll back", testNow), ErrInvalidStateTransition)

	closed := closedPeriod(t)
	require.ErrorIs(t, closed.RollBackClosingProcess("too late", testNow), ErrInvalidStateTransition)

	require.NoError(t, p.StartClosingProcess("controller", testNow))
	require.ErrorIs(t, p.RollBackClosingProcess("", testNow), ErrReasonRequired)

	require.NoError(t, p.CompleteValidation(testNow))
	require.NoError(t, p.CompleteClosingEntries(testNow))
	require.NoError(t, p.RollBackClosingProcess("wrong retained earnings account", testNow))
	assert.Equal(t, ClosingStatusFailed, p.ClosingStatus())

	require.NoError(t, p.RollBackClosingProcess("again", testNow), "failed closes can be rolled back again")
}

func TestReopenPeriod(t *testing.T) {
	open := openPeriod(t)
	require.ErrorIs(t, open.ReopenPeriod("cfo", "audit adjustment", testNow), ErrInvalidStateTransition)

	p := closedPeriod(t)
	require.ErrorIs(t, p.ReopenPeriod("cfo", "", testNow), ErrReasonRequired)
	require.NoError(t, p.ReopenPeriod("cfo", "audit adjustment", testNow))

	s := p.State()
	assert.False(t, s.IsClosed)
	assert.Equal(t, ClosingStatusNotStarted, s.ClosingStatus)
	assert.Nil(t, s.ClosedDate)
	assert.Empty(t, s.ClosedBy)
	assert.Nil(t, s.ClosingStartedAt)
	assert.Empty(t, s.ClosingInitiatedBy)
	assert.Equal(t, "cfo", s.ReopenedBy)
	assert.Equal(t, "audit adjustment", s.ReopenReason)
	assert.Equal(t, []EventType{EventTypeFinancialPeriodReopened}, eventTypes(p.PullEvents()))

	require.NoError(t, p.StartClosingProcess("controller", testNow))
}

func TestEnsureOpenForPosting(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		setup     func(*FinancialPeriod)
		entryType JournalEntryType
		wantErr   error
	}{
		{name: "open", setup: func(*FinancialPeriod) {}, entryType: JournalEntryTypeStandard},
		{
			name: "initiated blocks",
			setup: func(p *FinancialPeriod) {
				_ = p.StartClosingProcess("c", testNow)
			},
			entryType: JournalEntryTypeStandard,
			wantErr:   ErrPeriodClosed,
		},
		{
			name: "validated blocks standard",
			setup: func(p *FinancialPeriod) {
				_ = p.StartClosingProcess("c", testNow)
				_ = p.CompleteValidation(testNow)
			},
			entryType: JournalEntryTypeStandard,
			wantErr:   ErrPeriodClosed,
		},
		{
			name: "validated admits closing entries",
			setup: func(p *FinancialPeriod) {
				_ = p.StartClosingProcess("c", testNow)
				_ = p.CompleteValidation(testNow)
			},
			entryType: JournalEntryTypeClosing,
		},
		{
			name: "initiated blocks closing entries",
			setup: func(p *FinancialPeriod) {
				_ = p.StartClosingProcess("c", testNow)
			},
			entryType: JournalEntryTypeClosing,
			wantErr:   ErrPeriodClosed,
		},
		{
			name: "failed close reopens posting",
			setup: func(p *FinancialPeriod) {
				_ = p.StartClosingProcess("c", testNow)
				_ = p.RollBackClosingProcess("abandon", testNow)
			},
			entryType: JournalEntryTypeStandard,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := openPeriod(t)
			tc.setup(p)

			err := p.EnsureOpenForPosting(date, tc.entryType)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	closed := closedPeriod(t)
	err := closed.EnsureOpenForPosting(date, JournalEntryTypeClosing)
	var closedErr *PeriodClosedError
	require.True(t, errors.As(err, &closedErr))
	assert.True(t, closedErr.IsClosed)
}

func TestEnsureOpenAcross(t *testing.T) {
	closed := closedPeriod(t)
	adjustment, err := NewFinancialPeriod(NewFinancialPeriodParams{
		ID:                 "period-2024-adj",
		PeriodCode:         "2024-ADJ",
		StartDate:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		FiscalYear:         2024,
		IsAdjustmentPeriod: true,
	}, testNow)
	require.NoError(t, err)
	periods := []*FinancialPeriod{closed, adjustment}

	err = EnsureOpenAcross(periods, adjustment.ID(), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), JournalEntryTypeAdjusting)
	require.ErrorIs(t, err, ErrPeriodClosed)
	var closedErr *PeriodClosedError
	require.True(t, errors.As(err, &closedErr))
	assert.Equal(t, closed.ID(), closedErr.PeriodID)

	require.NoError(t, EnsureOpenAcross(periods, adjustment.ID(), time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), JournalEntryTypeAdjusting))
	require.NoError(t, EnsureOpenAcross([]*FinancialPeriod{closed}, closed.ID(), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), JournalEntryTypeStandard))
}

func TestRestoreFinancialPeriod(t *testing.T) {
	p := closedPeriod(t)
	restored := RestoreFinancialPeriod(p.State())

	assert.Equal(t, p.State(), restored.State())
	assert.Empty(t, restored.PendingEvents())
}
