package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

func TestValidationFailedRequiresRollback(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	p := env.createPeriod(t, "2024-03", time.March)

	started, err := env.periods.StartClosingProcess(ctx, p.ID(), "controller")
	require.NoError(t, err)
	assert.Equal(t, domain.ClosingStatusInitiated, started.ClosingStatus())

	failed, err := env.periods.SetValidationErrors(ctx, p.ID(), []string{"unposted drafts"})
	require.NoError(t, err)
	assert.Equal(t, domain.ClosingStatusValidationFailed, failed.ClosingStatus())
	assert.Equal(t, []string{"unposted drafts"}, failed.ValidationErrors())

	_, err = env.periods.StartClosingProcess(ctx, p.ID(), "controller")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	rolledBack, err := env.periods.RollBackClosingProcess(ctx, p.ID(), "fixed")
	require.NoError(t, err)
	assert.Equal(t, domain.ClosingStatusFailed, rolledBack.ClosingStatus())
	assert.Equal(t, "fixed", rolledBack.RollbackReason())

	restarted, err := env.periods.StartClosingProcess(ctx, p.ID(), "controller")
	require.NoError(t, err)
	assert.Equal(t, domain.ClosingStatusInitiated, restarted.ClosingStatus())
	assert.Empty(t, restarted.ValidationErrors())
}

func TestManualCloseAndReopen(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	p := env.createPeriod(t, "2024-03", time.March)

	_, err := env.periods.Close(ctx, p.ID(), "controller")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition, "close requires posted closing entries")

	_, err = env.periods.StartClosingProcess(ctx, p.ID(), "controller")
	require.NoError(t, err)
	_, err = env.periods.CompleteValidation(ctx, p.ID())
	require.NoError(t, err)
	_, err = env.periods.CompleteClosingEntries(ctx, p.ID())
	require.NoError(t, err)

	closed, err := env.periods.Close(ctx, p.ID(), "controller")
	require.NoError(t, err)
	assert.True(t, closed.IsClosed())
	assert.Equal(t, domain.ClosingStatusCompleted, closed.ClosingStatus())

	_, err = env.periods.RollBackClosingProcess(ctx, p.ID(), "too late")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = env.periods.ReopenPeriod(ctx, p.ID(), "cfo", "")
	require.ErrorIs(t, err, domain.ErrReasonRequired)

	reopened, err := env.periods.ReopenPeriod(ctx, p.ID(), "cfo", "audit adjustment")
	require.NoError(t, err)
	assert.False(t, reopened.IsClosed())
	assert.Equal(t, domain.ClosingStatusNotStarted, reopened.ClosingStatus())

	env.post(t, "JE-5001", day(time.March, 31), debit("cash", "5", "NGN"), credit("revenue", "5", "NGN"))

	audits, err := env.audit.List(ctx, domain.AuditFilter{Action: string(domain.AuditActionPeriodReopen)})
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, "cfo", audits[0].UserID)
	assert.Equal(t, "audit adjustment", audits[0].Reason)
}

func TestCreatePeriodRejectsOverlap(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.createPeriod(t, "2024-03", time.March)

	_, err := env.periods.CreatePeriod(ctx, usecase.CreatePeriodInput{
		PeriodCode: "2024-03B",
		StartDate:  day(time.March, 15),
		EndDate:    day(time.April, 15),
	})
	require.ErrorIs(t, err, domain.ErrOverlappingPeriod)

	adj, err := env.periods.CreatePeriod(ctx, usecase.CreatePeriodInput{
		PeriodCode:         "2024-ADJ",
		StartDate:          day(time.March, 31),
		EndDate:            day(time.March, 31),
		FiscalMonth:        13,
		IsAdjustmentPeriod: true,
	})
	require.NoError(t, err, "adjustment periods may overlap regular ones")
	assert.True(t, adj.IsAdjustmentPeriod())

	_, err = env.periods.CreatePeriod(ctx, usecase.CreatePeriodInput{
		PeriodCode: "2024-03",
		StartDate:  day(time.May, 1),
		EndDate:    day(time.May, 31),
	})
	require.ErrorIs(t, err, domain.ErrDuplicatePeriodCode)

	_, err = env.periods.CreatePeriod(ctx, usecase.CreatePeriodInput{
		PeriodCode: "2024-06",
		StartDate:  day(time.June, 30),
		EndDate:    day(time.June, 1),
	})
	require.ErrorIs(t, err, domain.ErrInvalidPeriodDates)

	periods, err := env.periods.ListPeriods(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "2024-03", periods[0].PeriodCode())
}

func TestPeriodTransitionOnMissingPeriod(t *testing.T) {
	env := newLedgerEnv(t)

	_, err := env.periods.StartClosingProcess(context.Background(), "missing", "controller")
	require.ErrorIs(t, err, domain.ErrPeriodNotFound)
	assert.True(t, domain.IsNotFound(err))
}
