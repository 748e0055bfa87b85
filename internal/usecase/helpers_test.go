package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/glcore/internal/adapter/repository/memory"
	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/infrastructure/metrics"
	"github.com/iho/glcore/internal/usecase"
)

type seqIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

type recordingDispatcher struct {
	mu      sync.Mutex
	batches [][]domain.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, events []domain.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, events)
}

func (d *recordingDispatcher) types() []domain.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.EventType
	for _, b := range d.batches {
		for _, e := range b {
			out = append(out, e.Type)
		}
	}
	return out
}

func (d *recordingDispatcher) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = nil
}

type staticResolver struct {
	retained string
	nominal  []string
}

func (r staticResolver) GetCashAccountID(context.Context) (string, error) { return "cash", nil }
func (r staticResolver) GetLoanReceivableAccountID(context.Context) (string, error) {
	return "loan-receivable", nil
}
func (r staticResolver) GetInterestIncomeAccountID(context.Context) (string, error) {
	return "interest-income", nil
}
func (r staticResolver) GetSalaryExpenseAccountID(context.Context) (string, error) {
	return "salary-expense", nil
}
func (r staticResolver) GetPayrollPayableAccountID(context.Context) (string, error) {
	return "payroll-payable", nil
}
func (r staticResolver) GetAccumulatedDepreciationAccountID(context.Context) (string, error) {
	return "accumulated-depreciation", nil
}
func (r staticResolver) GetDepreciationExpenseAccountID(context.Context) (string, error) {
	return "depreciation-expense", nil
}
func (r staticResolver) GetRetainedEarningsAccountID(context.Context) (string, error) {
	return r.retained, nil
}
func (r staticResolver) GetRoundingAccountID(context.Context) (string, error) { return "rounding", nil }
func (r staticResolver) NominalAccountIDs(context.Context) ([]string, error)  { return r.nominal, nil }

// ledgerEnv wires every use case to one memory store.
type ledgerEnv struct {
	store      *memory.Store
	deps       usecase.Deps
	dispatcher *recordingDispatcher
	metrics    *metrics.Metrics
	journal    *usecase.JournalUseCase
	periods    *usecase.PeriodUseCase
	closing    *usecase.ClosingUseCase
	ledger     *usecase.LedgerUseCase
	audit      *memory.AuditRepository
	outbox     *memory.OutboxRepository
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()

	store := memory.NewStore()
	dispatcher := &recordingDispatcher{}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	auditRepo := memory.NewAuditRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)

	deps := usecase.Deps{
		TxManager: memory.NewTxManager(store),
		Repos: usecase.Repositories{
			Entries:  memory.NewJournalEntryRepository(store),
			Periods:  memory.NewFinancialPeriodRepository(store),
			Balances: memory.NewAccountBalanceRepository(store),
			Postings: memory.NewLedgerPostingRepository(store),
			Outbox:   outboxRepo,
			Audit:    auditRepo,
		},
		IDGen:            &seqIDGenerator{},
		Dispatcher:       dispatcher,
		Metrics:          m,
		BalanceTolerance: decimal.RequireFromString(domain.DefaultBalanceTolerance),
	}
	resolver := staticResolver{
		retained: "retained-earnings",
		nominal:  []string{"revenue", "interest-income", "salary-expense"},
	}

	return &ledgerEnv{
		store:      store,
		deps:       deps,
		dispatcher: dispatcher,
		metrics:    m,
		journal:    usecase.NewJournalUseCase(deps, resolver),
		periods:    usecase.NewPeriodUseCase(deps),
		closing:    usecase.NewClosingUseCase(deps, resolver),
		ledger:     usecase.NewLedgerUseCase(deps),
		audit:      auditRepo,
		outbox:     outboxRepo,
	}
}

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func (env *ledgerEnv) createPeriod(t *testing.T, code string, month time.Month) *domain.FinancialPeriod {
	t.Helper()
	start := day(month, 1)
	p, err := env.periods.CreatePeriod(context.Background(), usecase.CreatePeriodInput{
		PeriodCode:  code,
		StartDate:   start,
		EndDate:     start.AddDate(0, 1, -1),
		FiscalMonth: int(month),
		CreatedBy:   "controller",
	})
	require.NoError(t, err)
	return p
}

func debit(account, amount, currency string) usecase.LineInput {
	return usecase.LineInput{AccountID: account, Amount: decimal.RequireFromString(amount), Currency: currency, IsDebit: true}
}

func credit(account, amount, currency string) usecase.LineInput {
	return usecase.LineInput{AccountID: account, Amount: decimal.RequireFromString(amount), Currency: currency}
}

func (env *ledgerEnv) draft(t *testing.T, number string, date time.Time, lines ...usecase.LineInput) *domain.JournalEntry {
	t.Helper()
	e, err := env.journal.CreateJournalEntry(context.Background(), usecase.CreateJournalEntryInput{
		Number:       number,
		EntryDate:    date,
		Description:  "test entry " + number,
		ModuleSource: "loans",
		CreatedBy:    "clerk",
		Lines:        lines,
	})
	require.NoError(t, err)
	return e
}

// post drives a new entry all the way to Posted.
func (env *ledgerEnv) post(t *testing.T, number string, date time.Time, lines ...usecase.LineInput) *domain.JournalEntry {
	t.Helper()
	ctx := context.Background()
	e := env.draft(t, number, date, lines...)

	_, err := env.journal.SubmitForApproval(ctx, e.ID())
	require.NoError(t, err)
	_, err = env.journal.Approve(ctx, e.ID(), "approver")
	require.NoError(t, err)
	posted, err := env.journal.Post(ctx, e.ID(), "poster")
	require.NoError(t, err)
	return posted
}

func (env *ledgerEnv) balance(t *testing.T, account, currency string) decimal.Decimal {
	t.Helper()
	m, err := env.ledger.GetAccountBalance(context.Background(), account, currency)
	require.NoError(t, err)
	return m.Amount()
}
