package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
)

// JournalEntryFilter narrows ListJournalEntries.
type JournalEntryFilter struct {
	Status            domain.JournalEntryStatus
	EntryType         domain.JournalEntryType
	FinancialPeriodID string
	ModuleSource      string
	From              *time.Time
	To                *time.Time
	Limit             int
	Offset            int
}

// JournalEntryRepository defines data access for journal entries and their lines.
type JournalEntryRepository interface {
	// Create inserts the entry with all of its lines.
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	// Update persists the entry if its stored version still matches, replacing
	// lines while the entry is a draft, and advances the version.
	Update(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.JournalEntry, error)
	GetByNumber(ctx context.Context, number string) (*domain.JournalEntry, error)
	List(ctx context.Context, filter JournalEntryFilter) ([]*domain.JournalEntry, error)
	CountByDateRange(ctx context.Context, tx Transaction, from, to time.Time, statuses []domain.JournalEntryStatus) (int, error)
}

// FinancialPeriodRepository defines data access for financial periods.
type FinancialPeriodRepository interface {
	Create(ctx context.Context, tx Transaction, period *domain.FinancialPeriod) error
	// Update persists the period if its stored version still matches and advances the version.
	Update(ctx context.Context, tx Transaction, period *domain.FinancialPeriod) error
	GetByID(ctx context.Context, id string) (*domain.FinancialPeriod, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.FinancialPeriod, error)
	// GetByIDForShare locks the period against closing transitions until tx ends.
	GetByIDForShare(ctx context.Context, tx Transaction, id string) (*domain.FinancialPeriod, error)
	// FindByDateForShare returns the regular (non-adjustment) period containing date.
	FindByDateForShare(ctx context.Context, tx Transaction, date time.Time) (*domain.FinancialPeriod, error)
	// FindOverlapping share-locks every period sharing a day with [start, end].
	FindOverlapping(ctx context.Context, tx Transaction, start, end time.Time) ([]*domain.FinancialPeriod, error)
	List(ctx context.Context, limit, offset int) ([]*domain.FinancialPeriod, error)
}

// AccountBalanceRepository defines data access for running account balances.
type AccountBalanceRepository interface {
	// GetForUpdate locks and returns the existing balances among keys. Missing keys are omitted.
	GetForUpdate(ctx context.Context, tx Transaction, keys []domain.BalanceKey) ([]*domain.AccountBalance, error)
	// Save inserts a balance with version 0 or updates one whose version still matches.
	Save(ctx context.Context, tx Transaction, balance *domain.AccountBalance) error
	GetByAccount(ctx context.Context, accountID string) ([]*domain.AccountBalance, error)
	List(ctx context.Context) ([]*domain.AccountBalance, error)
}

// LedgerPostingRepository defines data access for the immutable posting journal.
type LedgerPostingRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, postings []domain.LedgerPosting) error
	BalanceAt(ctx context.Context, accountID, currency string, asOf time.Time) (decimal.Decimal, error)
	// Totals sums postings per account and currency with entry date up to asOf (all when nil).
	Totals(ctx context.Context, asOf *time.Time) ([]domain.AccountTotals, error)
	// TotalsBetween sums postings dated within [from, to] inside tx.
	TotalsBetween(ctx context.Context, tx Transaction, from, to time.Time) ([]domain.AccountTotals, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a whole unit of work on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// EventDispatcher delivers committed domain events to in-process subscribers.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []domain.Event)
}

// AccountResolver maps well-known ledger roles to account ids. Ids are opaque to the core.
type AccountResolver interface {
	GetCashAccountID(ctx context.Context) (string, error)
	GetLoanReceivableAccountID(ctx context.Context) (string, error)
	GetInterestIncomeAccountID(ctx context.Context) (string, error)
	GetSalaryExpenseAccountID(ctx context.Context) (string, error)
	GetPayrollPayableAccountID(ctx context.Context) (string, error)
	GetAccumulatedDepreciationAccountID(ctx context.Context) (string, error)
	GetDepreciationExpenseAccountID(ctx context.Context) (string, error)
	GetRetainedEarningsAccountID(ctx context.Context) (string, error)
	GetRoundingAccountID(ctx context.Context) (string, error)
	// NominalAccountIDs lists the income and expense accounts zeroed at period close.
	NominalAccountIDs(ctx context.Context) ([]string, error)
}

// ErrChartReadOnly is returned when the chart of accounts cannot be remapped at runtime.
var ErrChartReadOnly = errors.New("chart of accounts is read-only")

// ErrUnknownRole is returned for a ledger role the chart does not define.
var ErrUnknownRole = errors.New("unknown ledger role")

// Cache defines caching operations.
type Cache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}
