// Package memory is a process-local storage driver. Transactions are
// serialized: a transaction works on a private copy of the data that replaces
// the committed state on Commit and is discarded on Rollback.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used.
var ErrTxDone = errors.New("memory: transaction already committed or rolled back")

type dataset struct {
	entries      map[string]domain.JournalEntryState
	entryNumbers map[string]string
	periods      map[string]domain.FinancialPeriodState
	balances     map[domain.BalanceKey]domain.AccountBalance
	postings     []domain.LedgerPosting
	outbox       []domain.OutboxEvent
	audits       []domain.AuditLog
}

func newDataset() *dataset {
	return &dataset{
		entries:      make(map[string]domain.JournalEntryState),
		entryNumbers: make(map[string]string),
		periods:      make(map[string]domain.FinancialPeriodState),
		balances:     make(map[domain.BalanceKey]domain.AccountBalance),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		entries:      make(map[string]domain.JournalEntryState, len(d.entries)),
		entryNumbers: maps.Clone(d.entryNumbers),
		periods:      make(map[string]domain.FinancialPeriodState, len(d.periods)),
		balances:     maps.Clone(d.balances),
		postings:     slices.Clone(d.postings),
		outbox:       slices.Clone(d.outbox),
		audits:       slices.Clone(d.audits),
	}
	for id, s := range d.entries {
		s.Lines = slices.Clone(s.Lines)
		c.entries[id] = s
	}
	for id, s := range d.periods {
		s.ValidationErrors = slices.Clone(s.ValidationErrors)
		c.periods[id] = s
	}
	return c
}

// Store holds the committed dataset.
type Store struct {
	mu   sync.RWMutex
	data *dataset
	sem  chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		data: newDataset(),
		sem:  make(chan struct{}, 1),
	}
}

// read runs fn against the committed data.
func (s *Store) read(fn func(d *dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// write runs fn against the committed data. It waits for the running
// transaction so that a later Commit cannot overwrite the change.
func (s *Store) write(ctx context.Context, fn func(d *dataset)) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
	return nil
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for any running transaction to finish and starts a new one.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case m.store.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var work *dataset
	m.store.read(func(d *dataset) { work = d.clone() })

	return &Tx{store: m.store, work: work}, nil
}

// Tx is a memory transaction.
type Tx struct {
	store *Store
	work  *dataset
	done  bool
}

// Commit publishes the transaction's changes.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.store.mu.Lock()
	t.store.data = t.work
	t.store.mu.Unlock()
	t.finish()
	return nil
}

// Rollback discards the transaction's changes. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.work = nil
	<-t.store.sem
}

func txData(tx usecase.Transaction) (*dataset, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, errors.New("memory: foreign transaction")
	}
	if t.done {
		return nil, ErrTxDone
	}
	return t.work, nil
}
