package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// JournalEntryRepository implements usecase.JournalEntryRepository.
type JournalEntryRepository struct {
	store *Store
}

// NewJournalEntryRepository creates a new JournalEntryRepository.
func NewJournalEntryRepository(store *Store) *JournalEntryRepository {
	return &JournalEntryRepository{store: store}
}

// Create stores a new entry.
func (r *JournalEntryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	d, err := txData(tx)
	if err != nil {
		return err
	}

	s := entry.State()
	if _, exists := d.entryNumbers[s.Number]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateNumber, s.Number)
	}
	if _, exists := d.entries[s.ID]; exists {
		return fmt.Errorf("journal entry %s already exists", s.ID)
	}

	d.entries[s.ID] = s
	d.entryNumbers[s.Number] = s.ID
	return nil
}

// Update stores entry if the stored version matches.
func (r *JournalEntryRepository) Update(_ context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	d, err := txData(tx)
	if err != nil {
		return err
	}

	stored, ok := d.entries[entry.ID()]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrJournalEntryNotFound, entry.ID())
	}
	if stored.Version != entry.Version() {
		return fmt.Errorf("%w: journal entry %s", domain.ErrConcurrentModification, entry.ID())
	}

	s := entry.State()
	s.Version++
	d.entries[s.ID] = s
	entry.AdvanceVersion()
	return nil
}

// GetByID retrieves an entry.
func (r *JournalEntryRepository) GetByID(_ context.Context, id string) (*domain.JournalEntry, error) {
	var (
		s  domain.JournalEntryState
		ok bool
	)
	r.store.read(func(d *dataset) { s, ok = d.entries[id] })
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrJournalEntryNotFound, id)
	}
	return domain.RestoreJournalEntry(s), nil
}

// GetByIDForUpdate retrieves an entry inside tx.
func (r *JournalEntryRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error) {
	d, err := txData(tx)
	if err != nil {
		return nil, err
	}
	s, ok := d.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrJournalEntryNotFound, id)
	}
	return domain.RestoreJournalEntry(s), nil
}

// GetByNumber retrieves an entry by number.
func (r *JournalEntryRepository) GetByNumber(_ context.Context, number string) (*domain.JournalEntry, error) {
	var (
		s  domain.JournalEntryState
		ok bool
	)
	r.store.read(func(d *dataset) {
		var id string
		if id, ok = d.entryNumbers[number]; ok {
			s = d.entries[id]
		}
	})
	if !ok {
		return nil, fmt.Errorf("%w: number %s", domain.ErrJournalEntryNotFound, number)
	}
	return domain.RestoreJournalEntry(s), nil
}

// List returns entries matching filter ordered by entry date, then number.
func (r *JournalEntryRepository) List(_ context.Context, filter usecase.JournalEntryFilter) ([]*domain.JournalEntry, error) {
	var matched []domain.JournalEntryState
	r.store.read(func(d *dataset) {
		for _, s := range d.entries {
			if matchesFilter(s, filter) {
				s.Lines = slices.Clone(s.Lines)
				matched = append(matched, s)
			}
		}
	})

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].EntryDate.Equal(matched[j].EntryDate) {
			return matched[i].EntryDate.Before(matched[j].EntryDate)
		}
		return matched[i].Number < matched[j].Number
	})

	entries := make([]*domain.JournalEntry, 0, len(matched))
	for i, s := range matched {
		if i < filter.Offset {
			continue
		}
		if filter.Limit > 0 && len(entries) >= filter.Limit {
			break
		}
		entries = append(entries, domain.RestoreJournalEntry(s))
	}
	return entries, nil
}

// CountByDateRange counts entries dated within [from, to] in one of statuses.
func (r *JournalEntryRepository) CountByDateRange(_ context.Context, tx usecase.Transaction, from, to time.Time, statuses []domain.JournalEntryStatus) (int, error) {
	d, err := txData(tx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, s := range d.entries {
		if inDateRange(s.EntryDate, from, to) && slices.Contains(statuses, s.Status) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(s domain.JournalEntryState, f usecase.JournalEntryFilter) bool {
	switch {
	case f.Status != "" && s.Status != f.Status:
		return false
	case f.EntryType != "" && s.EntryType != f.EntryType:
		return false
	case f.FinancialPeriodID != "" && s.FinancialPeriodID != f.FinancialPeriodID:
		return false
	case f.ModuleSource != "" && s.ModuleSource != f.ModuleSource:
		return false
	case f.From != nil && s.EntryDate.Before(*f.From):
		return false
	case f.To != nil && s.EntryDate.After(*f.To):
		return false
	}
	return true
}

func inDateRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(endOfDay(to))
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, time.UTC)
}
