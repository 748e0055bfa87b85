package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/infrastructure/postgres/generated"
	"github.com/iho/glcore/internal/usecase"
)

// JournalEntryRepository implements usecase.JournalEntryRepository.
type JournalEntryRepository struct {
	queries *generated.Queries
}

// NewJournalEntryRepository creates a new JournalEntryRepository.
func NewJournalEntryRepository(db generated.DBTX) *JournalEntryRepository {
	return &JournalEntryRepository{queries: generated.New(db)}
}

// Create inserts the entry header and its lines.
func (r *JournalEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	queries := queriesFor(tx)
	s := entry.State()

	err := queries.CreateJournalEntry(ctx, generated.CreateJournalEntryParams{
		ID:                     s.ID,
		Number:                 s.Number,
		EntryDate:              timeToPgDate(s.EntryDate),
		Description:            s.Description,
		Status:                 string(s.Status),
		EntryType:              string(s.EntryType),
		Reference:              s.Reference,
		SourceDocument:         s.SourceDocument,
		ApprovedBy:             s.ApprovedBy,
		ApprovalDate:           timePtrToPgTimestamptz(s.ApprovalDate),
		RejectedBy:             s.RejectedBy,
		RejectionDate:          timePtrToPgTimestamptz(s.RejectionDate),
		PostedBy:               s.PostedBy,
		PostedDate:             timePtrToPgTimestamptz(s.PostedDate),
		ReversalReason:         s.ReversalReason,
		ReversalJournalEntryID: stringToPgText(s.ReversalJournalEntryID),
		FinancialPeriodID:      stringToPgText(s.FinancialPeriodID),
		ModuleSource:           s.ModuleSource,
		Notes:                  s.Notes,
		CreatedBy:              s.CreatedBy,
		CreatedAt:              timeToPgTimestamptz(s.CreatedAt),
		UpdatedAt:              timeToPgTimestamptz(s.UpdatedAt),
		Version:                s.Version,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateNumber, s.Number)
		}
		return err
	}

	return insertLines(ctx, queries, s.Lines)
}

// Update persists the header if the stored version matches. Lines are
// replaced only while the entry is still a draft.
func (r *JournalEntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	queries := queriesFor(tx)
	s := entry.State()

	rows, err := queries.UpdateJournalEntry(ctx, generated.UpdateJournalEntryParams{
		ID:                     s.ID,
		Version:                s.Version,
		Description:            s.Description,
		Status:                 string(s.Status),
		Reference:              s.Reference,
		ApprovedBy:             s.ApprovedBy,
		ApprovalDate:           timePtrToPgTimestamptz(s.ApprovalDate),
		RejectedBy:             s.RejectedBy,
		RejectionDate:          timePtrToPgTimestamptz(s.RejectionDate),
		PostedBy:               s.PostedBy,
		PostedDate:             timePtrToPgTimestamptz(s.PostedDate),
		ReversalReason:         s.ReversalReason,
		ReversalJournalEntryID: stringToPgText(s.ReversalJournalEntryID),
		FinancialPeriodID:      stringToPgText(s.FinancialPeriodID),
		Notes:                  s.Notes,
		UpdatedAt:              timeToPgTimestamptz(s.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: journal entry %s", domain.ErrConcurrentModification, s.ID)
	}

	if entry.LinesEditable() {
		if err := queries.DeleteJournalEntryLines(ctx, s.ID); err != nil {
			return err
		}
		if err := insertLines(ctx, queries, s.Lines); err != nil {
			return err
		}
	}

	entry.AdvanceVersion()
	return nil
}

// GetByID retrieves an entry with its lines.
func (r *JournalEntryRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	row, err := r.queries.GetJournalEntryByID(ctx, id)
	if err != nil {
		return nil, entryNotFound(err, id)
	}
	return loadEntry(ctx, r.queries, row)
}

// GetByIDForUpdate locks the entry row inside tx.
func (r *JournalEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error) {
	queries := queriesFor(tx)

	row, err := queries.GetJournalEntryByIDForUpdate(ctx, id)
	if err != nil {
		return nil, entryNotFound(err, id)
	}
	return loadEntry(ctx, queries, row)
}

// GetByNumber retrieves an entry by its unique number.
func (r *JournalEntryRepository) GetByNumber(ctx context.Context, number string) (*domain.JournalEntry, error) {
	row, err := r.queries.GetJournalEntryByNumber(ctx, number)
	if err != nil {
		return nil, entryNotFound(err, "number "+number)
	}
	return loadEntry(ctx, r.queries, row)
}

// List returns entries matching filter ordered by entry date, then number.
func (r *JournalEntryRepository) List(ctx context.Context, filter usecase.JournalEntryFilter) ([]*domain.JournalEntry, error) {
	rows, err := r.queries.ListJournalEntries(ctx, generated.ListJournalEntriesParams{
		Status:            stringToPgText(string(filter.Status)),
		EntryType:         stringToPgText(string(filter.EntryType)),
		FinancialPeriodID: stringToPgText(filter.FinancialPeriodID),
		ModuleSource:      stringToPgText(filter.ModuleSource),
		FromDate:          timePtrToPgDate(filter.From),
		ToDate:            timePtrToPgDate(filter.To),
		Limit:             pageLimit(filter.Limit),
		Offset:            int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*domain.JournalEntry{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	lineRows, err := r.queries.GetJournalEntryLinesByEntryIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	linesByEntry := make(map[string][]generated.JournalEntryLine, len(rows))
	for _, l := range lineRows {
		linesByEntry[l.JournalEntryID] = append(linesByEntry[l.JournalEntryID], l)
	}

	entries := make([]*domain.JournalEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := rowToJournalEntry(row, linesByEntry[row.ID])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// CountByDateRange counts entries dated within [from, to] in one of statuses.
func (r *JournalEntryRepository) CountByDateRange(ctx context.Context, tx usecase.Transaction, from, to time.Time, statuses []domain.JournalEntryStatus) (int, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}

	count, err := queriesFor(tx).CountJournalEntriesByDateRange(ctx, generated.CountJournalEntriesByDateRangeParams{
		FromDate: timeToPgDate(from),
		ToDate:   timeToPgDate(to),
		Statuses: names,
	})
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func insertLines(ctx context.Context, queries *generated.Queries, lines []domain.JournalEntryLine) error {
	for _, l := range lines {
		err := queries.CreateJournalEntryLine(ctx, generated.CreateJournalEntryLineParams{
			ID:             l.ID,
			JournalEntryID: l.JournalEntryID,
			LineNumber:     int32(l.LineNumber),
			AccountID:      l.AccountID,
			Amount:         decimalToNumeric(l.Amount.Amount()),
			Currency:       l.Amount.Currency(),
			IsDebit:        l.IsDebit,
			Description:    l.Description,
			Reference:      l.Reference,
		})
		if err != nil {
			return fmt.Errorf("insert line %d: %w", l.LineNumber, err)
		}
	}
	return nil
}

func loadEntry(ctx context.Context, queries *generated.Queries, row generated.JournalEntry) (*domain.JournalEntry, error) {
	lines, err := queries.GetJournalEntryLines(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return rowToJournalEntry(row, lines)
}

func entryNotFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrJournalEntryNotFound, what)
	}
	return err
}

func rowToJournalEntry(row generated.JournalEntry, lineRows []generated.JournalEntryLine) (*domain.JournalEntry, error) {
	lines := make([]domain.JournalEntryLine, 0, len(lineRows))
	for _, l := range lineRows {
		amount, err := domain.NewMoney(numericToDecimal(l.Amount), l.Currency)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", l.ID, err)
		}
		lines = append(lines, domain.JournalEntryLine{
			ID:             l.ID,
			JournalEntryID: l.JournalEntryID,
			AccountID:      l.AccountID,
			Amount:         amount,
			IsDebit:        l.IsDebit,
			Description:    l.Description,
			Reference:      l.Reference,
			LineNumber:     int(l.LineNumber),
		})
	}

	return domain.RestoreJournalEntry(domain.JournalEntryState{
		ID:                     row.ID,
		Number:                 row.Number,
		EntryDate:              row.EntryDate.Time,
		Description:            row.Description,
		Status:                 domain.JournalEntryStatus(row.Status),
		EntryType:              domain.JournalEntryType(row.EntryType),
		Reference:              row.Reference,
		SourceDocument:         row.SourceDocument,
		ApprovedBy:             row.ApprovedBy,
		ApprovalDate:           pgTimestamptzToPtr(row.ApprovalDate),
		RejectedBy:             row.RejectedBy,
		RejectionDate:          pgTimestamptzToPtr(row.RejectionDate),
		PostedBy:               row.PostedBy,
		PostedDate:             pgTimestamptzToPtr(row.PostedDate),
		ReversalReason:         row.ReversalReason,
		ReversalJournalEntryID: row.ReversalJournalEntryID.String,
		FinancialPeriodID:      row.FinancialPeriodID.String,
		ModuleSource:           row.ModuleSource,
		Notes:                  row.Notes,
		CreatedBy:              row.CreatedBy,
		CreatedAt:              row.CreatedAt.Time,
		UpdatedAt:              row.UpdatedAt.Time,
		Version:                row.Version,
		Lines:                  lines,
	}), nil
}
