package memory

import (
	"context"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateTx stores an audit log inside tx.
func (r *AuditRepository) CreateTx(_ context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	d, err := txData(tx)
	if err != nil {
		return err
	}
	d.audits = append(d.audits, *log)
	return nil
}

// List returns audit logs matching filter, newest first.
func (r *AuditRepository) List(_ context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	r.store.read(func(d *dataset) {
		skipped := 0
		for i := len(d.audits) - 1; i >= 0; i-- {
			l := d.audits[i]
			if !matchesAudit(l, filter) {
				continue
			}
			if skipped < filter.Offset {
				skipped++
				continue
			}
			if filter.Limit > 0 && len(out) >= filter.Limit {
				return
			}
			out = append(out, &l)
		}
	})
	return out, nil
}

func matchesAudit(l domain.AuditLog, f domain.AuditFilter) bool {
	switch {
	case f.UserID != "" && l.UserID != f.UserID:
		return false
	case f.Action != "" && l.Action != f.Action:
		return false
	case f.ResourceType != "" && l.ResourceType != f.ResourceType:
		return false
	case f.ResourceID != "" && l.ResourceID != f.ResourceID:
		return false
	case f.StartDate != nil && l.CreatedAt.Before(*f.StartDate):
		return false
	case f.EndDate != nil && l.CreatedAt.After(*f.EndDate):
		return false
	}
	return true
}
