package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/infrastructure/metrics"
)

// Repositories groups the stores a use case reads and writes.
type Repositories struct {
	Entries  JournalEntryRepository
	Periods  FinancialPeriodRepository
	Balances AccountBalanceRepository
	Postings LedgerPostingRepository
	Outbox   OutboxRepository
	Audit    AuditRepository // optional
}

// Deps are the collaborators shared by every use case.
type Deps struct {
	TxManager  TransactionManager
	Repos      Repositories
	IDGen      IDGenerator
	Retrier    Retrier         // optional
	Dispatcher EventDispatcher // optional
	Metrics    *metrics.Metrics
	Logger     *zerolog.Logger

	// BalanceTolerance is the per-currency difference an entry may carry and
	// still count as balanced. Zero demands exact balance.
	BalanceTolerance decimal.Decimal
}

var nopLogger = zerolog.Nop()

func (d Deps) logger() *zerolog.Logger {
	if d.Logger == nil {
		return &nopLogger
	}
	return d.Logger
}

// unitOfWork collects what a transaction must persist besides the aggregates.
type unitOfWork struct {
	tx     Transaction
	actor  domain.Actor
	events []domain.Event
	audits []*domain.AuditLog
}

func (u *unitOfWork) record(events ...domain.Event) {
	u.events = append(u.events, events...)
}

func (u *unitOfWork) audit(action domain.AuditAction, resourceType, resourceID, reason string, before, after any) {
	log := &domain.AuditLog{
		UserID:       u.actor.ID,
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    u.actor.RequestID,
		Reason:       reason,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
	if before != nil {
		log.BeforeState = domain.MarshalState(before)
	}
	if after != nil {
		log.AfterState = domain.MarshalState(after)
	}
	u.audits = append(u.audits, log)
}

// inTx runs fn in one transaction. Recorded events are written to the outbox
// and audit rows are stored before commit; events are dispatched in-process
// only after a successful commit. The whole unit is retried on transient
// storage errors when a Retrier is configured.
func (d Deps) inTx(ctx context.Context, actor string, fn func(ctx context.Context, uow *unitOfWork) error) error {
	var (
		committed []domain.Event
		audited   []*domain.AuditLog
	)

	operation := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := d.TxManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		uow := &unitOfWork{tx: tx, actor: resolveActor(ctx, actor)}
		if err := fn(txCtx, uow); err != nil {
			return err
		}

		for _, e := range uow.events {
			if err := d.Repos.Outbox.Create(txCtx, tx, domain.NewOutboxEvent(d.IDGen.Generate(), e)); err != nil {
				return err
			}
		}

		if d.Repos.Audit != nil {
			for _, log := range uow.audits {
				log.ID = d.IDGen.Generate()
				if err := d.Repos.Audit.CreateTx(txCtx, tx, log); err != nil {
					return err
				}
			}
		}

		if err := tx.Commit(txCtx); err != nil {
			return err
		}

		committed = uow.events
		if d.Repos.Audit != nil {
			audited = uow.audits
		}
		return nil
	}

	var err error
	if d.Retrier != nil {
		err = d.Retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return err
	}

	if d.Metrics != nil {
		for _, log := range audited {
			d.Metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
		}
	}
	if d.Dispatcher != nil && len(committed) > 0 {
		d.Dispatcher.Dispatch(ctx, committed)
	}

	return nil
}

func resolveActor(ctx context.Context, explicit string) domain.Actor {
	actor, _ := domain.ActorFromContext(ctx)
	if explicit != "" {
		actor.ID = explicit
	}
	if actor.ID == "" {
		actor.ID = "system"
	}
	return actor
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
