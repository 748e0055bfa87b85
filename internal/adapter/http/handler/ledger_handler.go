package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/glcore/internal/adapter/http/dto"
	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// LedgerService describes the ledger queries used by the handler.
type LedgerService interface {
	GetAccountBalance(ctx context.Context, accountID, currency string) (domain.Money, error)
	GetAccountBalances(ctx context.Context, accountID string) ([]*domain.AccountBalance, error)
	GetAccountBalanceAt(ctx context.Context, accountID, currency string, asOf time.Time) (domain.Money, error)
	GenerateTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
	AuditTrail(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	EventHistory(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
}

// LedgerHandler handles balance and ledger-wide queries.
type LedgerHandler struct {
	ledger LedgerService
	now    func() time.Time
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, now: time.Now}
}

// GetBalance returns the running balances of an account, or a single
// currency when the currency query parameter is set.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		balances, err := h.ledger.GetAccountBalances(r.Context(), accountID)
		if err != nil {
			writeDomainError(w, "failed to get account balance", err)
			return
		}
		writeJSON(w, http.StatusOK, dto.BalancesFromDomain(balances))
		return
	}

	balance, err := h.ledger.GetAccountBalance(r.Context(), accountID, currency)
	if err != nil {
		writeDomainError(w, "failed to get account balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PointBalanceResponse{
		AccountID: accountID,
		Currency:  balance.Currency(),
		Balance:   balance.Amount(),
	})
}

// GetHistoricalBalance returns the balance from postings dated on or before as_of.
func (h *LedgerHandler) GetHistoricalBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	asOfStr := r.URL.Query().Get("as_of")
	if asOfStr == "" {
		writeError(w, http.StatusBadRequest, "missing 'as_of' parameter", "")
		return
	}
	asOf, err := dto.ParseDate(asOfStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'as_of' parameter", err.Error())
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		writeError(w, http.StatusBadRequest, "missing 'currency' parameter", "")
		return
	}

	balance, err := h.ledger.GetAccountBalanceAt(r.Context(), accountID, strings.ToUpper(currency), asOf)
	if err != nil {
		writeDomainError(w, "failed to get historical balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PointBalanceResponse{
		AccountID: accountID,
		Currency:  balance.Currency(),
		Balance:   balance.Amount(),
		AsOf:      asOf.Format(dto.DateLayout),
	})
}

// TrialBalance lists every account's net as of a date (today by default).
func (h *LedgerHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf := h.now().UTC().Truncate(24 * time.Hour)
	if v := r.URL.Query().Get("as_of"); v != "" {
		d, err := dto.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'as_of' parameter", err.Error())
			return
		}
		asOf = d
	}

	tb, err := h.ledger.GenerateTrialBalance(r.Context(), asOf)
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && tb != nil {
			writeJSON(w, http.StatusConflict, dto.TrialBalanceFromDomain(tb))
			return
		}
		writeDomainError(w, "failed to generate trial balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromDomain(tb))
}

// CheckConsistency checks if the ledger is consistent.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			writeJSON(w, http.StatusConflict, dto.ConsistencyFromDomain(report))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromDomain(report))
}

// AuditTrail lists audit rows filtered by user_id, action, resource_type,
// resource_id and a from/to date range.
func (h *LedgerHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", usecase.DefaultListLimit),
		Offset:       parseIntQuery(r, "offset", 0),
	}
	if v := q.Get("from"); v != "" {
		from, err := dto.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'from' parameter", err.Error())
			return
		}
		filter.StartDate = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := dto.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'to' parameter", err.Error())
			return
		}
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.EndDate = &end
	}

	logs, err := h.ledger.AuditTrail(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list audit trail", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// Events returns a handler listing the events recorded for one aggregate of aggregateType.
func (h *LedgerHandler) Events(aggregateType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := h.ledger.EventHistory(r.Context(), aggregateType, chi.URLParam(r, "id"),
			parseIntQuery(r, "limit", usecase.DefaultListLimit), parseIntQuery(r, "offset", 0))
		if err != nil {
			writeDomainError(w, "failed to list events", err)
			return
		}

		writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
	}
}
