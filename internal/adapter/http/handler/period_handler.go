package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/glcore/internal/adapter/http/dto"
	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// PeriodService describes the financial period use cases used by the handler.
type PeriodService interface {
	CreatePeriod(ctx context.Context, input usecase.CreatePeriodInput) (*domain.FinancialPeriod, error)
	StartClosingProcess(ctx context.Context, periodID, initiatedBy string) (*domain.FinancialPeriod, error)
	SetValidationErrors(ctx context.Context, periodID string, errs []string) (*domain.FinancialPeriod, error)
	Close(ctx context.Context, periodID, closedBy string) (*domain.FinancialPeriod, error)
	RollBackClosingProcess(ctx context.Context, periodID, reason string) (*domain.FinancialPeriod, error)
	ReopenPeriod(ctx context.Context, periodID, reopenedBy, reason string) (*domain.FinancialPeriod, error)
	GetPeriod(ctx context.Context, id string) (*domain.FinancialPeriod, error)
	ListPeriods(ctx context.Context, limit, offset int) ([]*domain.FinancialPeriod, error)
}

// ClosingService describes the closing workflow steps that need ledger access.
type ClosingService interface {
	Validate(ctx context.Context, periodID string) (*domain.FinancialPeriod, error)
	PostClosingEntries(ctx context.Context, periodID, postedBy string) (*domain.FinancialPeriod, []*domain.JournalEntry, error)
	RunClosing(ctx context.Context, periodID, initiatedBy string) (*usecase.ClosingResult, error)
}

// PeriodHandler handles financial period HTTP requests.
type PeriodHandler struct {
	periods PeriodService
	closing ClosingService
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periods PeriodService, closing ClosingService) *PeriodHandler {
	return &PeriodHandler{periods: periods, closing: closing}
}

// Create creates a financial period.
func (h *PeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePeriodRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	input.CreatedBy = actorID(r, input.CreatedBy)

	period, err := h.periods.CreatePeriod(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create financial period", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PeriodFromDomain(period))
}

// Get returns a financial period by id.
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	period, err := h.periods.GetPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get financial period", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// List lists financial periods ordered by start date.
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.DefaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	periods, err := h.periods.ListPeriods(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list financial periods", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodsFromDomain(periods))
}

// StartClosing moves the period to Initiated.
func (h *PeriodHandler) StartClosing(w http.ResponseWriter, r *http.Request) {
	var req dto.ActorRequest
	if err := decodeOptional(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	h.respond(w, "failed to start closing")(h.periods.StartClosingProcess(r.Context(), chi.URLParam(r, "id"), actorID(r, req.By)))
}

// SetValidationErrors records externally found problems and moves the period to ValidationFailed.
func (h *PeriodHandler) SetValidationErrors(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidationErrorsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	h.respond(w, "failed to record validation errors")(h.periods.SetValidationErrors(r.Context(), chi.URLParam(r, "id"), req.Errors))
}

// Validate runs the closing checks on an initiated period.
func (h *PeriodHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "failed to validate financial period")(h.closing.Validate(r.Context(), chi.URLParam(r, "id")))
}

// PostClosingEntries posts the entries that zero nominal accounts.
func (h *PeriodHandler) PostClosingEntries(w http.ResponseWriter, r *http.Request) {
	var req dto.ActorRequest
	if err := decodeOptional(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	period, entries, err := h.closing.PostClosingEntries(r.Context(), chi.URLParam(r, "id"), actorID(r, req.By))
	if err != nil {
		writeDomainError(w, "failed to post closing entries", err)
		return
	}

	writeJSON(w, http.StatusOK, &dto.ClosingRunResponse{
		Period:         dto.PeriodFromDomain(period),
		ClosingEntries: dto.JournalEntriesFromDomain(entries),
		Steps:          []string{string(period.ClosingStatus())},
	})
}

// Close completes the closing process.
func (h *PeriodHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req dto.ActorRequest
	if err := decodeOptional(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	h.respond(w, "failed to close financial period")(h.periods.Close(r.Context(), chi.URLParam(r, "id"), actorID(r, req.By)))
}

// Rollback returns an in-flight closing process to NotStarted.
func (h *PeriodHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	h.respond(w, "failed to roll back closing")(h.periods.RollBackClosingProcess(r.Context(), chi.URLParam(r, "id"), req.Reason))
}

// Reopen reopens a closed period.
func (h *PeriodHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	h.respond(w, "failed to reopen financial period")(h.periods.ReopenPeriod(r.Context(), chi.URLParam(r, "id"), actorID(r, req.By), req.Reason))
}

// RunClosing drives the period through every remaining closing step.
func (h *PeriodHandler) RunClosing(w http.ResponseWriter, r *http.Request) {
	var req dto.ActorRequest
	if err := decodeOptional(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	result, err := h.closing.RunClosing(r.Context(), chi.URLParam(r, "id"), actorID(r, req.By))
	if err != nil {
		writeDomainError(w, "failed to run closing", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClosingRunFromDomain(result))
}

func (h *PeriodHandler) respond(w http.ResponseWriter, message string) func(*domain.FinancialPeriod, error) {
	return func(period *domain.FinancialPeriod, err error) {
		if err != nil {
			writeDomainError(w, message, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
	}
}
