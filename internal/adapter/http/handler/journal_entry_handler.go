package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/glcore/internal/adapter/http/dto"
	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// JournalService describes the journal entry use cases used by the handler.
type JournalService interface {
	CreateJournalEntry(ctx context.Context, input usecase.CreateJournalEntryInput) (*domain.JournalEntry, error)
	AddLine(ctx context.Context, entryID string, input usecase.LineInput) (domain.JournalEntryLine, error)
	RemoveLine(ctx context.Context, entryID, lineID string) (*domain.JournalEntry, error)
	SubmitForApproval(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	Approve(ctx context.Context, entryID, approvedBy string) (*domain.JournalEntry, error)
	Reject(ctx context.Context, entryID, rejectedBy, reason string) (*domain.JournalEntry, error)
	Post(ctx context.Context, entryID, postedBy string) (*domain.JournalEntry, error)
	Reverse(ctx context.Context, entryID string, input usecase.ReverseInput) (*domain.JournalEntry, error)
	GetJournalEntry(ctx context.Context, id string) (*domain.JournalEntry, error)
	GetJournalEntryByNumber(ctx context.Context, number string) (*domain.JournalEntry, error)
	ListJournalEntries(ctx context.Context, filter usecase.JournalEntryFilter) ([]*domain.JournalEntry, error)
}

// JournalEntryHandler handles journal entry HTTP requests.
type JournalEntryHandler struct {
	journal JournalService
}

// NewJournalEntryHandler creates a new JournalEntryHandler.
func NewJournalEntryHandler(journal JournalService) *JournalEntryHandler {
	return &JournalEntryHandler{journal: journal}
}

// Create creates a draft journal entry.
func (h *JournalEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJournalEntryRequest
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

	entry, err := h.journal.CreateJournalEntry(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create journal entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalEntryFromDomain(entry))
}

// Get returns a journal entry by id.
func (h *JournalEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.GetJournalEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get journal entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// List lists journal entries. A number query parameter looks up one entry.
func (h *JournalEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if number := q.Get("number"); number != "" {
		entry, err := h.journal.GetJournalEntryByNumber(r.Context(), number)
		if err != nil {
			writeDomainError(w, "failed to get journal entry", err)
			return
		}
		writeJSON(w, http.StatusOK, []*dto.JournalEntryResponse{dto.JournalEntryFromDomain(entry)})
		return
	}

	filter := usecase.JournalEntryFilter{
		Status:            domain.JournalEntryStatus(q.Get("status")),
		EntryType:         domain.JournalEntryType(q.Get("entry_type")),
		FinancialPeriodID: q.Get("financial_period_id"),
		ModuleSource:      q.Get("module_source"),
		Limit:             parseIntQuery(r, "limit", usecase.DefaultListLimit),
		Offset:            parseIntQuery(r, "offset", 0),
	}
	if v := q.Get("from"); v != "" {
		from, err := dto.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'from' parameter", err.Error())
			return
		}
		filter.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := dto.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'to' parameter", err.Error())
			return
		}
		filter.To = &to
	}

	entries, err := h.journal.ListJournalEntries(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list journal entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntriesFromDomain(entries))
}

// AddLine appends a line to a draft entry.
func (h *JournalEntryHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req dto.LineRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	line, err := h.journal.AddLine(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to add line", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LineFromDomain(line))
}

// RemoveLine removes a line from a draft entry.
func (h *JournalEntryHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.RemoveLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"))
	if err != nil {
		writeDomainError(w, "failed to remove line", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// Submit moves a draft entry to pending approval.
func (h *JournalEntryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.SubmitForApproval(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to submit journal entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// Approve approves a pending entry.
func (h *JournalEntryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req dto.ActorRequest
	if err := decodeOptional(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	entry, err := h.journal.Approve(r.Context(), chi.URLParam(r, "id"), actorID(r, req.By))
	if err != nil {
		writeDomainError(w, "failed to approve journal entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// Reject rejects a pending entry.
func (h *JournalEntryHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req dto.RejectRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	entry, err := h.journal.Reject(r.Context(), chi.URLParam(r, "id"), actorID(r, req.By), req.Reason)
	if err != nil {
		writeDomainError(w, "failed to reject journal entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// Post posts an approved entry to the ledger.
func (h *JournalEntryHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.ActorRequest
	if err := decodeOptional(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	entry, err := h.journal.Post(r.Context(), chi.URLParam(r, "id"), actorID(r, req.By))
	if err != nil {
		writeDomainError(w, "failed to post journal entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// Reverse posts a reversal of a posted entry and returns the new entry.
func (h *JournalEntryHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	var req dto.ReverseRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	input, err := req.ToUseCaseInput(actorID(r, req.By))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reversal, err := h.journal.Reverse(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, "failed to reverse journal entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalEntryFromDomain(reversal))
}
