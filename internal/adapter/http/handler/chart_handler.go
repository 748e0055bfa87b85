package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/glcore/internal/adapter/http/dto"
)

// ChartService reads and remaps the chart of accounts.
type ChartService interface {
	Snapshot(ctx context.Context) (map[string]string, []string, error)
	Remap(ctx context.Context, role, accountID string) error
	RemapNominal(ctx context.Context, ids []string) error
}

// ChartHandler exposes the role to account mapping used by closing and module postings.
type ChartHandler struct {
	chart ChartService
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(chart ChartService) *ChartHandler {
	return &ChartHandler{chart: chart}
}

// Get returns the resolved chart.
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	roles, nominal, err := h.chart.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, "failed to read chart of accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChartResponse{Roles: roles, Nominal: nominal})
}

// RemapRole points one role at another account.
func (h *ChartHandler) RemapRole(w http.ResponseWriter, r *http.Request) {
	var req dto.RemapRoleRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	if err := h.chart.Remap(r.Context(), chi.URLParam(r, "role"), req.AccountID); err != nil {
		writeDomainError(w, "failed to remap role", err)
		return
	}

	h.Get(w, r)
}

// RemapNominal replaces the nominal account list.
func (h *ChartHandler) RemapNominal(w http.ResponseWriter, r *http.Request) {
	var req dto.NominalAccountsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	if err := h.chart.RemapNominal(r.Context(), req.AccountIDs); err != nil {
		writeDomainError(w, "failed to remap nominal accounts", err)
		return
	}

	h.Get(w, r)
}
