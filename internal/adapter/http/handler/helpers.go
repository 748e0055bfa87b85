package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/iho/glcore/internal/adapter/http/dto"
	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it with any structured details.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	resp := dto.ErrorResponse{Error: message, Message: err.Error()}

	var verr *dto.ValidationError
	var cverr *usecase.ClosingValidationError
	switch {
	case errors.As(err, &verr):
		resp.Details = verr.Fields
	case errors.As(err, &cverr):
		resp.Details = cverr.Errors
	}

	writeJSON(w, mapDomainError(err), resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrPeriodClosed),
		errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrDuplicateNumber),
		errors.Is(err, domain.ErrDuplicatePeriodCode),
		errors.Is(err, domain.ErrOverlappingPeriod),
		errors.Is(err, usecase.ErrClosingValidationFailed),
		errors.Is(err, domain.ErrInconsistentLedger),
		errors.Is(err, usecase.ErrChartReadOnly):
		return http.StatusConflict
	case errors.Is(err, domain.ErrImbalancedEntry),
		errors.Is(err, domain.ErrInsufficientLines),
		errors.Is(err, domain.ErrEntryDateOutsidePeriod):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrInvalidEntryNumber),
		errors.Is(err, domain.ErrInvalidEntryType),
		errors.Is(err, domain.ErrInvalidPeriodCode),
		errors.Is(err, domain.ErrInvalidPeriodDates),
		errors.Is(err, domain.ErrTextTooLong),
		errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, domain.ErrActorRequired),
		errors.Is(err, domain.ErrRequiredFieldMissing),
		errors.Is(err, usecase.ErrUnknownRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeRequest decodes and validates a JSON body into req.
func decodeRequest(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return &dto.ValidationError{Fields: []string{fmt.Sprintf("body: %v", err)}}
	}
	return dto.Validate(req)
}

// decodeOptional is decodeRequest for bodies that may be empty.
func decodeOptional(r *http.Request, req any) error {
	if r.Body == nil {
		return dto.Validate(req)
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return &dto.ValidationError{Fields: []string{fmt.Sprintf("body: %v", err)}}
	}
	return dto.Validate(req)
}

// actorID prefers the explicit actor from the body over the request actor.
func actorID(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	actor, _ := domain.ActorFromContext(r.Context())
	return actor.ID
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
