package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/brokerops/commissions/internal/adapter/http/dto"
	"github.com/brokerops/commissions/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes. Duplicate
// submissions and illegal state transitions are conflicts, not bad
// requests: the payload was fine, the timing was not.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrLineItemNotFound),
		errors.Is(err, domain.ErrBatchNotFound),
		errors.Is(err, domain.ErrCapPolicyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateDeal),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrAlreadyReversed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSalePrice),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidSplit),
		errors.Is(err, domain.ErrMissingDealID),
		errors.Is(err, domain.ErrMissingAgentID),
		errors.Is(err, domain.ErrMissingCloseDate),
		errors.Is(err, domain.ErrRateTooHigh),
		errors.Is(err, domain.ErrSalePriceTooLarge),
		errors.Is(err, domain.ErrNotReversible),
		errors.Is(err, domain.ErrInvalidCapAmount),
		errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
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

// parseTimeQuery parses an RFC 3339 query parameter with a default value.
func parseTimeQuery(r *http.Request, key string, defaultValue time.Time) time.Time {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return defaultValue
	}
	return t
}
