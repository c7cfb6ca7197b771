package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/etnz/nexus"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// statusOf maps an accounting error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, nexus.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, nexus.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, nexus.ErrInvalidTransaction),
		errors.Is(err, nexus.ErrUnknownPortfolio),
		errors.Is(err, nexus.ErrUnknownKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondErr(w http.ResponseWriter, err error) {
	respondError(w, err.Error(), statusOf(err))
}
