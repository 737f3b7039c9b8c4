package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json"

	msgInternalError   = "Internal server error"
	msgUnauthorized    = "Unauthorized"
	msgForbidden       = "Forbidden"
	msgInvalidJSON     = "Invalid request body"
	msgTooManyRequests = "Too many requests"
)

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps an error onto the response taxonomy. notFound is the
// message used for a missing resource. Anything unexpected is logged and
// reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var validationErr *apperrors.ValidationError
	switch {
	case apperrors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case apperrors.Is(err, apperrors.ErrUnauthenticated), apperrors.Is(err, apperrors.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	case apperrors.Is(err, apperrors.ErrForbidden):
		writeError(w, http.StatusForbidden, msgForbidden)
	case apperrors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// decodeJSON reads the request body into v, rejecting unknown shapes with a validation error
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Invalid(msgInvalidJSON)
	}
	return nil
}
