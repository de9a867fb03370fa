package helpers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"devevents/internal/domain"
)

// WriteServiceError classifies err from a service call and writes the
// matching error envelope. Unclassified errors are logged and reported as 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		validation   *domain.ValidationError
		conflict     *domain.ConflictError
		reference    *domain.ReferenceError
		connectivity *domain.ConnectivityError
	)
	switch {
	case errors.As(err, &validation):
		WriteJSONErrorFields(w, http.StatusBadRequest, ErrCodeValidationFailed, validation.Error(), validation.Map())
	case errors.As(err, &conflict):
		WriteJSONErrorFields(w, http.StatusConflict, ErrCodeConflict, conflict.Error(),
			map[string]string{conflict.Field: conflict.Value})
	case errors.As(err, &reference):
		WriteJSONErrorFields(w, http.StatusUnprocessableEntity, ErrCodeInvalidReference, reference.Error(),
			map[string]string{reference.Field: "referenced event does not exist"})
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "event not found")
	case errors.As(err, &connectivity):
		logger.WarnContext(r.Context(), "database unavailable", "path", r.URL.Path, "err", err)
		WriteJSONError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, connectivity.Error())
	case errors.Is(err, domain.ErrMissingDatabaseURI):
		logger.ErrorContext(r.Context(), "database is not configured", "path", r.URL.Path)
		WriteJSONError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "database is not configured")
	case errors.Is(err, context.DeadlineExceeded):
		logger.WarnContext(r.Context(), "request timed out", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "request timed out")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
