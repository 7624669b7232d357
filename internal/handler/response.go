package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the error
// bodies stay uniform:
//
//	shape error    400 {"error": "Validation failed", "details": [{field, message, type}]}
//	domain error   400 {"error": "Validation failed", "details": "<message>"}
//	duplicate      400 {"detail": "Email already registered"}
//	unauthorized   401 {"detail": "..."} + WWW-Authenticate: Bearer
//	anything else  500 {"error": "Internal Server Error", "message": "..."}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/daily-real/internal/apperror"
	"github.com/sakif/daily-real/internal/auth"
	"github.com/sakif/daily-real/internal/errutil"
)

const (
	validationFailed    = "Validation failed"
	internalServerError = "Internal Server Error"
	internalMessage     = "An unexpected error occurred. Please try again later."
)

// ErrorResponse is the body for validation and internal failures.
// Details is either a []apperror.FieldError or a single message string.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// DetailResponse is the body for duplicate, not-found and auth failures.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// writeJSON sends data as JSON with the given status code.
// Headers must be set before WriteHeader; anything set afterwards is dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps err to a status code and body.
//
// Only errors carrying an apperror kind are shown to the client. Anything
// else is logged with its oops context and answered with a generic 500, so
// SQL text and file paths never leak.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		errutil.LogError(logger, "request failed", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   internalServerError,
			Message: internalMessage,
		})
		return
	}

	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		auth.WriteUnauthorized(w, appErr.Message)

	case errors.Is(err, apperror.ErrValidation):
		details := appErr.Details
		if len(details) == 0 {
			details = []apperror.FieldError{{Field: appErr.Field, Message: appErr.Message, Type: "value_error"}}
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationFailed, Details: details})

	case errors.Is(err, apperror.ErrDomain):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationFailed, Details: appErr.Message})

	case errors.Is(err, apperror.ErrConflict):
		writeJSON(w, http.StatusBadRequest, DetailResponse{Detail: appErr.Message})

	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, DetailResponse{Detail: appErr.Message})

	default:
		errutil.LogError(logger, "request failed", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   internalServerError,
			Message: internalMessage,
		})
	}
}
