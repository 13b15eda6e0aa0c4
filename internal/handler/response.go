package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/upstream"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps ledger sentinels and upstream failures onto
// the wire taxonomy. Unrecognized errors become 500s and are logged;
// they never leak internals to the client.
func RespondDomainError(w http.ResponseWriter, err error) {
	var appErr *AppError

	var upErr *upstream.Error
	switch {
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrInvalidAmount):
		appErr = ErrInvalidAmount
	case errors.Is(err, domain.ErrAmountExceedsDue):
		appErr = ErrAmountExceedsDue
	case errors.Is(err, domain.ErrPaymentInFlight):
		appErr = ErrPaymentInFlight
	case errors.Is(err, domain.ErrParticipantBlocked):
		appErr = ErrParticipantBlocked
	case errors.Is(err, domain.ErrInvalidCredentials):
		appErr = ErrInvalidCredentials
	case errors.Is(err, domain.ErrInvalidRequest):
		appErr = ErrInvalidRequest
	case errors.Is(err, domain.ErrSessionNotLoaded):
		appErr = ErrInternalError
	case errors.As(err, &upErr):
		// surface the upstream message verbatim, the way the dashboard
		// toasts it
		appErr = &AppError{
			Status:  ErrUpstreamFailure.Status,
			Code:    ErrUpstreamFailure.Code,
			Message: upErr.Message,
		}
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
