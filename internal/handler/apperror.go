package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrForbiddenRole      = &AppError{http.StatusForbidden, "FORBIDDEN_ROLE", "Role is not allowed to perform this action"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount      = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrAmountExceedsDue   = &AppError{http.StatusUnprocessableEntity, "AMOUNT_EXCEEDS_DUE", "Amount exceeds the outstanding balance"}
	ErrPaymentInFlight    = &AppError{http.StatusConflict, "PAYMENT_IN_FLIGHT", "A payment for this transaction is already being processed"}
	ErrParticipantBlocked = &AppError{http.StatusUnprocessableEntity, "PARTICIPANT_BLOCKED", "Account is already closed"}
	ErrUpstreamFailure    = &AppError{http.StatusBadGateway, "UPSTREAM_ERROR", "The admin API rejected the request"}

	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
