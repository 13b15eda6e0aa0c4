package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrAmountExceedsDue   = errors.New("amount exceeds due amount")
	ErrPaymentInFlight    = errors.New("payment already in flight for this transaction")
	ErrParticipantBlocked = errors.New("participant already blocked")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotLoaded   = errors.New("session not loaded")
)
