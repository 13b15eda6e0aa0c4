package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentIntent is the ephemeral request to record a payment against a
// transaction. It is validated client-side before anything is sent
// upstream; the upstream API re-validates on its own.
type PaymentIntent struct {
	TransactionID string
	Amount        decimal.Decimal
	Note          string
}

// Validate enforces 0 < amount <= due. A violation blocks submission
// entirely: no local mutation, no network call.
func (i PaymentIntent) Validate(due decimal.Decimal) error {
	if i.TransactionID == "" {
		return fmt.Errorf("PaymentIntent.Validate: transaction id required: %w", ErrInvalidRequest)
	}
	if i.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("PaymentIntent.Validate: %w", ErrInvalidAmount)
	}
	if i.Amount.GreaterThan(due) {
		return fmt.Errorf("PaymentIntent.Validate: %w", ErrAmountExceedsDue)
	}
	return nil
}
