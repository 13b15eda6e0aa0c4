package domain

import (
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusDue     TransactionStatus = "due"
	TransactionStatusPartial TransactionStatus = "partial"
	TransactionStatusPaid    TransactionStatus = "paid"
)

// TransactionRecord is one billing period's due/paid amounts and audit
// trail for a participant. The upstream API owns it; the gateway holds a
// cached copy per session and only ever mutates that copy as an
// optimistic projection.
type TransactionRecord struct {
	ID         string            `json:"id"`
	Month      string            `json:"month"` // YYYY-MM
	DueAmount  decimal.Decimal   `json:"dueAmount"`
	PaidAmount decimal.Decimal   `json:"paidAmount"`
	Status     TransactionStatus `json:"status"`
	Logs       []LedgerLogEntry  `json:"logs"`
	PaymentLog []LedgerLogEntry  `json:"paymentLog"`
}

// DeriveStatus computes the status from the amounts. The upstream status
// field is treated as a hint only; displayed status is always recomputed
// from here after any mutation.
func DeriveStatus(due, paid decimal.Decimal) TransactionStatus {
	switch {
	case due.Sub(paid).LessThanOrEqual(decimal.Zero):
		return TransactionStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return TransactionStatusPartial
	default:
		return TransactionStatusDue
	}
}

// RecomputeStatus refreshes the derived status in place.
func (r *TransactionRecord) RecomputeStatus() {
	r.Status = DeriveStatus(r.DueAmount, r.PaidAmount)
}

// Clone deep-copies the record, including both log slices. Snapshots for
// rollback must not share backing arrays with the live record.
func (r *TransactionRecord) Clone() *TransactionRecord {
	c := *r
	c.Logs = append([]LedgerLogEntry(nil), r.Logs...)
	c.PaymentLog = append([]LedgerLogEntry(nil), r.PaymentLog...)
	return &c
}

// RollupTotals is the aggregate due/paid summary across a participant's
// cached transactions.
type RollupTotals struct {
	TotalDue  decimal.Decimal `json:"totalDue"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
}
