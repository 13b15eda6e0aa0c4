package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PendingLogID marks a client-synthesized log entry awaiting the
// server-assigned id. Reconciliation replaces such entries wholesale;
// they are never merged with upstream entries.
const PendingLogID = "pending"

type LogKind string

const (
	LogKindCommissionPayment     LogKind = "commissionPayment"
	LogKindProfitPayment         LogKind = "profitPayment"
	LogKindCommissionCalculated  LogKind = "commissionCalculated"
	LogKindCommissionPaymentMade LogKind = "commissionPaymentMade"
	LogKindGeneric               LogKind = "generic"
)

type LedgerLogEntry struct {
	ID              string           `json:"id"`
	TransactionType string           `json:"transactionType"`
	PaidAmount      *decimal.Decimal `json:"paidAmount,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Note            string           `json:"note,omitempty"`
	Message         string           `json:"message,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	Timestamp       time.Time        `json:"timestamp"`
	IsLoading       bool             `json:"isLoading,omitempty"`
}

// Kind maps the free-form upstream type tag onto the closed set the
// gateway formats and filters on. Unknown tags fold into LogKindGeneric.
func (e LedgerLogEntry) Kind() LogKind {
	switch LogKind(e.TransactionType) {
	case LogKindCommissionPayment, LogKindProfitPayment,
		LogKindCommissionCalculated, LogKindCommissionPaymentMade:
		return LogKind(e.TransactionType)
	default:
		return LogKindGeneric
	}
}

// OccurredAt returns the sort timestamp: CreatedAt, falling back to
// Timestamp when upstream omitted CreatedAt.
func (e LedgerLogEntry) OccurredAt() time.Time {
	if !e.CreatedAt.IsZero() {
		return e.CreatedAt
	}
	return e.Timestamp
}

// EntryAmount returns the monetary delta the entry records, preferring
// paidAmount over the metadata amount field.
func (e LedgerLogEntry) EntryAmount() decimal.Decimal {
	if e.PaidAmount != nil {
		return *e.PaidAmount
	}
	if e.Amount != nil {
		return *e.Amount
	}
	return decimal.Zero
}

// Describe formats the entry for display. This is the single formatter
// for all log kinds; views must not branch on the raw type tag.
func (e LedgerLogEntry) Describe() string {
	switch e.Kind() {
	case LogKindCommissionPayment:
		return fmt.Sprintf("Commission payment of %s", e.EntryAmount().StringFixed(2))
	case LogKindProfitPayment:
		return fmt.Sprintf("Profit payment of %s", e.EntryAmount().StringFixed(2))
	case LogKindCommissionCalculated:
		return fmt.Sprintf("Commission calculated: %s", e.EntryAmount().StringFixed(2))
	case LogKindCommissionPaymentMade:
		return fmt.Sprintf("Commission payment recorded: %s", e.EntryAmount().StringFixed(2))
	default:
		if e.Message != "" {
			return e.Message
		}
		return e.Note
	}
}
