package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name string
		due  string
		paid string
		want TransactionStatus
	}{
		{name: "nothing paid", due: "100", paid: "0", want: TransactionStatusDue},
		{name: "partially paid", due: "60", paid: "40", want: TransactionStatusPartial},
		{name: "fully paid", due: "0", paid: "100", want: TransactionStatusPaid},
		{name: "paid exceeds due", due: "10", paid: "25", want: TransactionStatusPaid},
		{name: "zero due zero paid", due: "0", paid: "0", want: TransactionStatusPaid},
		{name: "fractional remainder", due: "0.01", paid: "99.99", want: TransactionStatusPartial},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(dec(tc.due), dec(tc.paid)))
		})
	}
}

// Status is paid exactly when due - paid <= 0, partial exactly when some
// amount was paid without clearing the balance, due otherwise.
func TestDeriveStatus_Exhaustive(t *testing.T) {
	for due := 0; due <= 5; due++ {
		for paid := 0; paid <= 5; paid++ {
			d := decimal.NewFromInt(int64(due))
			p := decimal.NewFromInt(int64(paid))
			got := DeriveStatus(d, p)

			switch {
			case due-paid <= 0:
				assert.Equal(t, TransactionStatusPaid, got, "due=%d paid=%d", due, paid)
			case paid > 0:
				assert.Equal(t, TransactionStatusPartial, got, "due=%d paid=%d", due, paid)
			default:
				assert.Equal(t, TransactionStatusDue, got, "due=%d paid=%d", due, paid)
			}
		}
	}
}

func TestTransactionRecordClone(t *testing.T) {
	rec := &TransactionRecord{
		ID:         "tx-1",
		Month:      "2024-06",
		DueAmount:  dec("100"),
		PaidAmount: dec("0"),
		Status:     TransactionStatusDue,
		Logs:       []LedgerLogEntry{{ID: "log-1", TransactionType: "commissionCalculated"}},
		PaymentLog: []LedgerLogEntry{{ID: "pay-1", TransactionType: "commissionPayment"}},
	}

	snap := rec.Clone()

	rec.PaidAmount = dec("40")
	rec.PaymentLog = append(rec.PaymentLog, LedgerLogEntry{ID: PendingLogID, IsLoading: true})
	rec.PaymentLog[0].Note = "mutated"

	assert.True(t, snap.PaidAmount.Equal(dec("0")))
	require.Len(t, snap.PaymentLog, 1)
	assert.Empty(t, snap.PaymentLog[0].Note)
}

func TestLedgerLogEntryKind(t *testing.T) {
	assert.Equal(t, LogKindCommissionPayment, LedgerLogEntry{TransactionType: "commissionPayment"}.Kind())
	assert.Equal(t, LogKindProfitPayment, LedgerLogEntry{TransactionType: "profitPayment"}.Kind())
	assert.Equal(t, LogKindGeneric, LedgerLogEntry{TransactionType: "somethingElse"}.Kind())
	assert.Equal(t, LogKindGeneric, LedgerLogEntry{}.Kind())
}

func TestLedgerLogEntryOccurredAt(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fallback := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, created, LedgerLogEntry{CreatedAt: created, Timestamp: fallback}.OccurredAt())
	assert.Equal(t, fallback, LedgerLogEntry{Timestamp: fallback}.OccurredAt())
}

func TestLedgerLogEntryDescribe(t *testing.T) {
	amount := dec("150.50")

	e := LedgerLogEntry{TransactionType: "commissionPayment", PaidAmount: &amount}
	assert.Equal(t, "Commission payment of 150.50", e.Describe())

	g := LedgerLogEntry{TransactionType: "statusChanged", Message: "status set to active"}
	assert.Equal(t, "status set to active", g.Describe())

	n := LedgerLogEntry{Note: "manual adjustment"}
	assert.Equal(t, "manual adjustment", n.Describe())
}

func TestPaymentIntentValidate(t *testing.T) {
	tests := []struct {
		name    string
		intent  PaymentIntent
		due     string
		wantErr error
	}{
		{name: "valid full", intent: PaymentIntent{TransactionID: "tx-1", Amount: dec("100")}, due: "100"},
		{name: "valid partial", intent: PaymentIntent{TransactionID: "tx-1", Amount: dec("40")}, due: "100"},
		{name: "zero amount", intent: PaymentIntent{TransactionID: "tx-1", Amount: dec("0")}, due: "100", wantErr: ErrInvalidAmount},
		{name: "negative amount", intent: PaymentIntent{TransactionID: "tx-1", Amount: dec("-5")}, due: "100", wantErr: ErrInvalidAmount},
		{name: "exceeds due", intent: PaymentIntent{TransactionID: "tx-1", Amount: dec("75")}, due: "50", wantErr: ErrAmountExceedsDue},
		{name: "missing transaction id", intent: PaymentIntent{Amount: dec("10")}, due: "100", wantErr: ErrInvalidRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.intent.Validate(dec(tc.due))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
