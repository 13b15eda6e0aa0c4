package ledger

import (
	"fmt"
	"time"

	"github.com/edunest/admin-ledger/internal/domain"
)

// MonthBucket is one calendar month of a participant's ledger for the
// selected year.
type MonthBucket struct {
	Name   string                   `json:"month"`
	Key    string                   `json:"key"` // YYYY-MM
	Record domain.TransactionRecord `json:"record"`
}

// MonthOrder returns the twelve month names as a cyclic rotation of the
// January-December order, starting at today's month. If today is April
// the order runs April..December, January..March.
func MonthOrder(today time.Time) []string {
	start := int(today.Month())
	order := make([]string, 0, 12)
	for i := range 12 {
		m := (start-1+i)%12 + 1
		order = append(order, time.Month(m).String())
	}
	return order
}

// Bucket groups records by their YYYY-MM key for the given year and
// returns the buckets in display order: rotated to start at today's
// real month, wrapping December into January, months without a record
// omitted. Duplicate keys resolve last-write-wins.
//
// The rotation is anchored to today even when the selected year is not
// the current one; that mirrors how the dashboard has always laid out
// past years.
func Bucket(records []domain.TransactionRecord, year int, today time.Time) []MonthBucket {
	prefix := fmt.Sprintf("%04d-", year)
	byKey := make(map[string]domain.TransactionRecord, len(records))
	for _, r := range records {
		if len(r.Month) >= len(prefix) && r.Month[:len(prefix)] == prefix {
			byKey[r.Month] = r
		}
	}

	start := int(today.Month())
	buckets := make([]MonthBucket, 0, len(byKey))
	for i := range 12 {
		m := (start-1+i)%12 + 1
		key := fmt.Sprintf("%04d-%02d", year, m)
		rec, ok := byKey[key]
		if !ok {
			continue
		}
		buckets = append(buckets, MonthBucket{
			Name:   time.Month(m).String(),
			Key:    key,
			Record: rec,
		})
	}
	return buckets
}
