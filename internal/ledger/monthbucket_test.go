package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunest/admin-ledger/internal/domain"
)

func TestMonthOrder(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  []string
	}{
		{
			name:  "january keeps calendar order",
			today: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: []string{
				"January", "February", "March", "April", "May", "June",
				"July", "August", "September", "October", "November", "December",
			},
		},
		{
			name:  "june rotates and wraps",
			today: time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
			want: []string{
				"June", "July", "August", "September", "October", "November",
				"December", "January", "February", "March", "April", "May",
			},
		},
		{
			name:  "december wraps immediately",
			today: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
			want: []string{
				"December", "January", "February", "March", "April", "May",
				"June", "July", "August", "September", "October", "November",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthOrder(tt.today)
			require.Len(t, got, 12)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucket(t *testing.T) {
	june := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	rec := func(id, month string) domain.TransactionRecord {
		return domain.TransactionRecord{ID: id, Month: month}
	}

	t.Run("orders present months from today, wrapping", func(t *testing.T) {
		records := []domain.TransactionRecord{
			rec("t1", "2024-03"),
			rec("t2", "2024-09"),
		}

		buckets := Bucket(records, 2024, june)
		require.Len(t, buckets, 2)
		assert.Equal(t, "September", buckets[0].Name)
		assert.Equal(t, "2024-09", buckets[0].Key)
		assert.Equal(t, "t2", buckets[0].Record.ID)
		assert.Equal(t, "March", buckets[1].Name)
		assert.Equal(t, "t1", buckets[1].Record.ID)
	})

	t.Run("filters other years", func(t *testing.T) {
		records := []domain.TransactionRecord{
			rec("t1", "2023-07"),
			rec("t2", "2024-07"),
			rec("t3", "2025-07"),
		}

		buckets := Bucket(records, 2024, june)
		require.Len(t, buckets, 1)
		assert.Equal(t, "t2", buckets[0].Record.ID)
	})

	t.Run("duplicate keys resolve last-write-wins", func(t *testing.T) {
		records := []domain.TransactionRecord{
			rec("stale", "2024-08"),
			rec("fresh", "2024-08"),
		}

		buckets := Bucket(records, 2024, june)
		require.Len(t, buckets, 1)
		assert.Equal(t, "fresh", buckets[0].Record.ID)
	})

	t.Run("empty input yields no buckets", func(t *testing.T) {
		assert.Empty(t, Bucket(nil, 2024, june))
	})

	t.Run("rotation anchors to today even for past years", func(t *testing.T) {
		records := []domain.TransactionRecord{
			rec("t1", "2022-01"),
			rec("t2", "2022-11"),
		}

		buckets := Bucket(records, 2022, june)
		require.Len(t, buckets, 2)
		assert.Equal(t, "November", buckets[0].Name)
		assert.Equal(t, "January", buckets[1].Name)
	})
}
