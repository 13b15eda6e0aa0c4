package ledger

import (
	"sort"

	"github.com/edunest/admin-ledger/internal/domain"
)

// ExclusionSet names the log kinds a view suppresses.
type ExclusionSet map[domain.LogKind]struct{}

func NewExclusionSet(kinds ...domain.LogKind) ExclusionSet {
	set := make(ExclusionSet, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}

func (s ExclusionSet) Excludes(kind domain.LogKind) bool {
	_, ok := s[kind]
	return ok
}

// RecordViewExclusions hides entries that only exist for upstream
// bookkeeping. Per-record views still show commission-calculated rows.
var RecordViewExclusions = NewExclusionSet(domain.LogKindCommissionPaymentMade)

// AggregateViewExclusions additionally hides commission-calculated rows:
// in a cross-record listing they would repeat once per month and drown
// the payments.
var AggregateViewExclusions = NewExclusionSet(
	domain.LogKindCommissionPaymentMade,
	domain.LogKindCommissionCalculated,
)

// MergeLogs flattens a record's two audit trails into one sequence:
// logs first, then paymentLog, minus excluded kinds, sorted newest
// first. Entries with equal timestamps keep their input order. Entries
// are never deduplicated; the two collections use disjoint id spaces.
func MergeLogs(rec domain.TransactionRecord, exclude ExclusionSet) []domain.LedgerLogEntry {
	merged := make([]domain.LedgerLogEntry, 0, len(rec.Logs)+len(rec.PaymentLog))
	for _, e := range rec.Logs {
		if !exclude.Excludes(e.Kind()) {
			merged = append(merged, e)
		}
	}
	for _, e := range rec.PaymentLog {
		if !exclude.Excludes(e.Kind()) {
			merged = append(merged, e)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].OccurredAt().After(merged[j].OccurredAt())
	})
	return merged
}

// MergeAll merges the logs of several records into one sequence, newest
// first. Used by the cross-record "all transactions" view.
func MergeAll(records []domain.TransactionRecord, exclude ExclusionSet) []domain.LedgerLogEntry {
	var merged []domain.LedgerLogEntry
	for _, rec := range records {
		for _, e := range rec.Logs {
			if !exclude.Excludes(e.Kind()) {
				merged = append(merged, e)
			}
		}
		for _, e := range rec.PaymentLog {
			if !exclude.Excludes(e.Kind()) {
				merged = append(merged, e)
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].OccurredAt().After(merged[j].OccurredAt())
	})
	return merged
}
