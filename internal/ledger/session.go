package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/logging"
)

type upstreamClient interface {
	ListTransactions(ctx context.Context, participantID string) ([]domain.TransactionRecord, error)
	GetTransaction(ctx context.Context, id string) (*domain.TransactionRecord, error)
	PatchPayment(ctx context.Context, id string, amount decimal.Decimal, note string) error
	GetParticipant(ctx context.Context, id string) (*domain.Participant, error)
	CloseParticipant(ctx context.Context, id string, totalPaid decimal.Decimal) error
}

type notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// IntentOutcome is the journal's view of where a submitted intent ended
// up.
type IntentOutcome string

const (
	OutcomeSubmitted  IntentOutcome = "submitted"
	OutcomeReconciled IntentOutcome = "reconciled"
	OutcomeRolledBack IntentOutcome = "rolled_back"
)

type intentJournal interface {
	Record(ctx context.Context, participantID string, intent domain.PaymentIntent, outcome IntentOutcome) error
}

// Session holds one participant's cached ledger: the transaction
// records, the participant rollup, and the in-flight markers that keep
// a second submission off a record while one is pending. All mutations
// are optimistic projections; the upstream copy is authoritative and
// wins on every reconciliation.
type Session struct {
	participantID string
	client        upstreamClient
	notify        notifier
	journal       intentJournal
	now           func() time.Time

	mu          sync.Mutex
	loaded      bool
	participant *domain.Participant
	records     map[string]*domain.TransactionRecord
	inflight    map[string]struct{}
	rollup      domain.RollupTotals
}

func NewSession(participantID string, client upstreamClient, notify notifier, journal intentJournal, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		participantID: participantID,
		client:        client,
		notify:        notify,
		journal:       journal,
		now:           now,
		records:       make(map[string]*domain.TransactionRecord),
		inflight:      make(map[string]struct{}),
	}
}

// Load fetches the participant and the full transaction list, replacing
// whatever the cache held before.
func (s *Session) Load(ctx context.Context) error {
	participant, err := s.client.GetParticipant(ctx, s.participantID)
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}

	records, err := s.client.ListTransactions(ctx, s.participantID)
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.participant = participant
	s.records = make(map[string]*domain.TransactionRecord, len(records))
	for i := range records {
		rec := records[i]
		rec.RecomputeStatus()
		s.records[rec.ID] = &rec
	}
	s.recomputeRollupLocked()
	s.loaded = true
	return nil
}

// recomputeRollupLocked rebuilds the aggregate totals from the cached
// records. Called after every mutation so the rollup is always a pure
// function of the cache.
func (s *Session) recomputeRollupLocked() {
	rollup := domain.RollupTotals{TotalDue: decimal.Zero, TotalPaid: decimal.Zero}
	for _, rec := range s.records {
		rollup.TotalDue = rollup.TotalDue.Add(rec.DueAmount)
		rollup.TotalPaid = rollup.TotalPaid.Add(rec.PaidAmount)
	}
	s.rollup = rollup
}

// Participant returns a copy of the cached participant rollup.
func (s *Session) Participant() (*domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || s.participant == nil {
		return nil, fmt.Errorf("Participant: %w", domain.ErrSessionNotLoaded)
	}
	return s.participant.Clone(), nil
}

// Rollup returns the aggregate due/paid totals across cached records.
func (s *Session) Rollup() domain.RollupTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollup
}

// Record returns a copy of a cached record by id.
func (s *Session) Record(id string) (*domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("Record: %w", domain.ErrNotFound)
	}
	return rec.Clone(), nil
}

// InFlight reports whether a payment submission is pending for the
// record. The dashboard disables the payment action while true.
func (s *Session) InFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[id]
	return ok
}

// Months buckets the cached records for the given year, ordered from
// today's month wrapping through the calendar.
func (s *Session) Months(year int) []MonthBucket {
	s.mu.Lock()
	records := make([]domain.TransactionRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, *rec.Clone())
	}
	today := s.now()
	s.mu.Unlock()

	return Bucket(records, year, today)
}

// AllTransactions is the cross-record log view: every cached record's
// merged entries, newest first, with the aggregate exclusion set.
func (s *Session) AllTransactions() []domain.LedgerLogEntry {
	s.mu.Lock()
	records := make([]domain.TransactionRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, *rec.Clone())
	}
	s.mu.Unlock()

	// map iteration order is random; fix record order before merging so
	// equal-timestamp entries stay deterministic
	sort.Slice(records, func(i, j int) bool { return records[i].Month < records[j].Month })
	return MergeAll(records, AggregateViewExclusions)
}

func (s *Session) journalIntent(ctx context.Context, intent domain.PaymentIntent, outcome IntentOutcome) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, s.participantID, intent, outcome); err != nil {
		// journaling is best-effort audit, never a reason to fail the payment
		logging.FromContext(ctx).Error("intent journal write failed",
			"transaction_id", intent.TransactionID,
			"outcome", outcome,
			"error", err,
		)
	}
}
