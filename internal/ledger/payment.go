package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/logging"
	"github.com/edunest/admin-ledger/internal/upstream"
)

// SubmitPayment runs the full optimistic payment protocol against one
// record:
//
//	Idle -> Submitting -> (Reconciling | RolledBack) -> Idle
//
// The local copy is mutated immediately and a pending log entry is
// appended, so the caller can render the new state before the upstream
// answers. On success the record is re-fetched by id and replaced
// wholesale, which drops the pending entry in favor of the
// server-assigned one. On failure the pre-intent snapshot is restored.
// The returned record is the best known post-payment state.
func (s *Session) SubmitPayment(ctx context.Context, intent domain.PaymentIntent) (*domain.TransactionRecord, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil, fmt.Errorf("SubmitPayment: %w", domain.ErrSessionNotLoaded)
	}
	rec, ok := s.records[intent.TransactionID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("SubmitPayment: %w", domain.ErrNotFound)
	}
	if _, busy := s.inflight[intent.TransactionID]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("SubmitPayment: %w", domain.ErrPaymentInFlight)
	}
	if err := intent.Validate(rec.DueAmount); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("SubmitPayment: %w", err)
	}

	snapshot := rec.Clone()
	s.applyIntentLocked(rec, intent)
	s.inflight[intent.TransactionID] = struct{}{}
	optimistic := rec.Clone()
	s.mu.Unlock()

	defer s.clearInFlight(intent.TransactionID)

	s.journalIntent(ctx, intent, OutcomeSubmitted)

	if err := s.client.PatchPayment(ctx, intent.TransactionID, intent.Amount, intent.Note); err != nil {
		s.restoreRecord(snapshot)
		s.journalIntent(ctx, intent, OutcomeRolledBack)
		s.notify.Error(ctx, upstream.MessageFromError(err))
		return nil, fmt.Errorf("SubmitPayment: %w", err)
	}

	reconciled := s.reconcile(ctx, intent.TransactionID)
	if reconciled == nil {
		reconciled = optimistic
	} else {
		s.journalIntent(ctx, intent, OutcomeReconciled)
	}

	s.notify.Success(ctx, "Payment recorded")
	return reconciled, nil
}

// applyIntentLocked performs the optimistic mutation: totals shift by
// the intent amount, status is recomputed, a pending log entry is
// appended, and the rollup follows.
func (s *Session) applyIntentLocked(rec *domain.TransactionRecord, intent domain.PaymentIntent) {
	rec.PaidAmount = rec.PaidAmount.Add(intent.Amount)
	rec.DueAmount = rec.DueAmount.Sub(intent.Amount)
	if rec.DueAmount.IsNegative() {
		rec.DueAmount = decimal.Zero
	}
	rec.RecomputeStatus()

	amount := intent.Amount
	rec.PaymentLog = append(rec.PaymentLog, domain.LedgerLogEntry{
		ID:              domain.PendingLogID,
		TransactionType: string(s.pendingLogKindLocked()),
		PaidAmount:      &amount,
		Note:            intent.Note,
		CreatedAt:       s.now(),
		IsLoading:       true,
	})

	s.recomputeRollupLocked()
}

// pendingLogKindLocked picks the log kind the upstream will eventually
// assign, so the placeholder row renders like the real one.
func (s *Session) pendingLogKindLocked() domain.LogKind {
	if s.participant != nil && s.participant.Kind == domain.ParticipantKindInvestor {
		return domain.LogKindProfitPayment
	}
	return domain.LogKindCommissionPayment
}

// reconcile re-fetches the record and replaces the cached copy. A nil
// return means the optimistic state stands: either the caller's context
// is gone, the record vanished upstream, or the fetch itself failed. In
// every such case the cache is left in a state the next full Load will
// correct.
func (s *Session) reconcile(ctx context.Context, id string) *domain.TransactionRecord {
	log := logging.FromContext(ctx)

	fresh, err := s.client.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// deleted concurrently upstream; evict rather than show a
			// record that no longer exists
			log.Warn("record gone during reconciliation, evicting", "transaction_id", id)
			s.mu.Lock()
			delete(s.records, id)
			s.recomputeRollupLocked()
			s.mu.Unlock()
			return nil
		}
		log.Error("reconciliation fetch failed, keeping optimistic state",
			"transaction_id", id,
			"error", err,
		)
		return nil
	}

	if ctx.Err() != nil {
		// caller has gone away; do not apply a stale result
		return nil
	}

	fresh.RecomputeStatus()

	s.mu.Lock()
	s.records[id] = fresh
	s.recomputeRollupLocked()
	s.mu.Unlock()

	return fresh.Clone()
}

func (s *Session) restoreRecord(snapshot *domain.TransactionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[snapshot.ID] = snapshot
	s.recomputeRollupLocked()
}

func (s *Session) clearInFlight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}
