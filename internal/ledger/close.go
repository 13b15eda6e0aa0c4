package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/logging"
	"github.com/edunest/admin-ledger/internal/upstream"
)

// CloseAccount settles the participant's outstanding balance into
// totalPaid, zeroes the open amounts and blocks the account, optimistic
// first, then via a single PATCH. A successful close re-fetches the
// participant the same way a payment reconciles its record; a failed
// PATCH restores the snapshot.
func (s *Session) CloseAccount(ctx context.Context) (*domain.Participant, error) {
	s.mu.Lock()
	if !s.loaded || s.participant == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("CloseAccount: %w", domain.ErrSessionNotLoaded)
	}
	if s.participant.Status == domain.ParticipantStatusBlocked {
		s.mu.Unlock()
		return nil, fmt.Errorf("CloseAccount: %w", domain.ErrParticipantBlocked)
	}

	snapshot := s.participant.Clone()

	p := s.participant
	p.TotalPaid = p.TotalPaid.Add(p.TotalDue)
	p.TotalDue = decimal.Zero
	p.Amount = decimal.Zero
	p.Status = domain.ParticipantStatusBlocked
	totalPaid := p.TotalPaid
	s.mu.Unlock()

	if err := s.client.CloseParticipant(ctx, s.participantID, totalPaid); err != nil {
		s.mu.Lock()
		s.participant = snapshot
		s.mu.Unlock()
		s.notify.Error(ctx, upstream.MessageFromError(err))
		return nil, fmt.Errorf("CloseAccount: %w", err)
	}

	s.notify.Success(ctx, "Account closed")

	fresh, err := s.client.GetParticipant(ctx, s.participantID)
	if err != nil || ctx.Err() != nil {
		if err != nil {
			logging.FromContext(ctx).Warn("participant re-fetch after close failed, keeping optimistic state",
				"participant_id", s.participantID,
				"error", err,
			)
		}
		s.mu.Lock()
		out := s.participant.Clone()
		s.mu.Unlock()
		return out, nil
	}

	s.mu.Lock()
	s.participant = fresh
	out := fresh.Clone()
	s.mu.Unlock()
	return out, nil
}
