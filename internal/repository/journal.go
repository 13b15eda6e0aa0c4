package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/ledger"
)

const journalColumns = `id, participant_id, transaction_id, amount, note, outcome, created_at`

// JournalEntry is one row of the payment intent audit trail: what an
// operator tried to submit and where the protocol left it.
type JournalEntry struct {
	ID            uuid.UUID
	ParticipantID string
	TransactionID string
	Amount        decimal.Decimal
	Note          string
	Outcome       ledger.IntentOutcome
	CreatedAt     time.Time
}

// JournalRepository persists payment intents. Every submission writes a
// row per protocol transition, so a rolled-back payment leaves a
// submitted row and a rolled_back row.
type JournalRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db, now: time.Now}
}

func (r *JournalRepository) Record(ctx context.Context, participantID string, intent domain.PaymentIntent, outcome ledger.IntentOutcome) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO intent_journal (id, participant_id, transaction_id, amount, note, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), participantID, intent.TransactionID,
		intent.Amount, intent.Note, string(outcome), r.now(),
	)
	if err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	return nil
}

func (r *JournalRepository) ListByParticipant(ctx context.Context, participantID string) ([]JournalEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM intent_journal
		WHERE participant_id = $1 ORDER BY created_at`, participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByParticipant: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByParticipant: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByParticipant: rows: %w", err)
	}
	return entries, nil
}

func scanJournalEntry(s scanner) (*JournalEntry, error) {
	var e JournalEntry
	var outcome string
	err := s.Scan(
		&e.ID, &e.ParticipantID, &e.TransactionID, &e.Amount,
		&e.Note, &outcome, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Outcome = ledger.IntentOutcome(outcome)
	return &e, nil
}
