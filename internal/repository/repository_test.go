package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/ledger"
)

func TestOperatorRepositoryGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewOperatorRepository(db)

	t.Run("found", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`SELECT id, email, name, password_hash, role, created_at FROM operators WHERE email = \$1`).
			WithArgs("ada@edunest.io").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "created_at"}).
				AddRow(id, "ada@edunest.io", "Ada", "$2a$10$hash", "accounts", time.Now()))

		op, err := repo.GetByEmail(context.Background(), "ada@edunest.io")
		require.NoError(t, err)
		assert.Equal(t, id, op.ID)
		assert.Equal(t, domain.RoleAccounts, op.Role)
		assert.True(t, op.Role.CanMutate())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, email, name, password_hash, role, created_at FROM operators WHERE email = \$1`).
			WithArgs("ghost@edunest.io").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "created_at"}))

		_, err := repo.GetByEmail(context.Background(), "ghost@edunest.io")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJournalRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewJournalRepository(db)

	t.Run("record inserts one row per transition", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO intent_journal`).
			WithArgs(sqlmock.AnyArg(), "agent-1", "tx-1", sqlmock.AnyArg(), "june instalment", "submitted", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Record(context.Background(), "agent-1", domain.PaymentIntent{
			TransactionID: "tx-1",
			Amount:        decimal.NewFromInt(30),
			Note:          "june instalment",
		}, ledger.OutcomeSubmitted)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list by participant", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT id, participant_id, transaction_id, amount, note, outcome, created_at FROM intent_journal`).
			WithArgs("agent-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "transaction_id", "amount", "note", "outcome", "created_at"}).
				AddRow(uuid.New(), "agent-1", "tx-1", "30", "", "submitted", now).
				AddRow(uuid.New(), "agent-1", "tx-1", "30", "", "reconciled", now))

		entries, err := repo.ListByParticipant(context.Background(), "agent-1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, ledger.OutcomeSubmitted, entries[0].Outcome)
		assert.Equal(t, ledger.OutcomeReconciled, entries[1].Outcome)
		assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(30)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdempotencyRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewIdempotencyRepository(db)
	operatorID := uuid.New()

	t.Run("miss returns nil entry", func(t *testing.T) {
		mock.ExpectQuery(`SELECT idempotency_key, operator_id`).
			WithArgs("key-1", operatorID).
			WillReturnRows(sqlmock.NewRows([]string{"idempotency_key", "operator_id", "request_hash", "status_code", "response_body", "created_at", "expires_at"}))

		entry, err := repo.Get(context.Background(), "key-1", operatorID)
		require.NoError(t, err)
		assert.Nil(t, entry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set then get", func(t *testing.T) {
		now := time.Now()
		entry := &IdempotencyCacheEntry{
			Key:          "key-1",
			OperatorID:   operatorID,
			RequestHash:  "abc123",
			StatusCode:   200,
			ResponseBody: []byte(`{"success":true}`),
			CreatedAt:    now,
			ExpiresAt:    now.Add(24 * time.Hour),
		}

		mock.ExpectExec(`INSERT INTO idempotency_cache`).
			WithArgs(entry.Key, entry.OperatorID, entry.RequestHash, entry.StatusCode, entry.ResponseBody, entry.CreatedAt, entry.ExpiresAt).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Set(context.Background(), entry))

		mock.ExpectQuery(`SELECT idempotency_key, operator_id`).
			WithArgs("key-1", operatorID).
			WillReturnRows(sqlmock.NewRows([]string{"idempotency_key", "operator_id", "request_hash", "status_code", "response_body", "created_at", "expires_at"}).
				AddRow(entry.Key, entry.OperatorID, entry.RequestHash, entry.StatusCode, entry.ResponseBody, entry.CreatedAt, entry.ExpiresAt))

		got, err := repo.Get(context.Background(), "key-1", operatorID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entry.RequestHash, got.RequestHash)
		assert.Equal(t, entry.StatusCode, got.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
