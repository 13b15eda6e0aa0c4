package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunest/admin-ledger/internal/auth"
	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/ledger"
)

type stubUpstream struct {
	participant *domain.Participant
	records     []domain.TransactionRecord
	patchErr    error
}

func (s *stubUpstream) GetParticipant(ctx context.Context, id string) (*domain.Participant, error) {
	if s.participant == nil || s.participant.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.participant.Clone(), nil
}

func (s *stubUpstream) ListTransactions(ctx context.Context, participantID string) ([]domain.TransactionRecord, error) {
	out := make([]domain.TransactionRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec.Clone())
	}
	return out, nil
}

func (s *stubUpstream) GetTransaction(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	for _, rec := range s.records {
		if rec.ID == id {
			return rec.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUpstream) PatchPayment(ctx context.Context, id string, amount decimal.Decimal, note string) error {
	return s.patchErr
}

func (s *stubUpstream) CloseParticipant(ctx context.Context, id string, totalPaid decimal.Decimal) error {
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Success(ctx context.Context, message string) {}
func (noopNotifier) Error(ctx context.Context, message string)   {}

type noopJournal struct{}

func (noopJournal) Record(ctx context.Context, participantID string, intent domain.PaymentIntent, outcome ledger.IntentOutcome) error {
	return nil
}

func testNow() time.Time {
	return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
}

func newStubUpstream() *stubUpstream {
	return &stubUpstream{
		participant: &domain.Participant{
			ID:        "agent-1",
			Name:      "Ada",
			Kind:      domain.ParticipantKindAgent,
			TotalDue:  decimal.NewFromInt(100),
			TotalPaid: decimal.Zero,
			Status:    domain.ParticipantStatusActive,
		},
		records: []domain.TransactionRecord{
			{
				ID:         "tx-1",
				Month:      "2024-05",
				DueAmount:  decimal.NewFromInt(100),
				PaidAmount: decimal.Zero,
			},
			{
				ID:         "tx-2",
				Month:      "2024-09",
				DueAmount:  decimal.NewFromInt(50),
				PaidAmount: decimal.Zero,
			},
		},
	}
}

func newTestMux(client *stubUpstream) *http.ServeMux {
	manager := ledger.NewManager(client, noopNotifier{}, noopJournal{}, testNow)
	h := NewLedgerHandler(manager)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/ledgers/{participantID}/months", h.Months)
	mux.HandleFunc("GET /api/v1/ledgers/{participantID}/transactions", h.Transactions)
	mux.HandleFunc("GET /api/v1/ledgers/{participantID}/transactions/{transactionID}/logs", h.RecordLogs)
	mux.HandleFunc("POST /api/v1/ledgers/{participantID}/payments", h.SubmitPayment)
	mux.HandleFunc("POST /api/v1/participants/{participantID}/close", h.CloseAccount)
	mux.HandleFunc("POST /api/v1/ledgers/{participantID}/refresh", h.Refresh)
	return mux
}

func withPrincipal(r *http.Request, role domain.Role) *http.Request {
	ctx := auth.ContextWithPrincipal(r.Context(), auth.Principal{
		OperatorID: uuid.New(),
		Email:      "ops@edunest.io",
		Role:       role,
	})
	return r.WithContext(ctx)
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestLedgerHandlerMonths(t *testing.T) {
	mux := newTestMux(newStubUpstream())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/agent-1/months?year=2024", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var body struct {
		Year   int `json:"year"`
		Months []struct {
			Month string `json:"month"`
			Key   string `json:"key"`
		} `json:"months"`
		Rollup struct {
			TotalDue decimal.Decimal `json:"totalDue"`
		} `json:"rollup"`
	}
	require.NoError(t, json.Unmarshal(data, &body))

	assert.Equal(t, 2024, body.Year)
	// today is June: September comes before May-side months, so tx-2's
	// bucket leads
	require.Len(t, body.Months, 2)
	assert.Equal(t, "September", body.Months[0].Month)
	assert.Equal(t, "May", body.Months[1].Month)
	assert.True(t, body.Rollup.TotalDue.Equal(decimal.NewFromInt(150)))
}

func TestLedgerHandlerMonthsUnknownParticipant(t *testing.T) {
	mux := newTestMux(newStubUpstream())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/ghost/months?year=2024", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	resp := decodeResponse(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RESOURCE_NOT_FOUND", resp.Error.Code)
}

func TestLedgerHandlerSubmitPayment(t *testing.T) {
	t.Run("requires a principal", func(t *testing.T) {
		mux := newTestMux(newStubUpstream())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers/agent-1/payments",
			strings.NewReader(`{"transaction_id":"tx-1","amount":30}`))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("viewers cannot mutate", func(t *testing.T) {
		mux := newTestMux(newStubUpstream())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers/agent-1/payments",
			strings.NewReader(`{"transaction_id":"tx-1","amount":30}`))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, withPrincipal(req, domain.RoleViewer))

		require.Equal(t, http.StatusForbidden, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "FORBIDDEN_ROLE", resp.Error.Code)
	})

	t.Run("records a payment", func(t *testing.T) {
		mux := newTestMux(newStubUpstream())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers/agent-1/payments",
			strings.NewReader(`{"transaction_id":"tx-1","amount":30,"note":"june instalment"}`))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, withPrincipal(req, domain.RoleAccounts))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.True(t, resp.Success)
	})

	t.Run("rejects amount above due", func(t *testing.T) {
		mux := newTestMux(newStubUpstream())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers/agent-1/payments",
			strings.NewReader(`{"transaction_id":"tx-1","amount":500}`))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, withPrincipal(req, domain.RoleAdmin))

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "AMOUNT_EXCEEDS_DUE", resp.Error.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		mux := newTestMux(newStubUpstream())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers/agent-1/payments",
			strings.NewReader(`{not json`))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, withPrincipal(req, domain.RoleAdmin))

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLedgerHandlerCloseAccount(t *testing.T) {
	mux := newTestMux(newStubUpstream())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/participants/agent-1/close", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, withPrincipal(req, domain.RoleAdmin))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var body struct {
		Participant struct {
			Status string `json:"status"`
		} `json:"participant"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "blocked", body.Participant.Status)
}

func TestLedgerHandlerRecordLogs(t *testing.T) {
	client := newStubUpstream()
	client.records[0].Logs = []domain.LedgerLogEntry{
		{
			ID:              "log-1",
			TransactionType: string(domain.LogKindCommissionCalculated),
			CreatedAt:       testNow(),
		},
		{
			ID:              "log-2",
			TransactionType: string(domain.LogKindCommissionPaymentMade),
			CreatedAt:       testNow(),
		},
	}
	mux := newTestMux(client)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/agent-1/transactions/tx-1/logs", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var body struct {
		Entries []struct {
			ID      string `json:"id"`
			Summary string `json:"summary"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(data, &body))

	// bookkeeping entries are filtered from the record view
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "log-1", body.Entries[0].ID)
	assert.NotEmpty(t, body.Entries[0].Summary)
}
