// Command mock-upstream is an in-memory stand-in for the admin API,
// used for local development. It speaks the same envelopes as the real
// service: {"data": ...} on success, {"message": ...} on failure.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/logging"
)

type store struct {
	mu           sync.Mutex
	participants map[string]*domain.Participant
	transactions map[string]*domain.TransactionRecord
}

func main() {
	logging.Init("mock-upstream", "info", os.Getenv("APP_ENV"))

	s := seed()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /transactions", s.listTransactions)
	mux.HandleFunc("POST /transactions", s.createTransaction)
	mux.HandleFunc("GET /transactions/{id}", s.getTransaction)
	mux.HandleFunc("PATCH /transactions/{id}", s.patchTransaction)
	mux.HandleFunc("GET /participants/{id}", s.getParticipant)
	mux.HandleFunc("PATCH /participants/{id}", s.patchParticipant)

	addr := ":8081"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	slog.Info("mock upstream started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func seed() *store {
	s := &store{
		participants: make(map[string]*domain.Participant),
		transactions: make(map[string]*domain.TransactionRecord),
	}

	s.participants["agent-1"] = &domain.Participant{
		ID:        "agent-1",
		Name:      "Ada Mensah",
		Kind:      domain.ParticipantKindAgent,
		TotalDue:  decimal.NewFromInt(450),
		TotalPaid: decimal.NewFromInt(150),
		Amount:    decimal.NewFromInt(450),
		Status:    domain.ParticipantStatusActive,
	}
	s.participants["investor-1"] = &domain.Participant{
		ID:        "investor-1",
		Name:      "Kwame Osei",
		Kind:      domain.ParticipantKindInvestor,
		TotalDue:  decimal.NewFromInt(1200),
		TotalPaid: decimal.Zero,
		Amount:    decimal.NewFromInt(1200),
		Status:    domain.ParticipantStatusActive,
	}

	year := time.Now().Year()
	for m := 1; m <= 6; m++ {
		id := fmt.Sprintf("tx-agent-1-%02d", m)
		created := time.Date(year, time.Month(m), 1, 9, 0, 0, 0, time.UTC)
		due := decimal.NewFromInt(int64(50 + 10*m))
		s.transactions[id] = &domain.TransactionRecord{
			ID:         id,
			Month:      fmt.Sprintf("%04d-%02d", year, m),
			DueAmount:  due,
			PaidAmount: decimal.Zero,
			Status:     domain.TransactionStatusDue,
			Logs: []domain.LedgerLogEntry{
				{
					ID:              uuid.NewString(),
					TransactionType: string(domain.LogKindCommissionCalculated),
					Amount:          &due,
					CreatedAt:       created,
				},
			},
		}
	}
	// seed transactions reference their owner through the id prefix
	return s
}

func (s *store) listTransactions(w http.ResponseWriter, r *http.Request) {
	participantID := r.URL.Query().Get("participantId")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	s.mu.Lock()
	var result []domain.TransactionRecord
	for id, rec := range s.transactions {
		if participantID == "" || ownerOf(id) == participantID {
			result = append(result, *rec.Clone())
		}
	}
	s.mu.Unlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })

	totalPage := (len(result) + limit - 1) / limit
	if totalPage < 1 {
		totalPage = 1
	}
	start := (page - 1) * limit
	if start > len(result) {
		start = len(result)
	}
	end := start + limit
	if end > len(result) {
		end = len(result)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"result": result[start:end],
			"meta":   map[string]any{"totalPage": totalPage},
		},
	})
}

func (s *store) getTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rec, ok := s.transactions[r.PathValue("id")]
	var out *domain.TransactionRecord
	if ok {
		out = rec.Clone()
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *store) createTransaction(w http.ResponseWriter, r *http.Request) {
	var rec domain.TransactionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.transactions[rec.ID] = rec.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"data": rec})
}

type paymentPatch struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

func (s *store) patchTransaction(w http.ResponseWriter, r *http.Request) {
	var patch paymentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if patch.Amount.LessThanOrEqual(decimal.Zero) {
		writeError(w, http.StatusUnprocessableEntity, "amount must be greater than zero")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.transactions[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if patch.Amount.GreaterThan(rec.DueAmount) {
		writeError(w, http.StatusUnprocessableEntity, "amount exceeds outstanding balance")
		return
	}

	rec.PaidAmount = rec.PaidAmount.Add(patch.Amount)
	rec.DueAmount = rec.DueAmount.Sub(patch.Amount)
	rec.RecomputeStatus()

	kind := domain.LogKindCommissionPayment
	if owner, ok := s.participants[ownerOf(rec.ID)]; ok && owner.Kind == domain.ParticipantKindInvestor {
		kind = domain.LogKindProfitPayment
	}
	amount := patch.Amount
	rec.PaymentLog = append(rec.PaymentLog, domain.LedgerLogEntry{
		ID:              uuid.NewString(),
		TransactionType: string(kind),
		PaidAmount:      &amount,
		Note:            patch.Note,
		CreatedAt:       time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, map[string]any{"data": rec.Clone()})
}

func (s *store) getParticipant(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.participants[r.PathValue("id")]
	var out *domain.Participant
	if ok {
		out = p.Clone()
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "participant not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

type participantPatch struct {
	TotalDue  *decimal.Decimal          `json:"totalDue"`
	TotalPaid *decimal.Decimal          `json:"totalPaid"`
	Amount    *decimal.Decimal          `json:"amount"`
	Status    *domain.ParticipantStatus `json:"status"`
}

func (s *store) patchParticipant(w http.ResponseWriter, r *http.Request) {
	var patch participantPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "participant not found")
		return
	}

	if patch.TotalDue != nil {
		p.TotalDue = *patch.TotalDue
	}
	if patch.TotalPaid != nil {
		p.TotalPaid = *patch.TotalPaid
	}
	if patch.Amount != nil {
		p.Amount = *patch.Amount
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": p.Clone()})
}

// ownerOf recovers the participant id from the seed naming scheme
// tx-<participant>-<month>.
func ownerOf(transactionID string) string {
	if len(transactionID) < 7 {
		return ""
	}
	return transactionID[3 : len(transactionID)-3]
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
