package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edunest/admin-ledger/internal/auth"
	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/ledger"
	"github.com/edunest/admin-ledger/internal/logging"
)

type sessionProvider interface {
	Session(ctx context.Context, participantID string) (*ledger.Session, error)
	Evict(participantID string)
}

// LedgerHandler serves the dashboard's ledger views and mutations for
// one participant at a time.
type LedgerHandler struct {
	sessions sessionProvider
	now      func() time.Time
}

func NewLedgerHandler(sessions sessionProvider) *LedgerHandler {
	return &LedgerHandler{sessions: sessions, now: time.Now}
}

type logEntryDTO struct {
	domain.LedgerLogEntry
	Summary string `json:"summary"`
}

func toLogEntryDTOs(entries []domain.LedgerLogEntry) []logEntryDTO {
	dtos := make([]logEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, logEntryDTO{LedgerLogEntry: e, Summary: e.Describe()})
	}
	return dtos
}

type monthsResponse struct {
	Participant *domain.Participant  `json:"participant"`
	Rollup      domain.RollupTotals  `json:"rollup"`
	Year        int                  `json:"year"`
	Months      []ledger.MonthBucket `json:"months"`
}

// Months is the year view: one bucket per month that has a record,
// ordered from the current month wrapping through the calendar.
func (h *LedgerHandler) Months(w http.ResponseWriter, r *http.Request) {
	participantID := r.PathValue("participantID")

	year := h.now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "year", Message: "must be a number"}})
			return
		}
		year = parsed
	}

	sess, err := h.sessions.Session(r.Context(), participantID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	participant, err := sess.Participant()
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, monthsResponse{
		Participant: participant,
		Rollup:      sess.Rollup(),
		Year:        year,
		Months:      sess.Months(year),
	})
}

// Transactions is the cross-record activity feed, newest first.
func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), r.PathValue("participantID"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"entries": toLogEntryDTOs(sess.AllTransactions()),
	})
}

// RecordLogs is one record's merged audit trail.
func (h *LedgerHandler) RecordLogs(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(r.Context(), r.PathValue("participantID"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	rec, err := sess.Record(r.PathValue("transactionID"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"transactionId": rec.ID,
		"entries":       toLogEntryDTOs(ledger.MergeLogs(*rec, ledger.RecordViewExclusions)),
	})
}

type submitPaymentRequest struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note"`
}

func (r submitPaymentRequest) Validate() []FieldError {
	var errs []FieldError
	if r.TransactionID == "" {
		errs = append(errs, FieldError{Field: "transaction_id", Message: "required"})
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs
}

type paymentResponse struct {
	Record *domain.TransactionRecord `json:"record"`
	Rollup domain.RollupTotals       `json:"rollup"`
}

// SubmitPayment records a payment against one transaction. The response
// is the reconciled record, or the optimistic projection when the
// reconciliation fetch could not complete.
func (h *LedgerHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if !mutationAllowed(w, r) {
		return
	}

	var req submitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	sess, err := h.sessions.Session(r.Context(), r.PathValue("participantID"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	rec, err := sess.SubmitPayment(r.Context(), domain.PaymentIntent{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Note:          req.Note,
	})
	if err != nil {
		log.Warn("payment submission failed", "transaction_id", req.TransactionID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, paymentResponse{
		Record: rec,
		Rollup: sess.Rollup(),
	})
}

// CloseAccount settles and blocks the participant.
func (h *LedgerHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if !mutationAllowed(w, r) {
		return
	}

	sess, err := h.sessions.Session(r.Context(), r.PathValue("participantID"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	participant, err := sess.CloseAccount(r.Context())
	if err != nil {
		log.Warn("account close failed", "participant_id", r.PathValue("participantID"), "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"participant": participant,
	})
}

// Refresh drops the cached session so the next view reloads from the
// admin API.
func (h *LedgerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	participantID := r.PathValue("participantID")
	h.sessions.Evict(participantID)

	sess, err := h.sessions.Session(r.Context(), participantID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	participant, err := sess.Participant()
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"participant": participant,
		"rollup":      sess.Rollup(),
	})
}

func mutationAllowed(w http.ResponseWriter, r *http.Request) bool {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return false
	}
	if !principal.Role.CanMutate() {
		RespondAppError(w, ErrForbiddenRole, nil)
		return false
	}
	return true
}
