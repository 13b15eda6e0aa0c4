package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/edunest/admin-ledger/internal/domain"
	"github.com/edunest/admin-ledger/internal/logging"
)

const (
	defaultPageLimit = 50
	maxPageFanout    = 4
)

// Client consumes the upstream admin API: paginated lists, single-record
// fetches for reconciliation, creates, and the PATCH calls that record
// payments and close accounts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageLimit  int
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		pageLimit:  defaultPageLimit,
	}
}

type listMeta struct {
	TotalPage int `json:"totalPage"`
}

type transactionListEnvelope struct {
	Data struct {
		Result []domain.TransactionRecord `json:"result"`
		Meta   listMeta                   `json:"meta"`
	} `json:"data"`
}

type transactionEnvelope struct {
	Data domain.TransactionRecord `json:"data"`
}

type participantEnvelope struct {
	Data domain.Participant `json:"data"`
}

// ListTransactions fetches every page of a participant's transactions.
// Page one is fetched first to learn totalPage; the remaining pages are
// fetched concurrently and reassembled in page order.
func (c *Client) ListTransactions(ctx context.Context, participantID string) ([]domain.TransactionRecord, error) {
	first, meta, err := c.listTransactionPage(ctx, participantID, 1)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	if meta.TotalPage <= 1 {
		return first, nil
	}

	pages := make([][]domain.TransactionRecord, meta.TotalPage+1)
	pages[1] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPageFanout)
	for page := 2; page <= meta.TotalPage; page++ {
		g.Go(func() error {
			recs, _, err := c.listTransactionPage(gctx, participantID, page)
			if err != nil {
				return err
			}
			pages[page] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}

	var all []domain.TransactionRecord
	for _, page := range pages {
		all = append(all, page...)
	}
	return all, nil
}

func (c *Client) listTransactionPage(ctx context.Context, participantID string, page int) ([]domain.TransactionRecord, listMeta, error) {
	query := url.Values{
		"participantId": {participantID},
		"page":          {strconv.Itoa(page)},
		"limit":         {strconv.Itoa(c.pageLimit)},
	}

	var envelope transactionListEnvelope
	if err := c.getJSON(ctx, "/transactions", query, &envelope); err != nil {
		return nil, listMeta{}, fmt.Errorf("page %d: %w", page, err)
	}
	return envelope.Data.Result, envelope.Data.Meta, nil
}

// GetTransaction fetches a single record by id. This is the
// reconciliation call: its result replaces the cached record wholesale.
func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	var envelope transactionEnvelope
	if err := c.getJSON(ctx, "/transactions/"+url.PathEscape(id), nil, &envelope); err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return &envelope.Data, nil
}

// CreateTransaction posts a new billing-period record.
func (c *Client) CreateTransaction(ctx context.Context, rec *domain.TransactionRecord) (*domain.TransactionRecord, error) {
	var envelope transactionEnvelope
	if err := c.sendJSON(ctx, http.MethodPost, "/transactions", rec, &envelope); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}
	return &envelope.Data, nil
}

type paymentPatch struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// PatchPayment submits a payment against a transaction. The upstream
// computes the authoritative totals and writes the real log entry.
func (c *Client) PatchPayment(ctx context.Context, id string, amount decimal.Decimal, note string) error {
	patch := paymentPatch{Amount: amount, Note: note}
	if err := c.sendJSON(ctx, http.MethodPatch, "/transactions/"+url.PathEscape(id), patch, nil); err != nil {
		return fmt.Errorf("PatchPayment: %w", err)
	}
	return nil
}

func (c *Client) GetParticipant(ctx context.Context, id string) (*domain.Participant, error) {
	var envelope participantEnvelope
	if err := c.getJSON(ctx, "/participants/"+url.PathEscape(id), nil, &envelope); err != nil {
		return nil, fmt.Errorf("GetParticipant: %w", err)
	}
	return &envelope.Data, nil
}

type closePatch struct {
	TotalDue  decimal.Decimal          `json:"totalDue"`
	TotalPaid decimal.Decimal          `json:"totalPaid"`
	Amount    decimal.Decimal          `json:"amount"`
	Status    domain.ParticipantStatus `json:"status"`
}

// CloseParticipant zeroes the participant's open balance and blocks the
// account in a single PATCH.
func (c *Client) CloseParticipant(ctx context.Context, id string, totalPaid decimal.Decimal) error {
	patch := closePatch{
		TotalDue:  decimal.Zero,
		TotalPaid: totalPaid,
		Amount:    decimal.Zero,
		Status:    domain.ParticipantStatusBlocked,
	}
	if err := c.sendJSON(ctx, http.MethodPatch, "/participants/"+url.PathEscape(id), patch, nil); err != nil {
		return fmt.Errorf("CloseParticipant: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	log := logging.FromContext(req.Context())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("upstream response",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
