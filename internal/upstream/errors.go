package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/edunest/admin-ledger/internal/domain"
)

// fallbackMessage is shown when the upstream error body carries no
// message field.
const fallbackMessage = "request failed"

// Error is a non-2xx upstream response. Message is surfaced to the
// operator verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream: %s (status %d)", e.Message, e.Status)
}

// Is lets callers match 404s with errors.Is(err, domain.ErrNotFound)
// without inspecting the status code themselves.
func (e *Error) Is(target error) bool {
	return target == domain.ErrNotFound && e.Status == http.StatusNotFound
}

func decodeError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = fallbackMessage
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

// MessageFromError extracts the upstream message for notification text,
// or the fallback when the failure was not an upstream response.
func MessageFromError(err error) string {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Message
	}
	return fallbackMessage
}
