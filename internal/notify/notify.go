package notify

import (
	"context"
	"time"

	"github.com/edunest/admin-ledger/internal/logging"
)

// Level tags an operator notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Event is one operator-facing toast: the outcome of a payment or an
// account close, phrased for display.
type Event struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier delivers operator notifications. Delivery is best-effort;
// implementations must not fail the operation that produced the event.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// LogNotifier writes notifications to the request logger. It is the
// fallback sink when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Success(ctx context.Context, message string) {
	logging.FromContext(ctx).Info("notification", "level", LevelSuccess, "message", message)
}

func (LogNotifier) Error(ctx context.Context, message string) {
	logging.FromContext(ctx).Warn("notification", "level", LevelError, "message", message)
}

// Multi fans one notification out to several sinks in order.
type Multi []Notifier

func (m Multi) Success(ctx context.Context, message string) {
	for _, n := range m {
		n.Success(ctx, message)
	}
}

func (m Multi) Error(ctx context.Context, message string) {
	for _, n := range m {
		n.Error(ctx, message)
	}
}
