package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// Kind identifies the domain event carried by an Event.
type Kind string

const (
	// KindAssignmentsConfirmed is emitted once per user when a batch approve
	// confirms their pending assignments. Dates carries the confirmed dates
	// in ascending order.
	KindAssignmentsConfirmed Kind = "assignments_confirmed"

	// KindAvailabilityCleared is emitted once per user when a privileged
	// month-clear removes their availability records.
	KindAvailabilityCleared Kind = "availability_cleared"
)

// Event is a domain event destined for one recipient.
type Event struct {
	Kind   Kind
	UserID string
	Scope  db.ScopeKey
	Dates  []string // ascending, set for KindAssignmentsConfirmed
	Month  string   // YYYY-MM, set for KindAvailabilityCleared
}

// Notifier delivers a single event to its recipient.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Dispatcher fans events out to a Notifier with per-recipient failure
// isolation: a delivery error is logged and swallowed, never propagated,
// and never stops delivery to the remaining recipients. The mutation that
// produced the events has already committed by the time Dispatch runs.
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher delivering through the given notifier.
func NewDispatcher(notifier Notifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Dispatch delivers each event in order and returns the number delivered
// without error.
func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) int {
	notified := 0
	for _, event := range events {
		if err := d.notifier.Notify(ctx, event); err != nil {
			d.logger.Warn("Notification delivery failed",
				zap.String("kind", string(event.Kind)),
				zap.String("user_id", event.UserID),
				zap.Error(err))
			continue
		}
		notified++
	}
	return notified
}

// LogNotifier is the default transport: it records each event in the
// application log. Useful in development and wherever the real mail
// transport is not configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	n.Logger.Info("Notification",
		zap.String("kind", string(event.Kind)),
		zap.String("user_id", event.UserID),
		zap.String("scope", event.Scope.String()),
		zap.Strings("dates", event.Dates),
		zap.String("month", event.Month))
	return nil
}
