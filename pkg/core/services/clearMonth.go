package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
	"github.com/hsnesn/staffrota/pkg/notify"
)

// What a month-clear removes.
const (
	ClearAvailability = "availability"
	ClearRequirements = "requirements"
	ClearBoth         = "both"
)

// ClearMonthInput selects the scope, month and record kind to clear.
type ClearMonthInput struct {
	Scope db.ScopeKey
	Month string `validate:"required,datetime=2006-01"`
	Kind  string `validate:"required,oneof=availability requirements both"`
}

// ClearMonthResult reports what was removed and how many users were told.
type ClearMonthResult struct {
	AvailabilityDeleted int
	RequirementsDeleted int
	Notified            int
}

// ClearMonthStore defines the database operations needed for the bulk clear.
type ClearMonthStore interface {
	ScopeResolver
	GetAvailability(ctx context.Context, filter db.AvailabilityFilter) ([]db.Availability, error)
	DeleteAvailabilityRange(ctx context.Context, scope db.ScopeKey, from, to string) (int, error)
	DeleteRequirementsRange(ctx context.Context, scope db.ScopeKey, from, to string) (int, error)
}

// ClearMonth is the privileged bulk delete of a month's availability and/or
// explicit requirements for a scope. When availability is cleared, the
// affected users are collected before the delete and each gets one
// availability-cleared notification afterwards. Notification is best-effort:
// a delivery failure never rolls back or fails the clear.
func ClearMonth(ctx context.Context, store ClearMonthStore, dispatcher *notify.Dispatcher, logger *zap.Logger, caller Caller, input ClearMonthInput) (*ClearMonthResult, error) {
	if !caller.CanClearMonth() {
		return nil, fmt.Errorf("%w: %s may not clear months", ErrForbidden, caller.Role)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := validateScope(ctx, store, input.Scope); err != nil {
		return nil, err
	}

	from, to, err := monthBounds(input.Month)
	if err != nil {
		return nil, err
	}

	result := &ClearMonthResult{}

	if input.Kind == ClearAvailability || input.Kind == ClearBoth {
		// Snapshot the affected users before anything is deleted.
		records, err := store.GetAvailability(ctx, db.AvailabilityFilter{
			From:  from,
			To:    to,
			Scope: &input.Scope,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch availability: %w", err)
		}

		affected := make(map[string]bool)
		for _, record := range records {
			affected[record.UserID] = true
		}
		userIDs := make([]string, 0, len(affected))
		for userID := range affected {
			userIDs = append(userIDs, userID)
		}
		sort.Strings(userIDs)

		deleted, err := store.DeleteAvailabilityRange(ctx, input.Scope, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to delete availability: %w", err)
		}
		result.AvailabilityDeleted = deleted

		events := make([]notify.Event, 0, len(userIDs))
		for _, userID := range userIDs {
			events = append(events, notify.Event{
				Kind:   notify.KindAvailabilityCleared,
				UserID: userID,
				Scope:  input.Scope,
				Month:  input.Month,
			})
		}
		result.Notified = dispatcher.Dispatch(ctx, events)
	}

	if input.Kind == ClearRequirements || input.Kind == ClearBoth {
		deleted, err := store.DeleteRequirementsRange(ctx, input.Scope, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to delete requirements: %w", err)
		}
		result.RequirementsDeleted = deleted
	}

	logger.Info("Month cleared",
		zap.String("scope", input.Scope.String()),
		zap.String("month", input.Month),
		zap.String("kind", input.Kind),
		zap.Int("availability_deleted", result.AvailabilityDeleted),
		zap.Int("requirements_deleted", result.RequirementsDeleted),
		zap.Int("notified", result.Notified))

	return result, nil
}
