package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// FetchAvailabilityInput selects whose records to read and for which window.
// An empty UserID means all users, which requires a scheduling role.
type FetchAvailabilityInput struct {
	UserID string
	From   string `validate:"required,datetime=2006-01-02"`
	To     string `validate:"required,datetime=2006-01-02"`
	Scope  *db.ScopeKey
}

// FetchAvailabilityStore defines the database operations needed to fetch
// availability.
type FetchAvailabilityStore interface {
	GetAvailability(ctx context.Context, filter db.AvailabilityFilter) ([]db.Availability, error)
}

// FetchAvailability reads availability declarations. Staff callers are
// restricted to their own records; managers, operations and admins may read
// anyone's.
func FetchAvailability(ctx context.Context, store FetchAvailabilityStore, logger *zap.Logger, caller Caller, input FetchAvailabilityInput) ([]db.Availability, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !caller.CanViewAllAvailability() && input.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: %s may only fetch their own availability", ErrForbidden, caller.UserID)
	}

	records, err := store.GetAvailability(ctx, db.AvailabilityFilter{
		UserID: input.UserID,
		From:   input.From,
		To:     input.To,
		Scope:  input.Scope,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}

	logger.Debug("Availability fetched",
		zap.String("user_id", input.UserID),
		zap.Int("count", len(records)))

	return records, nil
}
