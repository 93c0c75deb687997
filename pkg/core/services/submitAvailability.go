package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// SubmitAvailabilityInput carries a user's workable dates for one role and
// scope.
type SubmitAvailabilityInput struct {
	UserID string   `validate:"required"`
	Dates  []string `validate:"required,min=1,dive,datetime=2006-01-02"`
	Role   string   `validate:"required"`
	Scope  db.ScopeKey
}

// SubmitAvailabilityStore defines the database operations needed to submit
// availability.
type SubmitAvailabilityStore interface {
	ScopeResolver
	ReplaceAvailabilityRange(ctx context.Context, key db.AvailabilityRangeKey, rows []db.Availability) error
}

// SubmitAvailability replaces the user's availability for the scope within
// the span of the submitted dates. The replace window is min(dates) to
// max(dates): previously submitted dates inside that span that are not in
// the new set are dropped, while records outside the span survive. This
// span-scoped replacement is the contract, not an accident of the storage
// layer. Returns the number of records written.
func SubmitAvailability(ctx context.Context, store SubmitAvailabilityStore, logger *zap.Logger, caller Caller, input SubmitAvailabilityInput) (int, error) {
	if !caller.CanSubmitFor(input.UserID) {
		return 0, fmt.Errorf("%w: %s may not submit availability for %s", ErrForbidden, caller.UserID, input.UserID)
	}
	if err := validateInput(input); err != nil {
		return 0, err
	}
	if err := validateScope(ctx, store, input.Scope); err != nil {
		return 0, err
	}

	// A user holds at most one role per (date, scope), so repeated dates in
	// one submission collapse to a single record.
	seen := make(map[string]bool, len(input.Dates))
	dates := make([]string, 0, len(input.Dates))
	for _, date := range input.Dates {
		if seen[date] {
			continue
		}
		seen[date] = true
		dates = append(dates, date)
	}
	sort.Strings(dates)

	rows := make([]db.Availability, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, db.Availability{
			ID:     uuid.New().String(),
			UserID: input.UserID,
			Date:   date,
			Role:   input.Role,
			Scope:  input.Scope,
		})
	}

	key := db.AvailabilityRangeKey{
		UserID: input.UserID,
		Scope:  input.Scope,
		From:   dates[0],
		To:     dates[len(dates)-1],
	}
	if err := store.ReplaceAvailabilityRange(ctx, key, rows); err != nil {
		return 0, fmt.Errorf("failed to replace availability: %w", err)
	}

	logger.Info("Availability submitted",
		zap.String("user_id", input.UserID),
		zap.String("scope", input.Scope.String()),
		zap.String("from", key.From),
		zap.String("to", key.To),
		zap.Int("count", len(rows)))

	return len(rows), nil
}
