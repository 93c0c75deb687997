package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// CopyPreviousMonthInput selects the user, target month and scope.
type CopyPreviousMonthInput struct {
	UserID string `validate:"required"`
	Month  string `validate:"required,datetime=2006-01"` // target month
	Scope  db.ScopeKey
}

// CopyPreviousMonthStore defines the database operations needed to project a
// previous month's availability forward.
type CopyPreviousMonthStore interface {
	ScopeResolver
	GetAvailability(ctx context.Context, filter db.AvailabilityFilter) ([]db.Availability, error)
	ReplaceAvailabilityRange(ctx context.Context, key db.AvailabilityRangeKey, rows []db.Availability) error
}

// CopyPreviousMonth projects the prior month's availability for the user and
// scope onto the target month, matching each record's (weekday, week-of-month)
// slot: the 2nd Monday of March lands on the 2nd Monday of April. Slots that
// do not exist in the target month, such as a 5th Friday in a shorter month,
// are silently dropped. The projection replaces the whole target month for
// that user and scope. Returns ErrNoPriorData when the previous month holds
// no records.
func CopyPreviousMonth(ctx context.Context, store CopyPreviousMonthStore, logger *zap.Logger, caller Caller, input CopyPreviousMonthInput) (int, error) {
	if !caller.CanSubmitFor(input.UserID) {
		return 0, fmt.Errorf("%w: %s may not copy availability for %s", ErrForbidden, caller.UserID, input.UserID)
	}
	if err := validateInput(input); err != nil {
		return 0, err
	}
	if err := validateScope(ctx, store, input.Scope); err != nil {
		return 0, err
	}

	prior, err := previousMonth(input.Month)
	if err != nil {
		return 0, err
	}
	priorFrom, priorTo, err := monthBounds(prior)
	if err != nil {
		return 0, err
	}

	records, err := store.GetAvailability(ctx, db.AvailabilityFilter{
		UserID: input.UserID,
		From:   priorFrom,
		To:     priorTo,
		Scope:  &input.Scope,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch prior month availability: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: no availability in %s for %s", ErrNoPriorData, prior, input.UserID)
	}

	targetFrom, targetTo, err := monthBounds(input.Month)
	if err != nil {
		return 0, err
	}
	targetFirst, _ := parseDate(targetFrom)
	targetLast, _ := parseDate(targetTo)
	daysInTarget := targetLast.Day()

	rows := make([]db.Availability, 0, len(records))
	dropped := 0
	for _, record := range records {
		date, err := parseDate(record.Date)
		if err != nil {
			return 0, err
		}

		// Align on (weekday, week-of-month). First find the day of month of
		// the target month's first matching weekday, then step forward by
		// whole weeks.
		offset := (int(date.Weekday()) - int(targetFirst.Weekday()) + 7) % 7
		day := 1 + offset + 7*weekIndex(date.Day())
		if day > daysInTarget {
			dropped++
			continue
		}

		projected := targetFirst.AddDate(0, 0, day-1)
		rows = append(rows, db.Availability{
			ID:     uuid.New().String(),
			UserID: input.UserID,
			Date:   projected.Format(dateLayout),
			Role:   record.Role,
			Scope:  record.Scope,
		})
	}

	// Unlike Submit, the replace window is always the whole target month.
	key := db.AvailabilityRangeKey{
		UserID: input.UserID,
		Scope:  input.Scope,
		From:   targetFrom,
		To:     targetTo,
	}
	if err := store.ReplaceAvailabilityRange(ctx, key, rows); err != nil {
		return 0, fmt.Errorf("failed to replace availability: %w", err)
	}

	logger.Info("Previous month availability copied",
		zap.String("user_id", input.UserID),
		zap.String("scope", input.Scope.String()),
		zap.String("from_month", prior),
		zap.String("to_month", input.Month),
		zap.Int("copied", len(rows)),
		zap.Int("dropped", dropped))

	return len(rows), nil
}
