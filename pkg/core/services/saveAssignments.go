package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// AssignmentDraft is one slot of a proposed roster.
type AssignmentDraft struct {
	UserID string `validate:"required"`
	Date   string `validate:"required,datetime=2006-01-02"`
	Role   string `validate:"required"`
}

// SaveAssignmentsInput carries the full pending roster for a scope and month.
type SaveAssignmentsInput struct {
	Scope       db.ScopeKey
	Month       string            `validate:"required,datetime=2006-01"`
	Assignments []AssignmentDraft `validate:"dive"`
}

// SaveAssignmentsStore defines the database operations needed to save a
// roster draft.
type SaveAssignmentsStore interface {
	ScopeResolver
	ReplacePendingAssignments(ctx context.Context, key db.AssignmentRangeKey, rows []db.Assignment) error
}

// SaveAssignments replaces all pending assignments for the scope and month
// with the given list. Confirmed assignments in the range are untouched, so
// a manager can re-draft the pending roster freely without disturbing
// approved bookings. An empty list clears the pending roster. Returns the
// number of pending rows written.
func SaveAssignments(ctx context.Context, store SaveAssignmentsStore, logger *zap.Logger, caller Caller, input SaveAssignmentsInput) (int, error) {
	if !caller.CanManageSchedule() {
		return 0, fmt.Errorf("%w: %s may not save assignments", ErrForbidden, caller.Role)
	}
	if err := validateInput(input); err != nil {
		return 0, err
	}
	if err := validateScope(ctx, store, input.Scope); err != nil {
		return 0, err
	}

	from, to, err := monthBounds(input.Month)
	if err != nil {
		return 0, err
	}

	rows := make([]db.Assignment, 0, len(input.Assignments))
	for _, draft := range input.Assignments {
		if draft.Date < from || draft.Date > to {
			return 0, fmt.Errorf("%w: assignment date %s outside month %s", ErrInvalidInput, draft.Date, input.Month)
		}
		rows = append(rows, db.Assignment{
			ID:     uuid.New().String(),
			UserID: draft.UserID,
			Date:   draft.Date,
			Role:   draft.Role,
			Scope:  input.Scope,
			Status: db.StatusPending,
		})
	}

	key := db.AssignmentRangeKey{Scope: input.Scope, From: from, To: to}
	if err := store.ReplacePendingAssignments(ctx, key, rows); err != nil {
		return 0, fmt.Errorf("failed to replace pending assignments: %w", err)
	}

	logger.Info("Pending assignments saved",
		zap.String("scope", input.Scope.String()),
		zap.String("month", input.Month),
		zap.Int("count", len(rows)))

	return len(rows), nil
}
