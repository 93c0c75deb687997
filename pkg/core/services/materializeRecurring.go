package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// MaterializeRecurringInput selects the month and scope to materialize.
type MaterializeRecurringInput struct {
	Month string `validate:"required,datetime=2006-01"`
	Scope db.ScopeKey
}

// MaterializeRecurringStore defines the database operations needed to
// materialize recurring requirements.
type MaterializeRecurringStore interface {
	ScopeResolver
	GetRequirements(ctx context.Context, scope db.ScopeKey, from, to string) ([]db.Requirement, error)
	GetRecurringRequirements(ctx context.Context, scope db.ScopeKey) ([]db.RecurringRequirement, error)
	InsertRequirements(ctx context.Context, reqs []db.Requirement) error
}

// MaterializeRecurring expands every recurring template onto the month as
// explicit requirement rows, inserting a row only where no explicit row
// exists for the (date, role) yet. Existing rows are never overwritten, even
// when their count differs from the template, so running the operation twice
// inserts nothing the second time. Returns the number of rows newly
// materialized.
func MaterializeRecurring(ctx context.Context, store MaterializeRecurringStore, logger *zap.Logger, caller Caller, input MaterializeRecurringInput) (int, error) {
	if !caller.CanManageSchedule() {
		return 0, fmt.Errorf("%w: %s may not materialize requirements", ErrForbidden, caller.Role)
	}
	if err := validateInput(input); err != nil {
		return 0, err
	}
	if err := validateScope(ctx, store, input.Scope); err != nil {
		return 0, err
	}

	fromStr, toStr, err := monthBounds(input.Month)
	if err != nil {
		return 0, err
	}
	from, _ := parseDate(fromStr)
	to, _ := parseDate(toStr)

	logger.Debug("Materializing recurring requirements",
		zap.String("scope", input.Scope.String()),
		zap.String("month", input.Month))

	explicit, err := store.GetRequirements(ctx, input.Scope, fromStr, toStr)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch requirements: %w", err)
	}

	// Covered keys include rows present before the run and rows added
	// earlier in the same run, so one run never inserts duplicates either.
	covered := make(map[string]bool, len(explicit))
	for _, req := range explicit {
		covered[req.Date+"|"+req.Role] = true
	}

	templates, err := store.GetRecurringRequirements(ctx, input.Scope)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch recurring requirements: %w", err)
	}

	var inserts []db.Requirement
	for _, template := range templates {
		dates, err := weeklyDates(template.DayOfWeek, from, to)
		if err != nil {
			return 0, err
		}
		for _, date := range dates {
			key := date + "|" + template.Role
			if covered[key] {
				continue
			}
			covered[key] = true
			inserts = append(inserts, db.Requirement{
				ID:          uuid.New().String(),
				Date:        date,
				Role:        template.Role,
				Scope:       input.Scope,
				CountNeeded: template.CountNeeded,
			})
		}
	}

	if len(inserts) > 0 {
		if err := store.InsertRequirements(ctx, inserts); err != nil {
			return 0, fmt.Errorf("failed to insert requirements: %w", err)
		}
	}

	logger.Info("Recurring requirements materialized",
		zap.String("scope", input.Scope.String()),
		zap.String("month", input.Month),
		zap.Int("inserted", len(inserts)))

	return len(inserts), nil
}
