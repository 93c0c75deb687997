package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// EffectiveRequirement is one row of the effective demand table: on Date,
// CountNeeded people of Role are needed. Rows with zero demand are omitted.
type EffectiveRequirement struct {
	Date        string
	Role        string
	CountNeeded int
}

// ResolveRequirementsInput selects the range and scope to resolve.
type ResolveRequirementsInput struct {
	From  string `validate:"required,datetime=2006-01-02"`
	To    string `validate:"required,datetime=2006-01-02"`
	Scope db.ScopeKey
}

// ResolveRequirementsStore defines the database operations needed to resolve
// requirements.
type ResolveRequirementsStore interface {
	ScopeResolver
	GetRequirements(ctx context.Context, scope db.ScopeKey, from, to string) ([]db.Requirement, error)
	GetRecurringRequirements(ctx context.Context, scope db.ScopeKey) ([]db.RecurringRequirement, error)
}

// ResolveRequirements merges explicit per-date requirements with recurring
// weekly templates into the effective demand table for the range. Explicit
// rows always win: a template is consulted for a (date, role) only when no
// explicit row covers it. Scope matching is exact; department-wide demand
// never picks up per-program rows and vice versa.
func ResolveRequirements(ctx context.Context, store ResolveRequirementsStore, logger *zap.Logger, caller Caller, input ResolveRequirementsInput) ([]EffectiveRequirement, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	from, err := parseDate(input.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(input.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s before start %s", ErrInvalidInput, input.To, input.From)
	}

	if err := validateScope(ctx, store, input.Scope); err != nil {
		return nil, err
	}

	logger.Debug("Resolving requirements",
		zap.String("scope", input.Scope.String()),
		zap.String("from", input.From),
		zap.String("to", input.To))

	explicit, err := store.GetRequirements(ctx, input.Scope, input.From, input.To)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requirements: %w", err)
	}

	templates, err := store.GetRecurringRequirements(ctx, input.Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recurring requirements: %w", err)
	}

	result, err := effectiveRequirements(explicit, templates, from, to)
	if err != nil {
		return nil, err
	}

	logger.Debug("Requirements resolved",
		zap.Int("explicit", len(explicit)),
		zap.Int("templates", len(templates)),
		zap.Int("effective", len(result)))

	return result, nil
}

// effectiveRequirements merges explicit rows and templates over [from, to].
// An explicit row covers its (date, role) key whatever its count; only
// uncovered keys are synthesized from templates. Zero-count rows suppress
// the template but are not part of the effective set.
func effectiveRequirements(explicit []db.Requirement, templates []db.RecurringRequirement, from, to time.Time) ([]EffectiveRequirement, error) {
	covered := make(map[string]bool, len(explicit))
	var result []EffectiveRequirement

	for _, req := range explicit {
		covered[req.Date+"|"+req.Role] = true
		if req.CountNeeded > 0 {
			result = append(result, EffectiveRequirement{
				Date:        req.Date,
				Role:        req.Role,
				CountNeeded: req.CountNeeded,
			})
		}
	}

	for _, template := range templates {
		if template.CountNeeded <= 0 {
			continue
		}
		dates, err := weeklyDates(template.DayOfWeek, from, to)
		if err != nil {
			return nil, err
		}
		for _, date := range dates {
			key := date + "|" + template.Role
			if covered[key] {
				continue
			}
			covered[key] = true
			result = append(result, EffectiveRequirement{
				Date:        date,
				Role:        template.Role,
				CountNeeded: template.CountNeeded,
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].Role < result[j].Role
	})

	return result, nil
}
