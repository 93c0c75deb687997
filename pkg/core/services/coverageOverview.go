package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

const (
	// DefaultOverviewMonths is the forward window used when the caller does
	// not pick one.
	DefaultOverviewMonths = 3

	minOverviewMonths = 1
	maxOverviewMonths = 6
)

// OverviewRow is one understaffed (month, scope, role) combination. Fully
// covered and demand-free combinations are omitted from the overview.
type OverviewRow struct {
	Month          string
	Scope          db.ScopeKey
	DepartmentName string
	ProgramName    string // empty for department-wide rows
	Role           string
	SlotsShort     int
}

// CoverageOverviewInput configures the overview window. MonthsAhead zero
// means DefaultOverviewMonths; values outside [1, 6] are clamped. StartMonth
// empty means the current calendar month.
type CoverageOverviewInput struct {
	MonthsAhead int
	StartMonth  string `validate:"omitempty,datetime=2006-01"`
}

// CoverageOverviewStore defines the database operations needed for the
// multi-scope overview.
type CoverageOverviewStore interface {
	ListDepartments(ctx context.Context) ([]db.Department, error)
	ListPrograms(ctx context.Context) ([]db.Program, error)
	GetRequirements(ctx context.Context, scope db.ScopeKey, from, to string) ([]db.Requirement, error)
	GetRecurringRequirements(ctx context.Context, scope db.ScopeKey) ([]db.RecurringRequirement, error)
	GetAssignments(ctx context.Context, filter db.AssignmentFilter) ([]db.Assignment, error)
}

// CoverageOverview runs the coverage aggregation for every department and
// program, plus the department-wide pseudo-scope of each department, across
// the forward month window, and reports every (month, scope, role) with a
// shortfall. Requirements and assignments are fetched once per scope for the
// whole window and bucketed per month, so the store is not re-consulted per
// (scope, month) pair.
func CoverageOverview(ctx context.Context, store CoverageOverviewStore, logger *zap.Logger, caller Caller, input CoverageOverviewInput) ([]OverviewRow, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	months := input.MonthsAhead
	switch {
	case months == 0:
		months = DefaultOverviewMonths
	case months < minOverviewMonths:
		months = minOverviewMonths
	case months > maxOverviewMonths:
		months = maxOverviewMonths
	}

	startMonth := input.StartMonth
	if startMonth == "" {
		startMonth = time.Now().UTC().Format(monthLayout)
	}
	windowStart, err := parseMonth(startMonth)
	if err != nil {
		return nil, err
	}

	windowFrom := windowStart.Format(dateLayout)
	windowTo := windowStart.AddDate(0, months, -1).Format(dateLayout)

	departments, err := store.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	programs, err := store.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	programsByDepartment := make(map[string][]db.Program)
	for _, program := range programs {
		programsByDepartment[program.DepartmentID] = append(programsByDepartment[program.DepartmentID], program)
	}

	logger.Debug("Computing coverage overview",
		zap.String("window_from", windowFrom),
		zap.String("window_to", windowTo),
		zap.Int("months", months),
		zap.Int("departments", len(departments)),
		zap.Int("programs", len(programs)))

	var rows []OverviewRow
	for _, department := range departments {
		scopes := []struct {
			key         db.ScopeKey
			programName string
		}{
			{key: db.ScopeKey{DepartmentID: department.ID}},
		}
		for _, program := range programsByDepartment[department.ID] {
			scopes = append(scopes, struct {
				key         db.ScopeKey
				programName string
			}{key: db.ScopeKey{DepartmentID: department.ID, ProgramID: program.ID}, programName: program.Name})
		}

		for _, scope := range scopes {
			scopeRows, err := overviewForScope(ctx, store, scope.key, windowStart, months)
			if err != nil {
				return nil, err
			}
			for i := range scopeRows {
				scopeRows[i].DepartmentName = department.Name
				scopeRows[i].ProgramName = scope.programName
			}
			rows = append(rows, scopeRows...)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		if rows[i].DepartmentName != rows[j].DepartmentName {
			return rows[i].DepartmentName < rows[j].DepartmentName
		}
		if rows[i].ProgramName != rows[j].ProgramName {
			return rows[i].ProgramName < rows[j].ProgramName
		}
		return rows[i].Role < rows[j].Role
	})

	logger.Info("Coverage overview computed",
		zap.Int("understaffed_rows", len(rows)))

	return rows, nil
}

// overviewForScope fetches one scope's demand and supply for the whole
// window, then walks it month by month accumulating per-role shortfall.
func overviewForScope(ctx context.Context, store CoverageOverviewStore, scope db.ScopeKey, windowStart time.Time, months int) ([]OverviewRow, error) {
	windowFrom := windowStart.Format(dateLayout)
	windowTo := windowStart.AddDate(0, months, -1).Format(dateLayout)

	explicit, err := store.GetRequirements(ctx, scope, windowFrom, windowTo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requirements for %s: %w", scope.String(), err)
	}
	templates, err := store.GetRecurringRequirements(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recurring requirements for %s: %w", scope.String(), err)
	}

	if len(explicit) == 0 && len(templates) == 0 {
		return nil, nil
	}

	assignments, err := store.GetAssignments(ctx, db.AssignmentFilter{
		From:  windowFrom,
		To:    windowTo,
		Scope: &scope,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments for %s: %w", scope.String(), err)
	}

	filledByKey := make(map[string]int, len(assignments))
	for _, assignment := range assignments {
		filledByKey[assignment.Date+"|"+assignment.Role]++
	}

	explicitByMonth := make(map[string][]db.Requirement)
	for _, req := range explicit {
		month := req.Date[:len(monthLayout)]
		explicitByMonth[month] = append(explicitByMonth[month], req)
	}

	var rows []OverviewRow
	for i := 0; i < months; i++ {
		monthStart := windowStart.AddDate(0, i, 0)
		monthEnd := monthStart.AddDate(0, 1, -1)
		month := monthStart.Format(monthLayout)

		effective, err := effectiveRequirements(explicitByMonth[month], templates, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}

		shortByRole := make(map[string]int)
		for _, requirement := range effective {
			filled := filledByKey[requirement.Date+"|"+requirement.Role]
			if filled < requirement.CountNeeded {
				shortByRole[requirement.Role] += requirement.CountNeeded - filled
			}
		}

		roles := make([]string, 0, len(shortByRole))
		for role := range shortByRole {
			roles = append(roles, role)
		}
		sort.Strings(roles)

		for _, role := range roles {
			rows = append(rows, OverviewRow{
				Month:      month,
				Scope:      scope,
				Role:       role,
				SlotsShort: shortByRole[role],
			})
		}
	}

	return rows, nil
}
