package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// CoverageRow compares demand against supply for one (date, role).
type CoverageRow struct {
	Date   string
	Role   string
	Needed int
	Filled int // pending + confirmed assignments, not clipped to Needed
	Short  int // max(0, Needed - Filled)

	// Blackouts lists assigned users who declared unavailability on the
	// date. A signal for the manager, never an enforced constraint.
	Blackouts []string
}

// CoverageResult is the coverage table for a range plus its aggregates.
type CoverageResult struct {
	Rows []CoverageRow

	// SlotsFilled sums raw filled counts across all rows. Over-staffed rows
	// count in full; they are deliberately not clipped to their Needed.
	SlotsFilled int

	// SlotsShort sums unmet demand across all rows.
	SlotsShort int
}

// ComputeCoverageInput selects the range and scope to aggregate.
type ComputeCoverageInput struct {
	From  string `validate:"required,datetime=2006-01-02"`
	To    string `validate:"required,datetime=2006-01-02"`
	Scope db.ScopeKey
}

// ComputeCoverageStore defines the database operations needed to compute
// coverage.
type ComputeCoverageStore interface {
	ResolveRequirementsStore
	GetAssignments(ctx context.Context, filter db.AssignmentFilter) ([]db.Assignment, error)
	GetUnavailability(ctx context.Context, from, to string) ([]db.Unavailability, error)
}

// ComputeCoverage joins the effective requirement set with assignment counts
// for the range and scope. Filled counts both pending and confirmed rows,
// each assignment being one filled slot.
func ComputeCoverage(ctx context.Context, store ComputeCoverageStore, logger *zap.Logger, caller Caller, input ComputeCoverageInput) (*CoverageResult, error) {
	requirements, err := ResolveRequirements(ctx, store, logger, caller, ResolveRequirementsInput(input))
	if err != nil {
		return nil, err
	}

	assignments, err := store.GetAssignments(ctx, db.AssignmentFilter{
		From:  input.From,
		To:    input.To,
		Scope: &input.Scope,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	blackouts, err := store.GetUnavailability(ctx, input.From, input.To)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unavailability: %w", err)
	}

	result := buildCoverage(requirements, assignments, blackouts)

	logger.Debug("Coverage computed",
		zap.String("scope", input.Scope.String()),
		zap.Int("rows", len(result.Rows)),
		zap.Int("slots_filled", result.SlotsFilled),
		zap.Int("slots_short", result.SlotsShort))

	return result, nil
}

// buildCoverage joins pre-fetched requirement, assignment and blackout rows.
func buildCoverage(requirements []EffectiveRequirement, assignments []db.Assignment, blackouts []db.Unavailability) *CoverageResult {
	assignedByKey := make(map[string][]db.Assignment)
	for _, assignment := range assignments {
		key := assignment.Date + "|" + assignment.Role
		assignedByKey[key] = append(assignedByKey[key], assignment)
	}

	blackedOut := make(map[string]bool, len(blackouts))
	for _, blackout := range blackouts {
		blackedOut[blackout.UserID+"|"+blackout.Date] = true
	}

	result := &CoverageResult{Rows: make([]CoverageRow, 0, len(requirements))}
	for _, requirement := range requirements {
		assigned := assignedByKey[requirement.Date+"|"+requirement.Role]

		// A user may hold several assignments on the triple; flag them once.
		flaggedSet := make(map[string]bool)
		var flagged []string
		for _, assignment := range assigned {
			if blackedOut[assignment.UserID+"|"+assignment.Date] && !flaggedSet[assignment.UserID] {
				flaggedSet[assignment.UserID] = true
				flagged = append(flagged, assignment.UserID)
			}
		}
		sort.Strings(flagged)

		row := CoverageRow{
			Date:      requirement.Date,
			Role:      requirement.Role,
			Needed:    requirement.CountNeeded,
			Filled:    len(assigned),
			Blackouts: flagged,
		}
		if row.Filled < row.Needed {
			row.Short = row.Needed - row.Filled
		}

		result.Rows = append(result.Rows, row)
		result.SlotsFilled += row.Filled
		result.SlotsShort += row.Short
	}

	return result
}
