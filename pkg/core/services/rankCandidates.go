package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// Candidate is one ranked suggestion for who to assign next.
type Candidate struct {
	UserID          string
	AssignmentCount int
}

// RankCandidatesInput selects the scope and role to rank for. Date, when
// given, narrows the list to users with an availability record on that exact
// date.
type RankCandidatesInput struct {
	Scope db.ScopeKey
	Role  string `validate:"required"`
	Date  string `validate:"omitempty,datetime=2006-01-02"`
}

// RankCandidatesStore defines the database operations needed to rank
// candidates.
type RankCandidatesStore interface {
	ScopeResolver
	GetAssignments(ctx context.Context, filter db.AssignmentFilter) ([]db.Assignment, error)
	GetAvailability(ctx context.Context, filter db.AvailabilityFilter) ([]db.Availability, error)
}

// RankCandidates ranks users for a (scope, role) by their total historical
// assignment count, any status, all time, descending; ties break on user id
// so the order is deterministic. When nobody has history, the fallback is
// the distinct set of users holding an availability record for the scope
// whose role matches exactly or is blank, each reported with count zero.
// A final human decision picks from the list; nothing is assigned here.
func RankCandidates(ctx context.Context, store RankCandidatesStore, logger *zap.Logger, caller Caller, input RankCandidatesInput) ([]Candidate, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := validateScope(ctx, store, input.Scope); err != nil {
		return nil, err
	}

	assignments, err := store.GetAssignments(ctx, db.AssignmentFilter{
		Scope: &input.Scope,
		Role:  input.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment history: %w", err)
	}

	counts := make(map[string]int)
	for _, assignment := range assignments {
		counts[assignment.UserID]++
	}

	var candidates []Candidate
	if len(counts) > 0 {
		for userID, count := range counts {
			candidates = append(candidates, Candidate{UserID: userID, AssignmentCount: count})
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].AssignmentCount != candidates[j].AssignmentCount {
				return candidates[i].AssignmentCount > candidates[j].AssignmentCount
			}
			return candidates[i].UserID < candidates[j].UserID
		})
	} else {
		users, err := availableUsers(ctx, store, input.Scope, input.Role, "")
		if err != nil {
			return nil, err
		}
		for _, userID := range users {
			candidates = append(candidates, Candidate{UserID: userID})
		}
	}

	if input.Date != "" {
		onDate, err := availableUsers(ctx, store, input.Scope, input.Role, input.Date)
		if err != nil {
			return nil, err
		}
		available := make(map[string]bool, len(onDate))
		for _, userID := range onDate {
			available[userID] = true
		}

		filtered := candidates[:0]
		for _, candidate := range candidates {
			if available[candidate.UserID] {
				filtered = append(filtered, candidate)
			}
		}
		candidates = filtered
	}

	logger.Debug("Candidates ranked",
		zap.String("scope", input.Scope.String()),
		zap.String("role", input.Role),
		zap.String("date", input.Date),
		zap.Int("count", len(candidates)))

	return candidates, nil
}

// availableUsers returns the sorted distinct users with an availability
// record for the scope whose role matches exactly or is blank. A non-empty
// date restricts the search to that single day.
func availableUsers(ctx context.Context, store RankCandidatesStore, scope db.ScopeKey, role, date string) ([]string, error) {
	filter := db.AvailabilityFilter{Scope: &scope}
	if date != "" {
		filter.From = date
		filter.To = date
	}

	records, err := store.GetAvailability(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}

	seen := make(map[string]bool)
	var users []string
	for _, record := range records {
		if record.Role != "" && record.Role != role {
			continue
		}
		if seen[record.UserID] {
			continue
		}
		seen[record.UserID] = true
		users = append(users, record.UserID)
	}
	sort.Strings(users)
	return users, nil
}
