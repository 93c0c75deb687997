package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// mockRankStore implements a test double for RankCandidatesStore
type mockRankStore struct {
	departments  map[string]db.Department
	assignments  []db.Assignment
	availability []db.Availability
}

func (m *mockRankStore) GetDepartment(ctx context.Context, id string) (*db.Department, error) {
	if department, ok := m.departments[id]; ok {
		return &department, nil
	}
	return nil, db.ErrNotFound
}

func (m *mockRankStore) GetProgram(ctx context.Context, id string) (*db.Program, error) {
	return nil, db.ErrNotFound
}

func (m *mockRankStore) GetAssignments(ctx context.Context, filter db.AssignmentFilter) ([]db.Assignment, error) {
	var result []db.Assignment
	for _, assignment := range m.assignments {
		if filter.Scope != nil && assignment.Scope != *filter.Scope {
			continue
		}
		if filter.Role != "" && assignment.Role != filter.Role {
			continue
		}
		if filter.Status != "" && assignment.Status != filter.Status {
			continue
		}
		result = append(result, assignment)
	}
	return result, nil
}

func (m *mockRankStore) GetAvailability(ctx context.Context, filter db.AvailabilityFilter) ([]db.Availability, error) {
	var result []db.Availability
	for _, record := range m.availability {
		if filter.Scope != nil && record.Scope != *filter.Scope {
			continue
		}
		if filter.From != "" && record.Date < filter.From {
			continue
		}
		if filter.To != "" && record.Date > filter.To {
			continue
		}
		result = append(result, record)
	}
	return result, nil
}

func newRankStore() *mockRankStore {
	return &mockRankStore{
		departments: map[string]db.Department{
			"emergency": {ID: "emergency", Name: "Emergency"},
		},
	}
}

func TestRankCandidates_OrdersByHistoryThenUserID(t *testing.T) {
	mock := newRankStore()
	mock.assignments = []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-01-05", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
		{ID: "x2", UserID: "u2", Date: "2026-01-05", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
		{ID: "x3", UserID: "u2", Date: "2026-01-12", Role: "nurse", Scope: emergencyScope(), Status: db.StatusPending},
		{ID: "x4", UserID: "u3", Date: "2026-01-05", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
	}

	logger := zap.NewNop()
	ctx := context.Background()

	candidates, err := RankCandidates(ctx, mock, logger, Caller{UserID: "m1", Role: RoleManager}, RankCandidatesInput{
		Scope: emergencyScope(),
		Role:  "nurse",
	})
	require.NoError(t, err)

	// u2 leads with two assignments, pending included; u1 and u3 tie on one
	// and break on user id.
	require.Len(t, candidates, 3)
	assert.Equal(t, Candidate{UserID: "u2", AssignmentCount: 2}, candidates[0])
	assert.Equal(t, Candidate{UserID: "u1", AssignmentCount: 1}, candidates[1])
	assert.Equal(t, Candidate{UserID: "u3", AssignmentCount: 1}, candidates[2])
}

func TestRankCandidates_IgnoresOtherRolesHistory(t *testing.T) {
	mock := newRankStore()
	mock.assignments = []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-01-05", Role: "doctor", Scope: emergencyScope(), Status: db.StatusConfirmed},
	}

	candidates, err := RankCandidates(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, RankCandidatesInput{
		Scope: emergencyScope(),
		Role:  "nurse",
	})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestRankCandidates_FallsBackToAvailability(t *testing.T) {
	mock := newRankStore()
	mock.availability = []db.Availability{
		{ID: "a1", UserID: "u2", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope()},
		{ID: "a2", UserID: "u1", Date: "2026-03-09", Role: "", Scope: emergencyScope()},
		// Wrong role never qualifies for the fallback.
		{ID: "a3", UserID: "u3", Date: "2026-03-09", Role: "doctor", Scope: emergencyScope()},
	}

	candidates, err := RankCandidates(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, RankCandidatesInput{
		Scope: emergencyScope(),
		Role:  "nurse",
	})
	require.NoError(t, err)

	// Blank-role availability counts as a match; everyone reports zero.
	require.Len(t, candidates, 2)
	assert.Equal(t, Candidate{UserID: "u1"}, candidates[0])
	assert.Equal(t, Candidate{UserID: "u2"}, candidates[1])
}

func TestRankCandidates_DateFilterNarrowsList(t *testing.T) {
	mock := newRankStore()
	mock.assignments = []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-01-05", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
		{ID: "x2", UserID: "u2", Date: "2026-01-05", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
	}
	// Only u2 declared availability on the asked date.
	mock.availability = []db.Availability{
		{ID: "a1", UserID: "u2", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope()},
		{ID: "a2", UserID: "u1", Date: "2026-03-10", Role: "nurse", Scope: emergencyScope()},
	}

	candidates, err := RankCandidates(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, RankCandidatesInput{
		Scope: emergencyScope(),
		Role:  "nurse",
		Date:  "2026-03-09",
	})
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "u2", candidates[0].UserID)
	assert.Equal(t, 1, candidates[0].AssignmentCount)
}

func TestRankCandidates_RequiresRole(t *testing.T) {
	mock := newRankStore()

	_, err := RankCandidates(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, RankCandidatesInput{
		Scope: emergencyScope(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
