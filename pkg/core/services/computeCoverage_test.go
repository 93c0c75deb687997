package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// mockCoverageStore implements a test double for ComputeCoverageStore
type mockCoverageStore struct {
	mockResolveStore
	assignments    []db.Assignment
	unavailability []db.Unavailability
}

func (m *mockCoverageStore) GetAssignments(ctx context.Context, filter db.AssignmentFilter) ([]db.Assignment, error) {
	var result []db.Assignment
	for _, assignment := range m.assignments {
		if filter.From != "" && assignment.Date < filter.From {
			continue
		}
		if filter.To != "" && assignment.Date > filter.To {
			continue
		}
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

func (m *mockCoverageStore) GetUnavailability(ctx context.Context, from, to string) ([]db.Unavailability, error) {
	var result []db.Unavailability
	for _, record := range m.unavailability {
		if record.Date >= from && record.Date <= to {
			result = append(result, record)
		}
	}
	return result, nil
}

func newCoverageStore() *mockCoverageStore {
	return &mockCoverageStore{mockResolveStore: *newResolveStore()}
}

func TestComputeCoverage_CountsPendingAndConfirmed(t *testing.T) {
	mock := newCoverageStore()
	mock.requirements = []db.Requirement{
		{ID: "r1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), CountNeeded: 3},
	}
	mock.assignments = []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), Status: db.StatusPending},
		{ID: "x2", UserID: "u2", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
	}

	logger := zap.NewNop()
	ctx := context.Background()

	result, err := ComputeCoverage(ctx, mock, logger, Caller{UserID: "m1", Role: RoleManager}, ComputeCoverageInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	assert.Equal(t, 3, row.Needed)
	assert.Equal(t, 2, row.Filled)
	assert.Equal(t, 1, row.Short)
	assert.Equal(t, 2, result.SlotsFilled)
	assert.Equal(t, 1, result.SlotsShort)
}

func TestComputeCoverage_OverfillIsNotClipped(t *testing.T) {
	mock := newCoverageStore()
	mock.requirements = []db.Requirement{
		{ID: "r1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), CountNeeded: 1},
	}
	mock.assignments = []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
		{ID: "x2", UserID: "u2", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
		{ID: "x3", UserID: "u3", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
	}

	result, err := ComputeCoverage(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ComputeCoverageInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, 3, result.Rows[0].Filled)
	assert.Equal(t, 0, result.Rows[0].Short)
	assert.Equal(t, 3, result.SlotsFilled)
	assert.Equal(t, 0, result.SlotsShort)
}

func TestComputeCoverage_FlagsBlackedOutAssignees(t *testing.T) {
	mock := newCoverageStore()
	mock.requirements = []db.Requirement{
		{ID: "r1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), CountNeeded: 2},
	}
	mock.assignments = []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
		{ID: "x2", UserID: "u2", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
	}
	mock.unavailability = []db.Unavailability{
		{ID: "b1", UserID: "u2", Date: "2026-03-09"},
		// Blackout on a different date must not flag anyone.
		{ID: "b2", UserID: "u1", Date: "2026-03-10"},
	}

	result, err := ComputeCoverage(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ComputeCoverageInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	// The blacked-out assignee still counts as filled; the flag is advisory.
	assert.Equal(t, 2, row.Filled)
	assert.Equal(t, []string{"u2"}, row.Blackouts)
}

func TestComputeCoverage_BlackoutListedOncePerUser(t *testing.T) {
	mock := newCoverageStore()
	mock.requirements = []db.Requirement{
		{ID: "r1", Date: "2026-03-02", Role: "nurse", Scope: emergencyScope(), CountNeeded: 2},
	}
	// The same user holds two assignments on the triple.
	mock.assignments = []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-03-02", Role: "nurse", Scope: emergencyScope(), Status: db.StatusConfirmed},
		{ID: "x2", UserID: "u1", Date: "2026-03-02", Role: "nurse", Scope: emergencyScope(), Status: db.StatusPending},
	}
	mock.unavailability = []db.Unavailability{
		{ID: "b1", UserID: "u1", Date: "2026-03-02"},
	}

	result, err := ComputeCoverage(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ComputeCoverageInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	assert.Equal(t, 2, row.Filled)
	assert.Equal(t, []string{"u1"}, row.Blackouts)
}

func TestComputeCoverage_MergesTemplatesIntoDemand(t *testing.T) {
	mock := newCoverageStore()
	mock.templates = []db.RecurringRequirement{
		{ID: "t1", DayOfWeek: 1, Role: "nurse", Scope: emergencyScope(), CountNeeded: 1},
	}

	// One Monday in range, nobody assigned.
	result, err := ComputeCoverage(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ComputeCoverageInput{
		From:  "2026-03-09",
		To:    "2026-03-09",
		Scope: emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.Rows[0].Short)
	assert.Equal(t, 1, result.SlotsShort)
}
