package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsnesn/staffrota/pkg/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SeedScopes(context.Background(),
		[]db.Department{{ID: "emergency", Name: "Emergency"}},
		[]db.Program{{ID: "triage", DepartmentID: "emergency", Name: "Triage"}},
	))
	return store
}

func scope() db.ScopeKey {
	return db.ScopeKey{DepartmentID: "emergency"}
}

func TestStore_ScopeLookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	department, err := store.GetDepartment(ctx, "emergency")
	require.NoError(t, err)
	assert.Equal(t, "Emergency", department.Name)

	_, err = store.GetDepartment(ctx, "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)

	program, err := store.GetProgram(ctx, "triage")
	require.NoError(t, err)
	assert.Equal(t, "emergency", program.DepartmentID)

	departments, err := store.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, departments, 1)

	programs, err := store.ListPrograms(ctx)
	require.NoError(t, err)
	assert.Len(t, programs, 1)
}

func TestStore_RequirementRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRequirements(ctx, []db.Requirement{
		{ID: "r1", Date: "2026-03-09", Role: "nurse", Scope: scope(), CountNeeded: 2},
		{ID: "r2", Date: "2026-03-16", Role: "nurse", Scope: scope(), CountNeeded: 3},
		{ID: "r3", Date: "2026-03-09", Role: "nurse", Scope: db.ScopeKey{DepartmentID: "emergency", ProgramID: "triage"}, CountNeeded: 1},
	}))

	// Scope matching is exact: the triage row stays invisible to the
	// department-wide query.
	reqs, err := store.GetRequirements(ctx, scope(), "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "r1", reqs[0].ID)
	assert.Equal(t, 2, reqs[0].CountNeeded)

	deleted, err := store.DeleteRequirementsRange(ctx, scope(), "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	reqs, err = store.GetRequirements(ctx, db.ScopeKey{DepartmentID: "emergency", ProgramID: "triage"}, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestStore_RecurringRequirements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedRecurringRequirements(ctx, []db.RecurringRequirement{
		{ID: "t1", DayOfWeek: 1, Role: "nurse", Scope: scope(), CountNeeded: 2},
	}))

	templates, err := store.GetRecurringRequirements(ctx, scope())
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, 1, templates[0].DayOfWeek)
	assert.Equal(t, 2, templates[0].CountNeeded)
}

func TestStore_ReplaceAvailabilityRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []db.Availability{
		{ID: "a1", UserID: "u1", Date: "2026-03-10", Role: "nurse", Scope: scope()},
		{ID: "a2", UserID: "u1", Date: "2026-03-25", Role: "nurse", Scope: scope()},
		{ID: "a3", UserID: "u2", Date: "2026-03-12", Role: "nurse", Scope: scope()},
	}
	for _, record := range seed {
		require.NoError(t, store.ReplaceAvailabilityRange(ctx, db.AvailabilityRangeKey{
			UserID: record.UserID, Scope: record.Scope, From: record.Date, To: record.Date,
		}, []db.Availability{record}))
	}

	// Replace u1's 2026-03-05..2026-03-15 window with one new date. The
	// record on the 25th and u2's record must survive.
	err := store.ReplaceAvailabilityRange(ctx, db.AvailabilityRangeKey{
		UserID: "u1", Scope: scope(), From: "2026-03-05", To: "2026-03-15",
	}, []db.Availability{
		{ID: "a4", UserID: "u1", Date: "2026-03-08", Role: "nurse", Scope: scope()},
	})
	require.NoError(t, err)

	records, err := store.GetAvailability(ctx, db.AvailabilityFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-03-08", records[0].Date)
	assert.Equal(t, "2026-03-25", records[1].Date)

	records, err = store.GetAvailability(ctx, db.AvailabilityFilter{UserID: "u2"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_DeleteAvailabilityRangeSpansUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, record := range []db.Availability{
		{ID: "a1", UserID: "u1", Date: "2026-03-10", Role: "nurse", Scope: scope()},
		{ID: "a2", UserID: "u2", Date: "2026-03-12", Role: "nurse", Scope: scope()},
		{ID: "a3", UserID: "u1", Date: "2026-04-10", Role: "nurse", Scope: scope()},
	} {
		require.NoError(t, store.ReplaceAvailabilityRange(ctx, db.AvailabilityRangeKey{
			UserID: record.UserID, Scope: record.Scope, From: record.Date, To: record.Date,
		}, []db.Availability{record}))
	}

	deleted, err := store.DeleteAvailabilityRange(ctx, scope(), "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	records, err := store.GetAvailability(ctx, db.AvailabilityFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-04-10", records[0].Date)
}

func TestStore_Unavailability(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedUnavailability(ctx, []db.Unavailability{
		{ID: "b1", UserID: "u1", Date: "2026-03-09"},
		{ID: "b2", UserID: "u2", Date: "2026-04-01"},
	}))

	records, err := store.GetUnavailability(ctx, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].UserID)
}

func TestStore_ReplacePendingAssignmentsKeepsConfirmed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key := db.AssignmentRangeKey{Scope: scope(), From: "2026-03-01", To: "2026-03-31"}
	require.NoError(t, store.ReplacePendingAssignments(ctx, key, []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-03-05", Role: "nurse", Scope: scope(), Status: db.StatusPending},
		{ID: "x2", UserID: "u2", Date: "2026-03-06", Role: "nurse", Scope: scope(), Status: db.StatusPending},
	}))

	// Confirm everything, then draft a new pending roster for the month.
	confirmed, err := store.ConfirmPendingAssignments(ctx, key)
	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	for _, assignment := range confirmed {
		assert.Equal(t, db.StatusConfirmed, assignment.Status)
	}

	require.NoError(t, store.ReplacePendingAssignments(ctx, key, []db.Assignment{
		{ID: "x3", UserID: "u3", Date: "2026-03-07", Role: "nurse", Scope: scope(), Status: db.StatusPending},
	}))

	all, err := store.GetAssignments(ctx, db.AssignmentFilter{Scope: scopePtr()})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := store.GetAssignments(ctx, db.AssignmentFilter{Scope: scopePtr(), Status: db.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "u3", pending[0].UserID)
}

func TestStore_ConfirmPendingAssignmentsEmptyRange(t *testing.T) {
	store := newTestStore(t)

	confirmed, err := store.ConfirmPendingAssignments(context.Background(), db.AssignmentRangeKey{
		Scope: scope(), From: "2026-03-01", To: "2026-03-31",
	})
	require.NoError(t, err)
	assert.Empty(t, confirmed)
}

func TestStore_GetAssignmentsRoleFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key := db.AssignmentRangeKey{Scope: scope(), From: "2026-03-01", To: "2026-03-31"}
	require.NoError(t, store.ReplacePendingAssignments(ctx, key, []db.Assignment{
		{ID: "x1", UserID: "u1", Date: "2026-03-05", Role: "nurse", Scope: scope(), Status: db.StatusPending},
		{ID: "x2", UserID: "u2", Date: "2026-03-05", Role: "doctor", Scope: scope(), Status: db.StatusPending},
	}))

	nurses, err := store.GetAssignments(ctx, db.AssignmentFilter{Scope: scopePtr(), Role: "nurse"})
	require.NoError(t, err)
	require.Len(t, nurses, 1)
	assert.Equal(t, "u1", nurses[0].UserID)
}

func scopePtr() *db.ScopeKey {
	s := scope()
	return &s
}
