package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

// mockResolveStore implements a test double for ResolveRequirementsStore
type mockResolveStore struct {
	departments  map[string]db.Department
	programs     map[string]db.Program
	requirements []db.Requirement
	templates    []db.RecurringRequirement

	requirementsErr error
}

func (m *mockResolveStore) GetDepartment(ctx context.Context, id string) (*db.Department, error) {
	if department, ok := m.departments[id]; ok {
		return &department, nil
	}
	return nil, db.ErrNotFound
}

func (m *mockResolveStore) GetProgram(ctx context.Context, id string) (*db.Program, error) {
	if program, ok := m.programs[id]; ok {
		return &program, nil
	}
	return nil, db.ErrNotFound
}

func (m *mockResolveStore) GetRequirements(ctx context.Context, scope db.ScopeKey, from, to string) ([]db.Requirement, error) {
	if m.requirementsErr != nil {
		return nil, m.requirementsErr
	}
	var result []db.Requirement
	for _, req := range m.requirements {
		if req.Scope == scope && req.Date >= from && req.Date <= to {
			result = append(result, req)
		}
	}
	return result, nil
}

func (m *mockResolveStore) GetRecurringRequirements(ctx context.Context, scope db.ScopeKey) ([]db.RecurringRequirement, error) {
	var result []db.RecurringRequirement
	for _, template := range m.templates {
		if template.Scope == scope {
			result = append(result, template)
		}
	}
	return result, nil
}

func emergencyScope() db.ScopeKey {
	return db.ScopeKey{DepartmentID: "emergency"}
}

func newResolveStore() *mockResolveStore {
	return &mockResolveStore{
		departments: map[string]db.Department{
			"emergency": {ID: "emergency", Name: "Emergency"},
		},
		programs: map[string]db.Program{
			"triage": {ID: "triage", DepartmentID: "emergency", Name: "Triage"},
		},
	}
}

func TestResolveRequirements_TemplateExpansion(t *testing.T) {
	mock := newResolveStore()
	// Every Monday needs 2 nurses.
	mock.templates = []db.RecurringRequirement{
		{ID: "t1", DayOfWeek: 1, Role: "nurse", Scope: emergencyScope(), CountNeeded: 2},
	}

	logger := zap.NewNop()
	ctx := context.Background()

	// March 2026 has Mondays on the 2nd, 9th, 16th, 23rd and 30th.
	result, err := ResolveRequirements(ctx, mock, logger, Caller{UserID: "m1", Role: RoleManager}, ResolveRequirementsInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, result, 5)
	expected := []string{"2026-03-02", "2026-03-09", "2026-03-16", "2026-03-23", "2026-03-30"}
	for i, row := range result {
		assert.Equal(t, expected[i], row.Date)
		assert.Equal(t, "nurse", row.Role)
		assert.Equal(t, 2, row.CountNeeded)
	}
}

func TestResolveRequirements_ExplicitOverridesTemplate(t *testing.T) {
	mock := newResolveStore()
	mock.templates = []db.RecurringRequirement{
		{ID: "t1", DayOfWeek: 1, Role: "nurse", Scope: emergencyScope(), CountNeeded: 2},
	}
	// Explicit row on one of the Mondays bumps the count; the template must
	// not also contribute for that date.
	mock.requirements = []db.Requirement{
		{ID: "r1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), CountNeeded: 5},
	}

	result, err := ResolveRequirements(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ResolveRequirementsInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, result, 5)
	byDate := make(map[string]EffectiveRequirement)
	for _, row := range result {
		byDate[row.Date] = row
	}
	assert.Equal(t, 5, byDate["2026-03-09"].CountNeeded)
	assert.Equal(t, 2, byDate["2026-03-02"].CountNeeded)
}

func TestResolveRequirements_ZeroCountSuppressesTemplate(t *testing.T) {
	mock := newResolveStore()
	mock.templates = []db.RecurringRequirement{
		{ID: "t1", DayOfWeek: 1, Role: "nurse", Scope: emergencyScope(), CountNeeded: 2},
	}
	// A zero-count explicit row cancels the Monday without appearing in the
	// effective set itself.
	mock.requirements = []db.Requirement{
		{ID: "r1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope(), CountNeeded: 0},
	}

	result, err := ResolveRequirements(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ResolveRequirementsInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, result, 4)
	for _, row := range result {
		assert.NotEqual(t, "2026-03-09", row.Date)
	}
}

func TestResolveRequirements_ScopesAreDisjoint(t *testing.T) {
	mock := newResolveStore()
	// Department-wide template must not leak into the triage program scope.
	mock.templates = []db.RecurringRequirement{
		{ID: "t1", DayOfWeek: 1, Role: "nurse", Scope: emergencyScope(), CountNeeded: 2},
	}

	triage := db.ScopeKey{DepartmentID: "emergency", ProgramID: "triage"}
	result, err := ResolveRequirements(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ResolveRequirementsInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: triage,
	})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolveRequirements_ProgramMustBelongToDepartment(t *testing.T) {
	mock := newResolveStore()
	mock.departments["surgery"] = db.Department{ID: "surgery", Name: "Surgery"}

	_, err := ResolveRequirements(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ResolveRequirementsInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: db.ScopeKey{DepartmentID: "surgery", ProgramID: "triage"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolveRequirements_RejectsInvertedRange(t *testing.T) {
	mock := newResolveStore()

	_, err := ResolveRequirements(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ResolveRequirementsInput{
		From:  "2026-03-31",
		To:    "2026-03-01",
		Scope: emergencyScope(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolveRequirements_UnknownDepartment(t *testing.T) {
	mock := newResolveStore()

	_, err := ResolveRequirements(context.Background(), mock, zap.NewNop(), Caller{UserID: "m1", Role: RoleManager}, ResolveRequirementsInput{
		From:  "2026-03-01",
		To:    "2026-03-31",
		Scope: db.ScopeKey{DepartmentID: "nope"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
