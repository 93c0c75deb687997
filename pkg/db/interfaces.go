package db

import "context"

// AvailabilityFilter narrows availability reads. Zero values mean "any".
type AvailabilityFilter struct {
	UserID string
	From   string // YYYY-MM-DD inclusive
	To     string // YYYY-MM-DD inclusive
	Scope  *ScopeKey
}

// AssignmentFilter narrows assignment reads. Zero values mean "any".
type AssignmentFilter struct {
	From   string
	To     string
	Scope  *ScopeKey
	Role   string
	Status string
}

// AvailabilityRangeKey identifies the replace window for an availability
// write: every row for the user+scope with From <= date <= To is deleted
// before the new rows are inserted, in one transaction. Last write wins.
type AvailabilityRangeKey struct {
	UserID string
	Scope  ScopeKey
	From   string
	To     string
}

// AssignmentRangeKey identifies the replace window for a pending-assignment
// write: every pending row for the scope with From <= date <= To is deleted
// before the new rows are inserted, in one transaction. Confirmed rows are
// never touched.
type AssignmentRangeKey struct {
	Scope ScopeKey
	From  string
	To    string
}

// ScopeStore provides the department/program hierarchy.
type ScopeStore interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	ListPrograms(ctx context.Context) ([]Program, error)
	GetDepartment(ctx context.Context, id string) (*Department, error)
	GetProgram(ctx context.Context, id string) (*Program, error)
}

// RequirementStore provides demand-side records.
type RequirementStore interface {
	GetRequirements(ctx context.Context, scope ScopeKey, from, to string) ([]Requirement, error)
	GetRecurringRequirements(ctx context.Context, scope ScopeKey) ([]RecurringRequirement, error)
	InsertRequirements(ctx context.Context, reqs []Requirement) error
	DeleteRequirementsRange(ctx context.Context, scope ScopeKey, from, to string) (int, error)
}

// AvailabilityStore provides supply-side declarations.
type AvailabilityStore interface {
	GetAvailability(ctx context.Context, filter AvailabilityFilter) ([]Availability, error)
	ReplaceAvailabilityRange(ctx context.Context, key AvailabilityRangeKey, rows []Availability) error
	DeleteAvailabilityRange(ctx context.Context, scope ScopeKey, from, to string) (int, error)
	GetUnavailability(ctx context.Context, from, to string) ([]Unavailability, error)
}

// AssignmentStore provides booking records.
type AssignmentStore interface {
	GetAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error)
	ReplacePendingAssignments(ctx context.Context, key AssignmentRangeKey, rows []Assignment) error
	// ConfirmPendingAssignments flips every pending row in the key's range to
	// confirmed and returns the affected rows, selected before the update,
	// in one transaction.
	ConfirmPendingAssignments(ctx context.Context, key AssignmentRangeKey) ([]Assignment, error)
}

// Database is the union of all store capabilities. Both the postgres and the
// sqlite backends implement it.
type Database interface {
	ScopeStore
	RequirementStore
	AvailabilityStore
	AssignmentStore
}
