package db

import "fmt"

// Assignment status values. Transitions are monotonic: pending -> confirmed.
// There is no reject status; removing a pending row is a hard delete.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// ScopeKey identifies the organizational unit a requirement, availability or
// assignment record applies to. ProgramID empty means the whole department.
// ScopeKey is a value type: it has no lifecycle of its own and is used as the
// partition key for all demand/supply records.
type ScopeKey struct {
	DepartmentID string
	ProgramID    string
}

// DepartmentWide reports whether the key addresses the whole department
// rather than a specific program.
func (k ScopeKey) DepartmentWide() bool {
	return k.ProgramID == ""
}

func (k ScopeKey) String() string {
	if k.DepartmentWide() {
		return k.DepartmentID
	}
	return fmt.Sprintf("%s/%s", k.DepartmentID, k.ProgramID)
}

// Department is an organizational unit. Departments and programs are seeded
// by the surrounding administration system; the core only reads them.
type Department struct {
	ID   string
	Name string
}

// Program is a sub-unit of exactly one department.
type Program struct {
	ID           string
	DepartmentID string
	Name         string
}

// RecurringRequirement is a standing weekly staffing policy: on every date
// whose weekday matches DayOfWeek, CountNeeded people of Role are needed for
// the scope. Unique per (day_of_week, role, scope). DayOfWeek follows
// time.Weekday numbering: 0 = Sunday .. 6 = Saturday.
type RecurringRequirement struct {
	ID          string
	DayOfWeek   int
	Role        string
	Scope       ScopeKey
	CountNeeded int
}

// Requirement is an explicit demand record pinned to one date. Unique per
// (date, role, scope). Once a row exists for a (date, role, scope) it
// permanently overrides any recurring template for that triple; deleting it
// makes the triple fall back to the template.
type Requirement struct {
	ID          string
	Date        string // YYYY-MM-DD
	Role        string
	Scope       ScopeKey
	CountNeeded int
}

// Availability is a user's declaration that they can work a date for a scope
// in a role. A user holds at most one role per (date, scope); writes are
// range replacements, never merges.
type Availability struct {
	ID     string
	UserID string
	Date   string // YYYY-MM-DD
	Role   string
	Scope  ScopeKey
}

// Unavailability is a hard blackout for a user on a date, scope-independent.
// It is surfaced as a signal for manual decisions and never blocks an
// assignment write.
type Unavailability struct {
	ID     string
	UserID string
	Date   string // YYYY-MM-DD
}

// Assignment is one filled slot for (date, role, scope). The count of rows
// for a triple is the fill quantity compared against a requirement's
// CountNeeded.
type Assignment struct {
	ID     string
	UserID string
	Date   string // YYYY-MM-DD
	Role   string
	Scope  ScopeKey
	Status string // StatusPending or StatusConfirmed
}
