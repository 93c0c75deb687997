// Package sqlite provides a SQLite-backed implementation of db.Database,
// used for local development and tests. The postgres backend is the
// production store; the two share the same contracts, including the
// transactional replace-range semantics.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hsnesn/staffrota/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS department (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS program (
	id            TEXT PRIMARY KEY,
	department_id TEXT NOT NULL REFERENCES department (id),
	name          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recurring_requirement (
	id            TEXT PRIMARY KEY,
	day_of_week   INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	role          TEXT NOT NULL,
	department_id TEXT NOT NULL,
	program_id    TEXT NOT NULL DEFAULT '',
	count_needed  INTEGER NOT NULL CHECK (count_needed >= 0),
	UNIQUE (day_of_week, role, department_id, program_id)
);

CREATE TABLE IF NOT EXISTS requirement (
	id            TEXT PRIMARY KEY,
	date          TEXT NOT NULL,
	role          TEXT NOT NULL,
	department_id TEXT NOT NULL,
	program_id    TEXT NOT NULL DEFAULT '',
	count_needed  INTEGER NOT NULL CHECK (count_needed >= 0),
	UNIQUE (date, role, department_id, program_id)
);

CREATE TABLE IF NOT EXISTS availability (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	date          TEXT NOT NULL,
	role          TEXT NOT NULL,
	department_id TEXT NOT NULL,
	program_id    TEXT NOT NULL DEFAULT '',
	UNIQUE (user_id, date, department_id, program_id)
);

CREATE TABLE IF NOT EXISTS unavailability (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	date    TEXT NOT NULL,
	UNIQUE (user_id, date)
);

CREATE TABLE IF NOT EXISTS assignment (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	date          TEXT NOT NULL,
	role          TEXT NOT NULL,
	department_id TEXT NOT NULL,
	program_id    TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL CHECK (status IN ('pending', 'confirmed'))
);

CREATE INDEX IF NOT EXISTS idx_requirement_scope_date ON requirement (department_id, program_id, date);
CREATE INDEX IF NOT EXISTS idx_availability_scope_date ON availability (department_id, program_id, date);
CREATE INDEX IF NOT EXISTS idx_assignment_scope_date ON assignment (department_id, program_id, date);
`

// Store implements db.Database on SQLite.
type Store struct {
	sqldb *sql.DB
}

// New opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func New(path string) (*Store, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := sqldb.Exec(schema); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{sqldb: sqldb}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.sqldb.Close()
}

// SeedScopes inserts departments and programs, replacing rows with the same
// id. Intended for development and test setup.
func (s *Store) SeedScopes(ctx context.Context, departments []db.Department, programs []db.Program) error {
	tx, err := s.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, department := range departments {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO department (id, name) VALUES (?, ?)`, department.ID, department.Name); err != nil {
			return fmt.Errorf("failed to insert department: %w", err)
		}
	}
	for _, program := range programs {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO program (id, department_id, name) VALUES (?, ?, ?)`, program.ID, program.DepartmentID, program.Name); err != nil {
			return fmt.Errorf("failed to insert program: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SeedRecurringRequirements inserts weekly templates.
func (s *Store) SeedRecurringRequirements(ctx context.Context, templates []db.RecurringRequirement) error {
	for _, template := range templates {
		_, err := s.sqldb.ExecContext(ctx, `
			INSERT OR REPLACE INTO recurring_requirement (id, day_of_week, role, department_id, program_id, count_needed)
			VALUES (?, ?, ?, ?, ?, ?)
		`, template.ID, template.DayOfWeek, template.Role, template.Scope.DepartmentID, template.Scope.ProgramID, template.CountNeeded)
		if err != nil {
			return fmt.Errorf("failed to insert recurring requirement: %w", err)
		}
	}
	return nil
}

// SeedUnavailability inserts blackout records.
func (s *Store) SeedUnavailability(ctx context.Context, records []db.Unavailability) error {
	for _, record := range records {
		_, err := s.sqldb.ExecContext(ctx, `
			INSERT OR REPLACE INTO unavailability (id, user_id, date) VALUES (?, ?, ?)
		`, record.ID, record.UserID, record.Date)
		if err != nil {
			return fmt.Errorf("failed to insert unavailability: %w", err)
		}
	}
	return nil
}

// GetDepartment retrieves one department by id.
func (s *Store) GetDepartment(ctx context.Context, id string) (*db.Department, error) {
	var department db.Department
	err := s.sqldb.QueryRowContext(ctx, `SELECT id, name FROM department WHERE id = ?`, id).
		Scan(&department.ID, &department.Name)
	if err == sql.ErrNoRows {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query department: %w", err)
	}
	return &department, nil
}

// GetProgram retrieves one program by id.
func (s *Store) GetProgram(ctx context.Context, id string) (*db.Program, error) {
	var program db.Program
	err := s.sqldb.QueryRowContext(ctx, `SELECT id, department_id, name FROM program WHERE id = ?`, id).
		Scan(&program.ID, &program.DepartmentID, &program.Name)
	if err == sql.ErrNoRows {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query program: %w", err)
	}
	return &program, nil
}

// ListDepartments retrieves all departments ordered by name.
func (s *Store) ListDepartments(ctx context.Context) ([]db.Department, error) {
	rows, err := s.sqldb.QueryContext(ctx, `SELECT id, name FROM department ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []db.Department
	for rows.Next() {
		var department db.Department
		if err := rows.Scan(&department.ID, &department.Name); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, department)
	}
	return departments, rows.Err()
}

// ListPrograms retrieves all programs ordered by name.
func (s *Store) ListPrograms(ctx context.Context) ([]db.Program, error) {
	rows, err := s.sqldb.QueryContext(ctx, `SELECT id, department_id, name FROM program ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	var programs []db.Program
	for rows.Next() {
		var program db.Program
		if err := rows.Scan(&program.ID, &program.DepartmentID, &program.Name); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, program)
	}
	return programs, rows.Err()
}

// GetRequirements retrieves explicit requirement rows for a scope within
// [from, to].
func (s *Store) GetRequirements(ctx context.Context, scope db.ScopeKey, from, to string) ([]db.Requirement, error) {
	rows, err := s.sqldb.QueryContext(ctx, `
		SELECT id, date, role, department_id, program_id, count_needed
		FROM requirement
		WHERE department_id = ? AND program_id = ? AND date >= ? AND date <= ?
		ORDER BY date, role
	`, scope.DepartmentID, scope.ProgramID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirements: %w", err)
	}
	defer rows.Close()

	var requirements []db.Requirement
	for rows.Next() {
		var req db.Requirement
		if err := rows.Scan(&req.ID, &req.Date, &req.Role, &req.Scope.DepartmentID, &req.Scope.ProgramID, &req.CountNeeded); err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		requirements = append(requirements, req)
	}
	return requirements, rows.Err()
}

// GetRecurringRequirements retrieves all weekly templates for a scope.
func (s *Store) GetRecurringRequirements(ctx context.Context, scope db.ScopeKey) ([]db.RecurringRequirement, error) {
	rows, err := s.sqldb.QueryContext(ctx, `
		SELECT id, day_of_week, role, department_id, program_id, count_needed
		FROM recurring_requirement
		WHERE department_id = ? AND program_id = ?
		ORDER BY day_of_week, role
	`, scope.DepartmentID, scope.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring requirements: %w", err)
	}
	defer rows.Close()

	var templates []db.RecurringRequirement
	for rows.Next() {
		var template db.RecurringRequirement
		if err := rows.Scan(&template.ID, &template.DayOfWeek, &template.Role, &template.Scope.DepartmentID, &template.Scope.ProgramID, &template.CountNeeded); err != nil {
			return nil, fmt.Errorf("failed to scan recurring requirement: %w", err)
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

// InsertRequirements inserts explicit requirement rows in one transaction.
func (s *Store) InsertRequirements(ctx context.Context, reqs []db.Requirement) error {
	if len(reqs) == 0 {
		return nil
	}

	tx, err := s.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, req := range reqs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO requirement (id, date, role, department_id, program_id, count_needed)
			VALUES (?, ?, ?, ?, ?, ?)
		`, req.ID, req.Date, req.Role, req.Scope.DepartmentID, req.Scope.ProgramID, req.CountNeeded)
		if err != nil {
			return fmt.Errorf("failed to insert requirement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteRequirementsRange deletes explicit requirement rows for a scope
// within [from, to].
func (s *Store) DeleteRequirementsRange(ctx context.Context, scope db.ScopeKey, from, to string) (int, error) {
	result, err := s.sqldb.ExecContext(ctx, `
		DELETE FROM requirement
		WHERE department_id = ? AND program_id = ? AND date >= ? AND date <= ?
	`, scope.DepartmentID, scope.ProgramID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete requirements: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted requirements: %w", err)
	}
	return int(affected), nil
}

// GetAvailability retrieves availability records matching the filter.
func (s *Store) GetAvailability(ctx context.Context, filter db.AvailabilityFilter) ([]db.Availability, error) {
	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.From != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.To)
	}
	if filter.Scope != nil {
		conditions = append(conditions, "department_id = ?", "program_id = ?")
		args = append(args, filter.Scope.DepartmentID, filter.Scope.ProgramID)
	}

	query := `SELECT id, user_id, date, role, department_id, program_id FROM availability`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, user_id"

	rows, err := s.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var records []db.Availability
	for rows.Next() {
		var record db.Availability
		if err := rows.Scan(&record.ID, &record.UserID, &record.Date, &record.Role, &record.Scope.DepartmentID, &record.Scope.ProgramID); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ReplaceAvailabilityRange deletes the key's range then inserts the new
// rows, in one transaction.
func (s *Store) ReplaceAvailabilityRange(ctx context.Context, key db.AvailabilityRangeKey, newRows []db.Availability) error {
	tx, err := s.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM availability
		WHERE user_id = ? AND department_id = ? AND program_id = ? AND date >= ? AND date <= ?
	`, key.UserID, key.Scope.DepartmentID, key.Scope.ProgramID, key.From, key.To)
	if err != nil {
		return fmt.Errorf("failed to delete availability range: %w", err)
	}

	for _, row := range newRows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO availability (id, user_id, date, role, department_id, program_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`, row.ID, row.UserID, row.Date, row.Role, row.Scope.DepartmentID, row.Scope.ProgramID)
		if err != nil {
			return fmt.Errorf("failed to insert availability: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteAvailabilityRange deletes every availability record for a scope
// within [from, to], across all users.
func (s *Store) DeleteAvailabilityRange(ctx context.Context, scope db.ScopeKey, from, to string) (int, error) {
	result, err := s.sqldb.ExecContext(ctx, `
		DELETE FROM availability
		WHERE department_id = ? AND program_id = ? AND date >= ? AND date <= ?
	`, scope.DepartmentID, scope.ProgramID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete availability: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted availability: %w", err)
	}
	return int(affected), nil
}

// GetUnavailability retrieves blackout records within [from, to].
func (s *Store) GetUnavailability(ctx context.Context, from, to string) ([]db.Unavailability, error) {
	rows, err := s.sqldb.QueryContext(ctx, `
		SELECT id, user_id, date
		FROM unavailability
		WHERE date >= ? AND date <= ?
		ORDER BY date, user_id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query unavailability: %w", err)
	}
	defer rows.Close()

	var records []db.Unavailability
	for rows.Next() {
		var record db.Unavailability
		if err := rows.Scan(&record.ID, &record.UserID, &record.Date); err != nil {
			return nil, fmt.Errorf("failed to scan unavailability: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetAssignments retrieves assignment records matching the filter.
func (s *Store) GetAssignments(ctx context.Context, filter db.AssignmentFilter) ([]db.Assignment, error) {
	var conditions []string
	var args []any

	if filter.From != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.To)
	}
	if filter.Scope != nil {
		conditions = append(conditions, "department_id = ?", "program_id = ?")
		args = append(args, filter.Scope.DepartmentID, filter.Scope.ProgramID)
	}
	if filter.Role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT id, user_id, date, role, department_id, program_id, status FROM assignment`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, user_id"

	rows, err := s.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var assignment db.Assignment
		if err := rows.Scan(&assignment.ID, &assignment.UserID, &assignment.Date, &assignment.Role, &assignment.Scope.DepartmentID, &assignment.Scope.ProgramID, &assignment.Status); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

// ReplacePendingAssignments deletes pending rows in the key's range then
// inserts the new rows, in one transaction. Confirmed rows are untouched.
func (s *Store) ReplacePendingAssignments(ctx context.Context, key db.AssignmentRangeKey, newRows []db.Assignment) error {
	tx, err := s.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM assignment
		WHERE department_id = ? AND program_id = ? AND date >= ? AND date <= ? AND status = ?
	`, key.Scope.DepartmentID, key.Scope.ProgramID, key.From, key.To, db.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to delete pending assignments: %w", err)
	}

	for _, row := range newRows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assignment (id, user_id, date, role, department_id, program_id, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, row.ID, row.UserID, row.Date, row.Role, row.Scope.DepartmentID, row.Scope.ProgramID, row.Status)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ConfirmPendingAssignments selects pending rows in the key's range, flips
// them to confirmed, and returns the affected rows.
func (s *Store) ConfirmPendingAssignments(ctx context.Context, key db.AssignmentRangeKey) ([]db.Assignment, error) {
	tx, err := s.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, user_id, date, role, department_id, program_id
		FROM assignment
		WHERE department_id = ? AND program_id = ? AND date >= ? AND date <= ? AND status = ?
		ORDER BY date, user_id
	`, key.Scope.DepartmentID, key.Scope.ProgramID, key.From, key.To, db.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending assignments: %w", err)
	}

	var pending []db.Assignment
	for rows.Next() {
		var assignment db.Assignment
		if err := rows.Scan(&assignment.ID, &assignment.UserID, &assignment.Date, &assignment.Role, &assignment.Scope.DepartmentID, &assignment.Scope.ProgramID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignment.Status = db.StatusConfirmed
		pending = append(pending, assignment)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}
	rows.Close()

	if len(pending) == 0 {
		return nil, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assignment
		SET status = ?
		WHERE department_id = ? AND program_id = ? AND date >= ? AND date <= ? AND status = ?
	`, db.StatusConfirmed, key.Scope.DepartmentID, key.Scope.ProgramID, key.From, key.To, db.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm assignments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return pending, nil
}
