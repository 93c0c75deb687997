package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hsnesn/staffrota/pkg/db"
)

// GetAssignments retrieves assignment records matching the filter, ordered
// by date then user.
func (d *DB) GetAssignments(ctx context.Context, filter db.AssignmentFilter) ([]db.Assignment, error) {
	var conditions []string
	var args []any

	arg := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.From != "" {
		conditions = append(conditions, "date >= "+arg(filter.From))
	}
	if filter.To != "" {
		conditions = append(conditions, "date <= "+arg(filter.To))
	}
	if filter.Scope != nil {
		conditions = append(conditions, "department_id = "+arg(filter.Scope.DepartmentID))
		conditions = append(conditions, "program_id = "+arg(filter.Scope.ProgramID))
	}
	if filter.Role != "" {
		conditions = append(conditions, "role = "+arg(filter.Role))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(filter.Status))
	}

	query := `SELECT id, user_id, date, role, department_id, program_id, status FROM assignment`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, user_id"

	rows, err := d.pool.Query(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}
	return assignments, nil
}

// ReplacePendingAssignments deletes every pending row for the key's scope
// and range, then inserts the new rows, in one transaction. Confirmed rows
// are never touched.
func (d *DB) ReplacePendingAssignments(ctx context.Context, key db.AssignmentRangeKey, newRows []db.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM assignment
		WHERE department_id = $1 AND program_id = $2 AND date >= $3 AND date <= $4 AND status = $5
	`, key.Scope.DepartmentID, key.Scope.ProgramID, key.From, key.To, db.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to delete pending assignments: %w", err)
	}

	for _, row := range newRows {
		_, err := tx.Exec(ctx, `
			INSERT INTO assignment (id, user_id, date, role, department_id, program_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, row.ID, row.UserID, row.Date, row.Role, row.Scope.DepartmentID, row.Scope.ProgramID, row.Status)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ConfirmPendingAssignments selects every pending row in the key's range,
// flips them to confirmed, and returns the affected rows. The select runs
// before the update inside the same transaction so callers get the exact
// pre-mutation set.
func (d *DB) ConfirmPendingAssignments(ctx context.Context, key db.AssignmentRangeKey) ([]db.Assignment, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, user_id, date, role, department_id, program_id
		FROM assignment
		WHERE department_id = $1 AND program_id = $2 AND date >= $3 AND date <= $4 AND status = $5
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

	_, err = tx.Exec(ctx, `
		UPDATE assignment
		SET status = $6
		WHERE department_id = $1 AND program_id = $2 AND date >= $3 AND date <= $4 AND status = $5
	`, key.Scope.DepartmentID, key.Scope.ProgramID, key.From, key.To, db.StatusPending, db.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm assignments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return pending, nil
}
