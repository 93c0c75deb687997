package postgres

import (
	"context"
	"fmt"

	"github.com/hsnesn/staffrota/pkg/db"
)

// GetRequirements retrieves explicit requirement rows for a scope within
// [from, to]. Scope matching is exact: department-wide rows are only returned
// for a department-wide key.
func (d *DB) GetRequirements(ctx context.Context, scope db.ScopeKey, from, to string) ([]db.Requirement, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, date, role, department_id, program_id, count_needed
		FROM requirement
		WHERE department_id = $1 AND program_id = $2 AND date >= $3 AND date <= $4
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requirements: %w", err)
	}
	return requirements, nil
}

// GetRecurringRequirements retrieves all weekly templates for a scope.
func (d *DB) GetRecurringRequirements(ctx context.Context, scope db.ScopeKey) ([]db.RecurringRequirement, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, day_of_week, role, department_id, program_id, count_needed
		FROM recurring_requirement
		WHERE department_id = $1 AND program_id = $2
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring requirements: %w", err)
	}
	return templates, nil
}

// InsertRequirements inserts explicit requirement rows in a single
// transaction.
func (d *DB) InsertRequirements(ctx context.Context, reqs []db.Requirement) error {
	if len(reqs) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, req := range reqs {
		_, err := tx.Exec(ctx, `
			INSERT INTO requirement (id, date, role, department_id, program_id, count_needed)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, req.ID, req.Date, req.Role, req.Scope.DepartmentID, req.Scope.ProgramID, req.CountNeeded)
		if err != nil {
			return fmt.Errorf("failed to insert requirement: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteRequirementsRange deletes explicit requirement rows for a scope
// within [from, to] and returns the number removed.
func (d *DB) DeleteRequirementsRange(ctx context.Context, scope db.ScopeKey, from, to string) (int, error) {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM requirement
		WHERE department_id = $1 AND program_id = $2 AND date >= $3 AND date <= $4
	`, scope.DepartmentID, scope.ProgramID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete requirements: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
