package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hsnesn/staffrota/pkg/db"
)

// GetDepartment retrieves one department by id.
func (d *DB) GetDepartment(ctx context.Context, id string) (*db.Department, error) {
	var department db.Department
	err := d.pool.QueryRow(ctx, `SELECT id, name FROM department WHERE id = $1`, id).
		Scan(&department.ID, &department.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query department: %w", err)
	}
	return &department, nil
}

// GetProgram retrieves one program by id.
func (d *DB) GetProgram(ctx context.Context, id string) (*db.Program, error) {
	var program db.Program
	err := d.pool.QueryRow(ctx, `SELECT id, department_id, name FROM program WHERE id = $1`, id).
		Scan(&program.ID, &program.DepartmentID, &program.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query program: %w", err)
	}
	return &program, nil
}

// ListDepartments retrieves all departments ordered by name.
func (d *DB) ListDepartments(ctx context.Context) ([]db.Department, error) {
	rows, err := d.pool.Query(ctx, `SELECT id, name FROM department ORDER BY name, id`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}
	return departments, nil
}

// ListPrograms retrieves all programs ordered by name.
func (d *DB) ListPrograms(ctx context.Context) ([]db.Program, error) {
	rows, err := d.pool.Query(ctx, `SELECT id, department_id, name FROM program ORDER BY name, id`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating programs: %w", err)
	}
	return programs, nil
}
