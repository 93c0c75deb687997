package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hsnesn/staffrota/pkg/db"
)

// GetAvailability retrieves availability records matching the filter,
// ordered by date then user.
func (d *DB) GetAvailability(ctx context.Context, filter db.AvailabilityFilter) ([]db.Availability, error) {
	var conditions []string
	var args []any

	arg := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = "+arg(filter.UserID))
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

	query := `SELECT id, user_id, date, role, department_id, program_id FROM availability`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, user_id"

	rows, err := d.pool.Query(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability: %w", err)
	}
	return records, nil
}

// ReplaceAvailabilityRange deletes every record for the key's user and scope
// with a date inside the key's range, then inserts the new rows, in one
// transaction. Last write wins; there is no merge.
func (d *DB) ReplaceAvailabilityRange(ctx context.Context, key db.AvailabilityRangeKey, newRows []db.Availability) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM availability
		WHERE user_id = $1 AND department_id = $2 AND program_id = $3 AND date >= $4 AND date <= $5
	`, key.UserID, key.Scope.DepartmentID, key.Scope.ProgramID, key.From, key.To)
	if err != nil {
		return fmt.Errorf("failed to delete availability range: %w", err)
	}

	for _, row := range newRows {
		_, err := tx.Exec(ctx, `
			INSERT INTO availability (id, user_id, date, role, department_id, program_id)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, row.ID, row.UserID, row.Date, row.Role, row.Scope.DepartmentID, row.Scope.ProgramID)
		if err != nil {
			return fmt.Errorf("failed to insert availability: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteAvailabilityRange deletes every availability record for a scope
// within [from, to], across all users, and returns the number removed.
func (d *DB) DeleteAvailabilityRange(ctx context.Context, scope db.ScopeKey, from, to string) (int, error) {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM availability
		WHERE department_id = $1 AND program_id = $2 AND date >= $3 AND date <= $4
	`, scope.DepartmentID, scope.ProgramID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete availability: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// GetUnavailability retrieves blackout records within [from, to].
func (d *DB) GetUnavailability(ctx context.Context, from, to string) ([]db.Unavailability, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, user_id, date
		FROM unavailability
		WHERE date >= $1 AND date <= $2
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unavailability: %w", err)
	}
	return records, nil
}
