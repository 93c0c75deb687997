package services

import (
	"context"
	"fmt"

	"github.com/hsnesn/staffrota/pkg/db"
)

// ScopeResolver is the slice of the store every operation needs to validate
// a scope key.
type ScopeResolver interface {
	GetDepartment(ctx context.Context, id string) (*db.Department, error)
	GetProgram(ctx context.Context, id string) (*db.Program, error)
}

// validateScope checks that the department exists and, when a program is
// given, that it exists and belongs to that department. Department-wide keys
// (empty ProgramID) are valid.
func validateScope(ctx context.Context, store ScopeResolver, scope db.ScopeKey) error {
	if scope.DepartmentID == "" {
		return fmt.Errorf("%w: missing department id", ErrInvalidInput)
	}

	if _, err := store.GetDepartment(ctx, scope.DepartmentID); err != nil {
		return fmt.Errorf("department %s: %w", scope.DepartmentID, err)
	}

	if scope.DepartmentWide() {
		return nil
	}

	program, err := store.GetProgram(ctx, scope.ProgramID)
	if err != nil {
		return fmt.Errorf("program %s: %w", scope.ProgramID, err)
	}
	if program.DepartmentID != scope.DepartmentID {
		return fmt.Errorf("%w: program %s belongs to department %s, not %s",
			ErrInvalidInput, scope.ProgramID, program.DepartmentID, scope.DepartmentID)
	}
	return nil
}
