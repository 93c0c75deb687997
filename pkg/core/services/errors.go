package services

import (
	"errors"

	"github.com/hsnesn/staffrota/pkg/db"
)

// Error kinds surfaced to callers. Callers discriminate with errors.Is;
// anything not wrapping one of these sentinels is a store failure and should
// be treated as retryable infrastructure trouble.
var (
	// ErrInvalidInput marks malformed dates, months, roles or scopes.
	// Raised before any store access.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a referenced department, program or user that does
	// not exist. Aliases the store sentinel so both layers agree.
	ErrNotFound = db.ErrNotFound

	// ErrForbidden marks a caller lacking the role an operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrNoPriorData is the expected outcome of copying a previous month
	// that holds no records. Not a fault.
	ErrNoPriorData = errors.New("no prior data")

	// ErrNothingToApprove is the expected outcome of approving a range with
	// no pending assignments. Not a fault.
	ErrNothingToApprove = errors.New("nothing to approve")
)

// IsExpectedOutcome reports whether an approve/copy error is a normal result
// rather than a fault worth retrying.
func IsExpectedOutcome(err error) bool {
	return errors.Is(err, ErrNothingToApprove) || errors.Is(err, ErrNoPriorData)
}
