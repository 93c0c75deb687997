package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
	"github.com/hsnesn/staffrota/pkg/notify"
)

// ApproveAssignmentsInput selects the scope and month to approve.
type ApproveAssignmentsInput struct {
	Scope db.ScopeKey
	Month string `validate:"required,datetime=2006-01"`
}

// ApproveAssignmentsResult reports the confirmed rows and notifications sent.
type ApproveAssignmentsResult struct {
	ApprovedCount int
	Notified      int
}

// ApproveAssignmentsStore defines the database operations needed to approve
// a roster.
type ApproveAssignmentsStore interface {
	ScopeResolver
	ConfirmPendingAssignments(ctx context.Context, key db.AssignmentRangeKey) ([]db.Assignment, error)
}

// ApproveAssignments flips every pending assignment in the scope and month
// to confirmed in one batch, then notifies each affected user once with
// their full set of newly confirmed dates, sorted ascending. Notification is
// best-effort and never fails or reverses the confirmation. Returns
// ErrNothingToApprove when the range holds no pending rows.
func ApproveAssignments(ctx context.Context, store ApproveAssignmentsStore, dispatcher *notify.Dispatcher, logger *zap.Logger, caller Caller, input ApproveAssignmentsInput) (*ApproveAssignmentsResult, error) {
	if !caller.CanManageSchedule() {
		return nil, fmt.Errorf("%w: %s may not approve assignments", ErrForbidden, caller.Role)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := validateScope(ctx, store, input.Scope); err != nil {
		return nil, err
	}

	from, to, err := monthBounds(input.Month)
	if err != nil {
		return nil, err
	}

	confirmed, err := store.ConfirmPendingAssignments(ctx, db.AssignmentRangeKey{
		Scope: input.Scope,
		From:  from,
		To:    to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm assignments: %w", err)
	}
	if len(confirmed) == 0 {
		return nil, fmt.Errorf("%w: no pending assignments in %s for %s",
			ErrNothingToApprove, input.Month, input.Scope.String())
	}

	datesByUser := make(map[string][]string)
	for _, assignment := range confirmed {
		datesByUser[assignment.UserID] = append(datesByUser[assignment.UserID], assignment.Date)
	}

	userIDs := make([]string, 0, len(datesByUser))
	for userID := range datesByUser {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	events := make([]notify.Event, 0, len(userIDs))
	for _, userID := range userIDs {
		dates := datesByUser[userID]
		sort.Strings(dates)
		events = append(events, notify.Event{
			Kind:   notify.KindAssignmentsConfirmed,
			UserID: userID,
			Scope:  input.Scope,
			Dates:  dates,
		})
	}
	notified := dispatcher.Dispatch(ctx, events)

	logger.Info("Assignments approved",
		zap.String("scope", input.Scope.String()),
		zap.String("month", input.Month),
		zap.Int("approved", len(confirmed)),
		zap.Int("notified", notified))

	return &ApproveAssignmentsResult{
		ApprovedCount: len(confirmed),
		Notified:      notified,
	}, nil
}
