package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/pkg/db"
)

func TestCopyPreviousMonth_AlignsWeekdaySlots(t *testing.T) {
	mock := newAvailabilityStore()
	// 2026-03-09 is the 2nd Monday of March 2026.
	mock.records = []db.Availability{
		{ID: "a1", UserID: "u1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope()},
	}

	logger := zap.NewNop()
	ctx := context.Background()

	count, err := CopyPreviousMonth(ctx, mock, logger, Caller{UserID: "u1", Role: RoleStaff}, CopyPreviousMonthInput{
		UserID: "u1",
		Month:  "2026-04",
		Scope:  emergencyScope(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The 2nd Monday of April 2026 is the 13th.
	var aprilDates []string
	for _, record := range mock.records {
		if record.Date >= "2026-04-01" {
			aprilDates = append(aprilDates, record.Date)
		}
	}
	assert.Equal(t, []string{"2026-04-13"}, aprilDates)
}

func TestCopyPreviousMonth_DropsMissingFifthWeekSlots(t *testing.T) {
	mock := newAvailabilityStore()
	// March 2026 has five Mondays; 2026-03-30 is the 5th. April 2026 has no
	// 5th Monday, so only the 2nd-Monday record survives the projection.
	mock.records = []db.Availability{
		{ID: "a1", UserID: "u1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope()},
		{ID: "a2", UserID: "u1", Date: "2026-03-30", Role: "nurse", Scope: emergencyScope()},
	}

	count, err := CopyPreviousMonth(context.Background(), mock, zap.NewNop(), Caller{UserID: "u1", Role: RoleStaff}, CopyPreviousMonthInput{
		UserID: "u1",
		Month:  "2026-04",
		Scope:  emergencyScope(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCopyPreviousMonth_ReplacesWholeTargetMonth(t *testing.T) {
	mock := newAvailabilityStore()
	mock.records = []db.Availability{
		{ID: "a1", UserID: "u1", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope()},
		// Stale manual entry in the target month; the projection must wipe it.
		{ID: "a2", UserID: "u1", Date: "2026-04-02", Role: "nurse", Scope: emergencyScope()},
	}

	_, err := CopyPreviousMonth(context.Background(), mock, zap.NewNop(), Caller{UserID: "u1", Role: RoleStaff}, CopyPreviousMonthInput{
		UserID: "u1",
		Month:  "2026-04",
		Scope:  emergencyScope(),
	})
	require.NoError(t, err)

	require.Len(t, mock.replaceKeys, 1)
	assert.Equal(t, "2026-04-01", mock.replaceKeys[0].From)
	assert.Equal(t, "2026-04-30", mock.replaceKeys[0].To)

	var aprilDates []string
	for _, record := range mock.records {
		if record.Date >= "2026-04-01" {
			aprilDates = append(aprilDates, record.Date)
		}
	}
	assert.Equal(t, []string{"2026-04-13"}, aprilDates)
}

func TestCopyPreviousMonth_NoPriorData(t *testing.T) {
	mock := newAvailabilityStore()

	_, err := CopyPreviousMonth(context.Background(), mock, zap.NewNop(), Caller{UserID: "u1", Role: RoleStaff}, CopyPreviousMonthInput{
		UserID: "u1",
		Month:  "2026-04",
		Scope:  emergencyScope(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPriorData)
	assert.True(t, IsExpectedOutcome(err))
	assert.Empty(t, mock.replaceKeys)
}

func TestCopyPreviousMonth_StaffCannotCopyForOthers(t *testing.T) {
	mock := newAvailabilityStore()
	mock.records = []db.Availability{
		{ID: "a1", UserID: "u2", Date: "2026-03-09", Role: "nurse", Scope: emergencyScope()},
	}

	_, err := CopyPreviousMonth(context.Background(), mock, zap.NewNop(), Caller{UserID: "u1", Role: RoleStaff}, CopyPreviousMonthInput{
		UserID: "u2",
		Month:  "2026-04",
		Scope:  emergencyScope(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}
