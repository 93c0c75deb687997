package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthBounds(t *testing.T) {
	from, to, err := monthBounds("2026-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", from)
	assert.Equal(t, "2026-02-28", to)

	// Leap year.
	from, to, err = monthBounds("2028-02")
	require.NoError(t, err)
	assert.Equal(t, "2028-02-01", from)
	assert.Equal(t, "2028-02-29", to)

	_, _, err = monthBounds("2026-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPreviousMonth(t *testing.T) {
	prior, err := previousMonth("2026-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-12", prior)

	prior, err = previousMonth("2026-07")
	require.NoError(t, err)
	assert.Equal(t, "2026-06", prior)
}

func TestWeekIndex(t *testing.T) {
	assert.Equal(t, 0, weekIndex(1))
	assert.Equal(t, 0, weekIndex(7))
	assert.Equal(t, 1, weekIndex(8))
	assert.Equal(t, 3, weekIndex(28))
	assert.Equal(t, 4, weekIndex(29))
	assert.Equal(t, 4, weekIndex(31))
}

func TestWeeklyDates(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	// Sundays in March 2026.
	dates, err := weeklyDates(0, from, to)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-01", "2026-03-08", "2026-03-15", "2026-03-22", "2026-03-29"}, dates)

	// Saturdays.
	dates, err = weeklyDates(6, from, to)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-07", "2026-03-14", "2026-03-21", "2026-03-28"}, dates)

	_, err = weeklyDates(7, from, to)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCallerPredicates(t *testing.T) {
	staff := Caller{UserID: "u1", Role: RoleStaff}
	manager := Caller{UserID: "m1", Role: RoleManager}
	operations := Caller{UserID: "o1", Role: RoleOperations}
	admin := Caller{UserID: "a1", Role: RoleAdmin}

	assert.False(t, staff.CanManageSchedule())
	assert.True(t, manager.CanManageSchedule())
	assert.True(t, operations.CanManageSchedule())
	assert.True(t, admin.CanManageSchedule())

	assert.True(t, staff.CanSubmitFor("u1"))
	assert.False(t, staff.CanSubmitFor("u2"))
	assert.True(t, manager.CanSubmitFor("u2"))

	assert.False(t, staff.CanClearMonth())
	assert.False(t, manager.CanClearMonth())
	assert.True(t, operations.CanClearMonth())
	assert.True(t, admin.CanClearMonth())
}
