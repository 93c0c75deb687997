package services

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

var validate = validator.New()

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidInput, value)
	}
	return t, nil
}

// parseMonth parses a YYYY-MM month identifier.
func parseMonth(value string) (time.Time, error) {
	t, err := time.Parse(monthLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad month %q", ErrInvalidInput, value)
	}
	return t, nil
}

// monthBounds returns the first and last date of a YYYY-MM month as
// YYYY-MM-DD strings.
func monthBounds(month string) (string, string, error) {
	first, err := parseMonth(month)
	if err != nil {
		return "", "", err
	}
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout), last.Format(dateLayout), nil
}

// previousMonth returns the YYYY-MM identifier of the month before the given
// one.
func previousMonth(month string) (string, error) {
	first, err := parseMonth(month)
	if err != nil {
		return "", err
	}
	return first.AddDate(0, -1, 0).Format(monthLayout), nil
}

// weekIndex is the zero-based week-of-month slot of a day of month:
// days 1-7 are week 0, 8-14 week 1, and so on. Used by the copy-previous
// projection to align "2nd Monday" style slots across months.
func weekIndex(dayOfMonth int) int {
	return (dayOfMonth - 1) / 7
}

// rruleWeekdays maps time.Weekday numbering (0 = Sunday) onto rrule weekday
// constants.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// weeklyDates expands a weekly recurrence on the given day of week across
// [from, to] inclusive and returns the matching dates as YYYY-MM-DD strings.
func weeklyDates(dayOfWeek int, from, to time.Time) ([]string, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, fmt.Errorf("%w: day_of_week %d out of range", ErrInvalidInput, dayOfWeek)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[dayOfWeek]},
		Dtstart:   from,
		Until:     to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	occurrences := rule.All()
	dates := make([]string, 0, len(occurrences))
	for _, occurrence := range occurrences {
		dates = append(dates, occurrence.Format(dateLayout))
	}
	return dates, nil
}

// validateInput runs struct tag validation and folds failures into
// ErrInvalidInput so callers can discriminate the kind.
func validateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
