// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/installment-plan/pkg/constants"
)

const (
	// DateLayout is the format expected on the command line and in API
	// payloads and is also the output date format.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields the calendar
// day of fallback.
func ParseDate(value string, fallback time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StartOfDay(fallback), nil
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected format %s: %w", value, DateLayout, err)
	}
	return t, nil
}

// StartOfDay drops the clock portion of t while keeping its location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// AddMonths advances t by the given number of calendar months. Unlike
// time.AddDate it never rolls over into the following month: when the target
// month is shorter than t's day of month the result is clamped to the target
// month's last day (Jan 31 + 1 month = Feb 28, or Feb 29 in leap years).
// The clock portion of t is preserved.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	// Normalise to the first of the target month to find its length.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date, using AddMonths semantics.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return AddMonths(t, months).Format(layout), nil
}
