// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
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

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses a YYYY-MM string into the first day of that month. An
// empty string resolves to the month containing fallback.
func ParseMonth(date string, fallback time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(date)
	if trimmed == "" {
		return MonthStart(fallback), nil
	}
	t, err := time.Parse(DateTimeLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", date, err)
	}
	return MonthStart(t), nil
}

// MonthOffset returns the first of the month that lies months after start.
func MonthOffset(start time.Time, months int) time.Time {
	return MonthStart(start).AddDate(0, months, 0)
}

// FormatMonth renders t in the YYYY-MM layout.
func FormatMonth(t time.Time) string {
	return t.Format(DateTimeLayout)
}
