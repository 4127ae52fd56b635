// Package time holds calendar day helpers. Sitting days are dates with no time of day,
// carried as UTC midnight
package time

import "time"

// Day is t's calendar date, read in t's own location, as UTC midnight
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayArg formats t with layout for a query argument; the zero time is NULL
func DayArg(t time.Time, layout string) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(layout)
}
