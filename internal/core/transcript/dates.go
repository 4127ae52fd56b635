package transcript

import (
	"strconv"
	"strings"
	"time"

	"hansard/internal/core/normalize"
)

var months = map[string]time.Month{}

func init() {
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		months[full] = m
		months[full[:3]] = m
	}
}

// DayMonth resolves a leave bound like "28 Dec" or "2 January" into year.
// Dates that do not exist in that year are rejected rather than normalized
func DayMonth(text string, year int) (time.Time, bool) {
	t := normalize.WS(text)
	if t == "" {
		return time.Time{}, false
	}
	parts := strings.Split(t, " ")
	if len(parts) != 2 || len(parts[0]) > 2 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 {
		return time.Time{}, false
	}
	month, ok := months[strings.ToLower(parts[1])]
	if !ok {
		return time.Time{}, false
	}
	return civil(year, month, day)
}

// civil builds a UTC date, refusing values time.Date would roll over
func civil(year int, month time.Month, day int) (time.Time, bool) {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

// LeaveInterval resolves both bounds into defaultYear. An end before the start is a
// leave spanning New Year and rolls into the following year
func LeaveInterval(from, to string, defaultYear int) (start, end time.Time, ok bool) {
	start, ok = DayMonth(from, defaultYear)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok = DayMonth(to, defaultYear)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		end, ok = civil(defaultYear+1, end.Month(), end.Day())
		if !ok {
			return time.Time{}, time.Time{}, false
		}
	}
	return start, end, true
}

// Overlaps reports whether day falls inside the leave interval, bounds inclusive.
// An unparseable bound never overlaps
func Overlaps(from, to string, day time.Time, defaultYear int) bool {
	start, end, ok := LeaveInterval(from, to, defaultYear)
	if !ok {
		return false
	}
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(start) && !d.After(end)
}

// ParseRunDate accepts YYYY-MM-DD or DD-MM-YYYY
func ParseRunDate(s string) (time.Time, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DayLayout, sittingDateInput} {
		if d, err := time.Parse(layout, t); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
