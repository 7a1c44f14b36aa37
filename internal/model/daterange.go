package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of date-range endpoints.
const DateLayout = "2006-01-02"

// DateRange holds the endpoints chosen by the caller. Only a range with exactly two endpoints
// filters anything; zero or one endpoint means "all dates".
type DateRange []time.Time

// NewDateRange builds a two-endpoint range.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{start, end}
}

// LastDays returns the range covering the n days up to and including the day of now.
func LastDays(now time.Time, n int) DateRange {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return DateRange{today.AddDate(0, 0, -n), EndOfDay(today)}
}

// ParseDateRange parses YYYY-MM-DD endpoints. Empty strings are skipped, so "" and ""
// yield an empty (unfiltered) range. The end date is extended to the last instant of that
// day so documents created during it are included.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	var r DateRange
	if start != "" {
		s, err := time.ParseInLocation(DateLayout, start, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		r = append(r, s)
	}
	if end != "" {
		e, err := time.ParseInLocation(DateLayout, end, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		r = append(r, EndOfDay(e))
	}
	if len(r) == 2 && r[1].Before(r[0]) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return r, nil
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Bounds returns the endpoints when the range has exactly two of them.
func (r DateRange) Bounds() (start, end time.Time, ok bool) {
	if len(r) != 2 {
		return time.Time{}, time.Time{}, false
	}
	return r[0], r[1], true
}

// Contains reports whether start <= ts <= end. A range without two endpoints contains everything.
func (r DateRange) Contains(ts time.Time) bool {
	start, end, ok := r.Bounds()
	if !ok {
		return true
	}
	return !ts.Before(start) && !ts.After(end)
}

// String renders the range as "YYYY-MM-DD to YYYY-MM-DD", or "All Dates".
func (r DateRange) String() string {
	start, end, ok := r.Bounds()
	if !ok {
		return "All Dates"
	}
	return start.Format(DateLayout) + " to " + end.Format(DateLayout)
}
