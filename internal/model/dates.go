package model

import (
	"strings"
	"time"
)

// DateLayout is the persisted date format. Fixed-width and zero-padded, so
// lexicographic order on the stored text matches calendar order.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO yyyy-mm-dd calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders t as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// DateRange is an inclusive calendar date interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls within the range, both ends included.
func (r DateRange) Contains(d time.Time) bool {
	day := FormatDate(d)
	return day >= FormatDate(r.Start) && day <= FormatDate(r.End)
}

// String renders the range as "start to end".
func (r DateRange) String() string {
	return FormatDate(r.Start) + " to " + FormatDate(r.End)
}
