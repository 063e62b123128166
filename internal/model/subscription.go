package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a subscription recurs.
type Frequency string

// Supported frequencies.
const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
	FrequencyYearly  Frequency = "Yearly"
)

// ParseFrequency parses a frequency name case-insensitively.
func ParseFrequency(s string) (Frequency, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return FrequencyDaily, true
	case "weekly":
		return FrequencyWeekly, true
	case "monthly":
		return FrequencyMonthly, true
	case "yearly":
		return FrequencyYearly, true
	}
	return Frequency(s), false
}

// Subscription is a recurring planned transaction.
type Subscription struct {
	NextDue      time.Time
	Amount       decimal.Decimal
	Name         string
	CategoryName string
	Type         CategoryType
	Frequency    Frequency
	ID           int64
	CategoryID   int64
	// AnchorDay is the day of month monthly and yearly schedules return to
	// after a clamped month. Zero means the day of NextDue.
	AnchorDay int
}

// Anchor returns the day of month the schedule is pinned to.
func (s Subscription) Anchor() int {
	if s.AnchorDay > 0 {
		return s.AnchorDay
	}
	return s.NextDue.Day()
}

// NextOccurrence returns the date one period after d, anchored on d's day.
func NextOccurrence(d time.Time, f Frequency) time.Time {
	return NextOccurrenceOn(d, f, d.Day())
}

// NextOccurrenceOn returns the date one period after d. Monthly and yearly
// steps land on anchorDay, clamped to the last day of a shorter month, so a
// schedule anchored on the 31st runs Jan 31, Feb 29, Mar 31, Apr 30.
func NextOccurrenceOn(d time.Time, f Frequency, anchorDay int) time.Time {
	switch f {
	case FrequencyDaily:
		return d.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return d.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsClamped(d, 1, anchorDay)
	case FrequencyYearly:
		return addMonthsClamped(d, 12, anchorDay)
	}
	return d
}

func addMonthsClamped(d time.Time, months, day int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	if day <= 0 {
		day = d.Day()
	}
	return time.Date(first.Year(), first.Month(), min(day, last), 0, 0, 0, 0, d.Location())
}
