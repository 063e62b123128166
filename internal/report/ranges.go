package report

import (
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
)

// Selector names a reporting window.
type Selector string

// Range selectors.
const (
	ThisMonth   Selector = "This Month"
	LastMonth   Selector = "Last Month"
	Last3Months Selector = "Last 3 Months"
	ThisYear    Selector = "This Year"
	CustomRange Selector = "Custom"
)

const customSuffix = "..."

// Selectors lists the named windows in menu order.
var Selectors = []Selector{ThisMonth, LastMonth, Last3Months, ThisYear, CustomRange}

// ParseSelector matches s against the known selectors, ignoring case and
// treating '-' and '_' as spaces, so "last-3-months" works from the command
// line. "Custom..." is accepted as Custom. Unknown input yields ThisMonth
// and false.
func ParseSelector(s string) (Selector, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.TrimSuffix(norm, customSuffix)
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	for _, sel := range Selectors {
		if strings.ToLower(string(sel)) == norm {
			return sel, true
		}
	}
	return ThisMonth, false
}

// Next returns the selector after s in menu order, skipping Custom.
func (s Selector) Next() Selector {
	named := Selectors[:len(Selectors)-1]
	for i, sel := range named {
		if sel == s {
			return named[(i+1)%len(named)]
		}
	}
	return ThisMonth
}

// ResolveRange turns a selector into concrete dates relative to today.
//
// Custom uses the caller's bounds; if either fails to parse the range falls
// back to today only. A custom start after its end is returned as given and
// simply matches nothing. Unknown selectors behave like This Month.
func ResolveRange(selector string, today time.Time, customStart, customEnd string) model.DateRange {
	today = model.Day(today)
	sel, _ := ParseSelector(selector)

	switch sel {
	case LastMonth:
		start := model.MonthStart(today).AddDate(0, -1, 0)
		return model.DateRange{Start: start, End: model.MonthEnd(start)}
	case Last3Months:
		return model.DateRange{Start: model.MonthStart(today).AddDate(0, -2, 0), End: today}
	case ThisYear:
		return model.DateRange{Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), End: today}
	case CustomRange:
		start, startErr := model.ParseDate(customStart)
		end, endErr := model.ParseDate(customEnd)
		if startErr != nil || endErr != nil {
			return model.DateRange{Start: today, End: today}
		}
		return model.DateRange{Start: start, End: end}
	default:
		return model.DateRange{Start: model.MonthStart(today), End: today}
	}
}
