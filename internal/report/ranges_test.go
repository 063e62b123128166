package report_test

import (
	"testing"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/stretchr/testify/assert"
)

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name        string
		selector    string
		today       string
		customStart string
		customEnd   string
		wantStart   string
		wantEnd     string
	}{
		{name: "this month", selector: "This Month", today: "2024-03-10", wantStart: "2024-03-01", wantEnd: "2024-03-10"},
		{name: "last month", selector: "Last Month", today: "2024-03-10", wantStart: "2024-02-01", wantEnd: "2024-02-29"},
		{name: "last month across year", selector: "Last Month", today: "2024-01-31", wantStart: "2023-12-01", wantEnd: "2023-12-31"},
		{name: "last 3 months", selector: "Last 3 Months", today: "2024-02-15", wantStart: "2023-12-01", wantEnd: "2024-02-15"},
		{name: "this year", selector: "This Year", today: "2024-08-20", wantStart: "2024-01-01", wantEnd: "2024-08-20"},
		{name: "custom", selector: "Custom", today: "2024-03-10", customStart: "2024-01-05", customEnd: "2024-02-06", wantStart: "2024-01-05", wantEnd: "2024-02-06"},
		{name: "custom with ellipsis", selector: "Custom...", today: "2024-03-10", customStart: "2024-01-05", customEnd: "2024-02-06", wantStart: "2024-01-05", wantEnd: "2024-02-06"},
		{name: "custom bad start", selector: "Custom", today: "2024-03-10", customStart: "not-a-date", customEnd: "2024-01-01", wantStart: "2024-03-10", wantEnd: "2024-03-10"},
		{name: "custom bad end", selector: "Custom", today: "2024-03-10", customStart: "2024-01-01", customEnd: "", wantStart: "2024-03-10", wantEnd: "2024-03-10"},
		{name: "custom reversed kept", selector: "Custom", today: "2024-03-10", customStart: "2024-02-01", customEnd: "2024-01-01", wantStart: "2024-02-01", wantEnd: "2024-01-01"},
		{name: "unknown selector", selector: "Fortnight", today: "2024-03-10", wantStart: "2024-03-01", wantEnd: "2024-03-10"},
		{name: "cli spelling", selector: "last-3-months", today: "2024-03-10", wantStart: "2024-01-01", wantEnd: "2024-03-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today, err := model.ParseDate(tt.today)
			assert.NoError(t, err)

			got := report.ResolveRange(tt.selector, today, tt.customStart, tt.customEnd)
			assert.Equal(t, tt.wantStart, model.FormatDate(got.Start))
			assert.Equal(t, tt.wantEnd, model.FormatDate(got.End))
		})
	}
}

func TestSelectorNextCycles(t *testing.T) {
	sel := report.ThisMonth
	var seen []report.Selector
	for i := 0; i < 5; i++ {
		seen = append(seen, sel)
		sel = sel.Next()
	}
	assert.Equal(t, []report.Selector{
		report.ThisMonth, report.LastMonth, report.Last3Months, report.ThisYear, report.ThisMonth,
	}, seen)
	assert.Equal(t, report.ThisMonth, report.CustomRange.Next())
}

func TestParseSelector(t *testing.T) {
	sel, ok := report.ParseSelector("this_year")
	assert.True(t, ok)
	assert.Equal(t, report.ThisYear, sel)

	sel, ok = report.ParseSelector("someday")
	assert.False(t, ok)
	assert.Equal(t, report.ThisMonth, sel)
}
