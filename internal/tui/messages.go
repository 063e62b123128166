package tui

import (
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
)

// dashboardLoadedMsg carries one refresh. rng identifies the request so a
// late reply for a range the user has already left is dropped.
type dashboardLoadedMsg struct {
	err          error
	dashboard    *report.Dashboard
	transactions []model.Transaction
	rng          model.DateRange
}
