// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardSource computes dashboards; *report.Engine satisfies it.
type DashboardSource interface {
	Today() time.Time
	Dashboard(ctx context.Context, rng model.DateRange) (*report.Dashboard, error)
}

// TransactionSource lists a range's transactions; *ledger.Ledger satisfies it.
type TransactionSource interface {
	ListInRange(ctx context.Context, start, end time.Time, categoryType model.CategoryType) ([]model.Transaction, error)
}

// Config holds the dashboard's dependencies and starting range.
type Config struct {
	Reports      DashboardSource
	Transactions TransactionSource
	Selector     report.Selector
	CustomStart  string
	CustomEnd    string
	Width        int
	Height       int
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx          context.Context
	lastError    error
	reports      DashboardSource
	transactions TransactionSource
	dashboard    *report.Dashboard
	keymap       KeyMap
	help         help.Model
	table        table.Model
	customStart  string
	customEnd    string
	selector     report.Selector
	rng          model.DateRange
	width        int
	height       int
	loading      bool
	quitting     bool
}

var tableColumns = []table.Column{
	{Title: "Date", Width: 10},
	{Title: "Type", Width: 7},
	{Title: "Category", Width: 18},
	{Title: "Amount", Width: 14},
	{Title: "Description", Width: 30},
}

// New creates a dashboard model. Data is loaded by Init.
func New(ctx context.Context, cfg Config) Model {
	if cfg.Selector == "" {
		cfg.Selector = report.ThisMonth
	}
	if cfg.Width == 0 {
		cfg.Width = 100
	}
	if cfg.Height == 0 {
		cfg.Height = 30
	}

	t := table.New(
		table.WithColumns(tableColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	t.SetStyles(s)

	m := Model{
		ctx:          ctx,
		reports:      cfg.Reports,
		transactions: cfg.Transactions,
		keymap:       DefaultKeyMap(),
		help:         help.New(),
		table:        t,
		selector:     cfg.Selector,
		customStart:  cfg.CustomStart,
		customEnd:    cfg.CustomEnd,
		width:        cfg.Width,
		height:       cfg.Height,
	}
	m.rng = m.resolve()
	m.resize()
	return m
}

func (m Model) resolve() model.DateRange {
	return report.ResolveRange(string(m.selector), m.reports.Today(), m.customStart, m.customEnd)
}

// The summary boxes, range bar and help take reservedRows lines. The table
// gets the rest, its two-line header included, and always shows at least
// three transactions.
const (
	reservedRows = 18
	minTableRows = 5
)

func (m *Model) resize() {
	m.table.SetHeight(max(m.height-reservedRows, minTableRows))
	m.help.Width = m.width
}

// Selector returns the active range selector.
func (m Model) Selector() report.Selector {
	return m.selector
}

// Range returns the active date range.
func (m Model) Range() model.DateRange {
	return m.rng
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.NextRange):
			m.selector = m.selector.Next()
			m.rng = m.resolve()
			m.loading = true
			return m, m.load()
		case key.Matches(msg, m.keymap.Refresh):
			m.rng = m.resolve()
			m.loading = true
			return m, m.load()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case dashboardLoadedMsg:
		if !sameRange(msg.rng, m.rng) {
			return m, nil
		}
		m.loading = false
		m.lastError = msg.err
		if msg.err == nil {
			m.dashboard = msg.dashboard
			m.table.SetRows(transactionRows(msg.dashboard.Currency, msg.transactions))
			m.table.GotoTop()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func sameRange(a, b model.DateRange) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End)
}
