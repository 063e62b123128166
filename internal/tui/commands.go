package tui

import (
	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// load fetches the dashboard and transaction list for the current range.
func (m Model) load() tea.Cmd {
	ctx, rng := m.ctx, m.rng
	reports, lister := m.reports, m.transactions
	return func() tea.Msg {
		dash, err := reports.Dashboard(ctx, rng)
		if err != nil {
			return dashboardLoadedMsg{rng: rng, err: err}
		}

		var txns []model.Transaction
		if lister != nil {
			if txns, err = lister.ListInRange(ctx, rng.Start, rng.End, ""); err != nil {
				return dashboardLoadedMsg{rng: rng, err: err}
			}
		}
		return dashboardLoadedMsg{rng: rng, dashboard: dash, transactions: txns}
	}
}

func transactionRows(currency string, txns []model.Transaction) []table.Row {
	rows := make([]table.Row, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, table.Row{
			model.FormatDate(t.Date),
			string(t.Type),
			cli.CategoryLabel(t.CategoryName),
			cli.FormatMoney(currency, t.Amount),
			t.Description,
		})
	}
	return rows
}
