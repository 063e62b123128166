package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderRangeBar())
	b.WriteString("\n\n")

	switch {
	case m.lastError != nil:
		b.WriteString(cli.FormatError(m.lastError.Error()))
	case m.dashboard == nil:
		b.WriteString(cli.SubtleStyle.Render("Loading..."))
	default:
		b.WriteString(cli.RenderDashboard(m.dashboard))
		b.WriteString("\n")
		b.WriteString(cli.TitleStyle.Render(fmt.Sprintf("Transactions (%d)", len(m.table.Rows()))))
		b.WriteString("\n")
		b.WriteString(m.table.View())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

// renderRangeBar shows every named range with the active one highlighted.
func (m Model) renderRangeBar() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(cli.PrimaryColor).Underline(true)

	parts := make([]string, 0, len(report.Selectors))
	for _, sel := range report.Selectors {
		label := string(sel)
		if sel == report.CustomRange {
			if m.selector != report.CustomRange {
				continue
			}
			label += " " + m.rng.String()
		}
		if sel == m.selector {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, cli.SubtleStyle.Render(label))
		}
	}

	bar := strings.Join(parts, "  ")
	if m.loading {
		bar += "  " + cli.SubtleStyle.Render("refreshing…")
	}
	return bar
}
