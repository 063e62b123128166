// Package cli renders ledger data for the terminal and handles the small
// amount of interactive input the commands need.
package cli

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	PrimaryColor = lipgloss.Color("#5B8DEF")
	incomeColor  = lipgloss.Color("#4ECDC4")
	expenseColor = lipgloss.Color("#FF6B6B")
	warnColor    = lipgloss.Color("#FFE66D")
	infoColor    = lipgloss.Color("#95E1D3")
	mutedColor   = lipgloss.Color("#666666")
)

var (
	// TitleStyle heads a report section.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)
	// LabelStyle pads the label column of key/value output.
	LabelStyle = lipgloss.NewStyle().Foreground(mutedColor).Width(16)

	IncomeStyle  = lipgloss.NewStyle().Foreground(incomeColor)
	ExpenseStyle = lipgloss.NewStyle().Foreground(expenseColor)
	SuccessStyle = IncomeStyle
	InfoStyle    = lipgloss.NewStyle().Foreground(infoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(mutedColor)

	warnStyle   = lipgloss.NewStyle().Foreground(warnColor)
	errorStyle  = ExpenseStyle
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 2)
)

// Markers shown ahead of messages and trends.
const (
	SuccessIcon = "✓"
	UpIcon      = "▲"
	DownIcon    = "▼"
)

func mark(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess renders a confirmation line.
func FormatSuccess(message string) string { return mark(SuccessStyle, SuccessIcon, message) }

// FormatError renders a failure line.
func FormatError(message string) string { return mark(errorStyle, "✗", message) }

// FormatWarning renders a caution line.
func FormatWarning(message string) string { return mark(warnStyle, "⚠️", message) }

// FormatInfo renders a neutral status line.
func FormatInfo(message string) string { return mark(InfoStyle, "ℹ️", message) }

// FormatTitle renders a report heading.
func FormatTitle(title string) string { return mark(TitleStyle, "📊", title) }

// FormatPrompt renders a question awaiting input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox draws content under title inside a rounded border.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
