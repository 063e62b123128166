package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Uncategorized is shown for transactions whose category was deleted.
const Uncategorized = "(uncategorized)"

// FormatMoney renders an amount with the currency symbol and thousands
// separators, e.g. "$1,234.50", "-€12.00" or "1,000.00 CHF".
func FormatMoney(currency string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(model.CurrencyDecimals(currency))
	whole, frac, _ := strings.Cut(fixed, ".")
	digits := groupThousands(whole)
	if frac != "" {
		digits += "." + frac
	}

	if sym, ok := model.CurrencySymbol(currency); ok {
		return sign + sym + digits
	}
	return sign + digits + " " + currency
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(1) + "%"
}

// CategoryLabel returns name, or Uncategorized when it is empty.
func CategoryLabel(name string) string {
	if name == "" {
		return Uncategorized
	}
	return name
}

// SignedAmount colors an amount by transaction type.
func SignedAmount(currency string, t model.CategoryType, amount decimal.Decimal) string {
	if t == model.CategoryTypeIncome {
		return IncomeStyle.Render("+" + FormatMoney(currency, amount))
	}
	return ExpenseStyle.Render("-" + FormatMoney(currency, amount))
}

// FormatTrend describes a month-over-month comparison.
func FormatTrend(t report.Trend) string {
	switch t.Direction {
	case report.Increased:
		return ExpenseStyle.Render(fmt.Sprintf("%s %s more than last month", UpIcon, FormatPercent(t.Percent.Abs())))
	case report.Decreased:
		return IncomeStyle.Render(fmt.Sprintf("%s %s less than last month", DownIcon, FormatPercent(t.Percent.Abs())))
	case report.Unchanged:
		return "same as last month"
	default:
		return SubtleStyle.Render("no spending last month")
	}
}

func kv(label, value string) string {
	return LabelStyle.Render(label) + value
}

// RenderDashboard lays out the overview for one range.
func RenderDashboard(d *report.Dashboard) string {
	cur := d.Currency

	rate := SubtleStyle.Render("n/a")
	if d.HasSavingsRate {
		rate = FormatPercent(d.SavingsRate)
	}

	summary := []string{
		kv("Income", IncomeStyle.Render(FormatMoney(cur, d.Totals.Income))),
		kv("Expense", ExpenseStyle.Render(FormatMoney(cur, d.Totals.Expense))),
		kv("Balance", FormatMoney(cur, d.Totals.Balance)),
		kv("Savings rate", rate),
		kv("Net worth", FormatMoney(cur, d.NetWorth)),
		kv("Trend", FormatTrend(d.Trend)),
	}
	if d.HasGoal {
		pct := FormatPercent(d.Progress.Fraction.Mul(decimal.NewFromInt(100)))
		goal := fmt.Sprintf("%s of %s", pct, FormatMoney(cur, d.Goal))
		if d.Progress.Achieved {
			goal = SuccessStyle.Render(goal + " " + SuccessIcon)
		}
		summary = append(summary, kv("Savings goal", goal))
	}

	months := make([]string, 0, len(d.LastMonths))
	for _, m := range d.LastMonths {
		months = append(months, kv(m.Label, FormatMoney(cur, m.Total)))
	}
	if len(months) == 0 {
		months = append(months, SubtleStyle.Render("no data"))
	}

	breakdown := make([]string, 0, len(d.Breakdown))
	for _, ct := range d.Breakdown {
		breakdown = append(breakdown, kv(ct.Name, FormatMoney(cur, ct.Total)))
	}
	if len(breakdown) == 0 {
		breakdown = append(breakdown, SubtleStyle.Render("no expenses yet"))
	}

	recent := make([]string, 0, len(d.Recent))
	for _, txn := range d.Recent {
		recent = append(recent, fmt.Sprintf("%s  %-16s %s",
			model.FormatDate(txn.Date), CategoryLabel(txn.CategoryName), SignedAmount(cur, txn.Type, txn.Amount)))
	}
	if len(recent) == 0 {
		recent = append(recent, SubtleStyle.Render("no transactions in range"))
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		RenderBox("Summary "+d.Range.String(), strings.Join(summary, "\n")),
		RenderBox("Last months", strings.Join(months, "\n")),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		RenderBox("Spending by category", strings.Join(breakdown, "\n")),
		RenderBox("Recent activity", strings.Join(recent, "\n")),
	)
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// RenderTotals renders income, expense, balance and savings rate.
func RenderTotals(currency string, t report.Totals) string {
	rate := "n/a"
	if r, ok := report.SavingsRate(t.Income, t.Expense); ok {
		rate = FormatPercent(r)
	}
	return strings.Join([]string{
		kv("Income", IncomeStyle.Render(FormatMoney(currency, t.Income))),
		kv("Expense", ExpenseStyle.Render(FormatMoney(currency, t.Expense))),
		kv("Balance", FormatMoney(currency, t.Balance)),
		kv("Savings rate", rate),
	}, "\n")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteTransactions prints transactions as an aligned table.
func WriteTransactions(w io.Writer, currency string, txns []model.Transaction) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, t := range txns {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, model.FormatDate(t.Date), t.Type, CategoryLabel(t.CategoryName),
			FormatMoney(currency, t.Amount), t.Description)
	}
	return tw.Flush()
}

// WriteCategories prints categories grouped by type.
func WriteCategories(w io.Writer, cats []model.Category) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tTYPE\tNAME")
	for _, c := range cats {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Type, c.Name)
	}
	return tw.Flush()
}

// WriteSubscriptions prints subscriptions in due order.
func WriteSubscriptions(w io.Writer, currency string, subs []model.Subscription) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCATEGORY\tAMOUNT\tFREQUENCY\tNEXT DUE")
	for _, s := range subs {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, s.Type, CategoryLabel(s.CategoryName),
			FormatMoney(currency, s.Amount), s.Frequency, model.FormatDate(s.NextDue))
	}
	return tw.Flush()
}

// WriteCategoryTotals prints a category breakdown.
func WriteCategoryTotals(w io.Writer, currency string, totals []service.CategoryTotal) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tTOTAL")
	for _, ct := range totals {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", ct.Name, FormatMoney(currency, ct.Total))
	}
	return tw.Flush()
}

// WriteMonthTotals prints a monthly series.
func WriteMonthTotals(w io.Writer, currency string, months []report.MonthTotal) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "MONTH\tTOTAL")
	for _, m := range months {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", m.Label, FormatMoney(currency, m.Total))
	}
	return tw.Flush()
}
