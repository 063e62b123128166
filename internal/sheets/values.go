package sheets

import (
	"fmt"
	"strings"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/shopspring/decimal"
)

// Report is what one export writes: the dashboard for a range and that
// range's transactions.
type Report struct {
	Dashboard    *report.Dashboard
	Transactions []model.Transaction
}

// amountColumn is the zero-based column holding money in every section.
const amountColumn = 2

var transactionHeader = []any{"Date", "Description", "Amount", "Category", "Type"}

// currencyPattern returns the Sheets number format for a currency code.
func currencyPattern(code string) string {
	digits := "#,##0"
	if model.CurrencyDecimals(code) > 0 {
		digits += "." + strings.Repeat("0", int(model.CurrencyDecimals(code)))
	}
	if sym, ok := model.CurrencySymbol(code); ok {
		return `"` + sym + `"` + digits
	}
	return digits + ` "` + code + `"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// prepareValues lays the report out as rows. Money always sits in the third
// column so a single column format covers it.
func prepareValues(r *Report) [][]any {
	d := r.Dashboard
	values := make([][]any, 0, 24+len(d.Breakdown)+len(d.LastMonths)+len(r.Transactions))

	rate := "n/a"
	if d.HasSavingsRate {
		rate = percent(d.SavingsRate)
	}

	values = append(values,
		[]any{"Fintrack Report", d.Range.String()},
		[]any{},
		[]any{"Summary"},
		[]any{"Currency", d.Currency},
		[]any{"Income", "", money(d.Totals.Income)},
		[]any{"Expense", "", money(d.Totals.Expense)},
		[]any{"Balance", "", money(d.Totals.Balance)},
		[]any{"Savings Rate", rate},
		[]any{"Net Worth", "", money(d.NetWorth)},
	)
	if d.HasGoal {
		values = append(values,
			[]any{"Savings Goal", percent(d.Progress.Fraction.Mul(decimal.NewFromInt(100))), money(d.Goal)})
	}

	values = append(values,
		[]any{},
		[]any{"Expense Breakdown"},
		[]any{"Category", "", "Amount"},
	)
	for _, ct := range d.Breakdown {
		values = append(values, []any{ct.Name, "", money(ct.Total)})
	}

	values = append(values,
		[]any{},
		[]any{"Monthly Expenses"},
	)
	for _, m := range d.LastMonths {
		values = append(values, []any{m.Label, "", money(m.Total)})
	}

	trend := string(d.Trend.Direction)
	if d.Trend.HasPercent() {
		trend = fmt.Sprintf("%s %s", trend, percent(d.Trend.Percent.Abs()))
	}
	values = append(values, []any{"Trend", trend})

	values = append(values,
		[]any{},
		[]any{"Transactions"},
		transactionHeader,
	)
	for _, txn := range r.Transactions {
		values = append(values, []any{
			model.FormatDate(txn.Date),
			txn.Description,
			money(txn.Amount),
			txn.CategoryName,
			string(txn.Type),
		})
	}

	return values
}
