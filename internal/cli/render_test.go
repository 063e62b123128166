package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		currency string
		amount   string
		want     string
	}{
		{"USD", "0", "$0.00"},
		{"USD", "1234.5", "$1,234.50"},
		{"USD", "-1234567.891", "-$1,234,567.89"},
		{"EUR", "999", "€999.00"},
		{"GBP", "100000", "£100,000.00"},
		{"JPY", "1500.4", "¥1,500"},
		{"CHF", "12", "12.00 CHF"},
	}
	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.currency, decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, Uncategorized, CategoryLabel(""))
	assert.Equal(t, "Rent", CategoryLabel("Rent"))
}

func TestRenderDashboard(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	out := RenderDashboard(&report.Dashboard{
		Range:    model.DateRange{Start: day.AddDate(0, 0, -14), End: day},
		Currency: "USD",
		Totals: report.Totals{
			Income:  decimal.NewFromInt(100),
			Expense: decimal.NewFromInt(40),
			Balance: decimal.NewFromInt(60),
		},
		SavingsRate:    decimal.NewFromInt(60),
		HasSavingsRate: true,
		NetWorth:       decimal.NewFromInt(60),
		Recent: []model.Transaction{
			{Date: day, Amount: decimal.NewFromInt(40), Type: model.CategoryTypeExpense},
		},
		Breakdown:  []service.CategoryTotal{{Name: "Groceries", Total: decimal.NewFromInt(40)}},
		LastMonths: []report.MonthTotal{{Label: "Jan 2024", Total: decimal.NewFromInt(40)}},
		Trend:      report.Trend{Direction: report.NoPriorData},
	})

	for _, want := range []string{"$100.00", "$40.00", "60.0%", "Groceries", "Jan 2024", Uncategorized, "2024-01-01 to 2024-01-15"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Savings goal")
}

func TestRenderTotalsWithoutIncome(t *testing.T) {
	out := RenderTotals("EUR", report.Totals{Expense: decimal.NewFromInt(5), Balance: decimal.NewFromInt(-5)})
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "-€5.00")
}

func TestWriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTransactions(&buf, "USD", []model.Transaction{
		{ID: 7, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Type: model.CategoryTypeIncome,
			CategoryName: "Salary", Amount: decimal.NewFromInt(2500), Description: "February pay"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "2024-02-01")
	assert.Contains(t, out, "$2,500.00")
	assert.Contains(t, out, "February pay")
}

func TestFormatTrend(t *testing.T) {
	assert.Contains(t, FormatTrend(report.CompareMonths(decimal.NewFromInt(150), decimal.NewFromInt(100))), "50.0% more")
	assert.Contains(t, FormatTrend(report.CompareMonths(decimal.NewFromInt(50), decimal.NewFromInt(100))), "50.0% less")
	assert.Contains(t, FormatTrend(report.CompareMonths(decimal.NewFromInt(5), decimal.Zero)), "no spending")
}
