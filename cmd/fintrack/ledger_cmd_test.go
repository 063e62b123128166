package main

import (
	"strings"
	"testing"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesCommands(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, categoriesCmd(), "add", "Side Gig", "--type", "income")
	assert.Contains(t, out, `Added Income category "Side Gig"`)

	out = mustExecute(t, categoriesCmd(), "list", "--type", "Income")
	assert.Contains(t, out, "Side Gig")
	assert.Contains(t, out, "Salary")
	assert.NotContains(t, out, "Groceries")

	_, err := execute(t, categoriesCmd(), "", "add", "Side Gig", "--type", "expense")
	assert.ErrorIs(t, err, common.ErrDuplicateName)

	mustExecute(t, categoriesCmd(), "rename", "Side Gig", "Consulting")
	out = mustExecute(t, categoriesCmd(), "retype", "Consulting", "expense")
	assert.Contains(t, out, "Expense category")

	out = mustExecute(t, categoriesCmd(), "list", "--type", "expense")
	assert.Contains(t, out, "Consulting")
}

func TestDeleteCategoryPolicies(t *testing.T) {
	setupCLI(t)

	mustExecute(t, transactionsCmd(), "add", "12.00", "Gifts", "--date", "2024-03-01")

	_, err := execute(t, categoriesCmd(), "", "delete", "Gifts", "--policy", "block")
	assert.ErrorIs(t, err, common.ErrCategoryInUse)

	out, err := execute(t, categoriesCmd(), "n\n", "delete", "Gifts", "--policy", "cascade")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted.")

	out, err = execute(t, categoriesCmd(), "y\n", "delete", "Gifts", "--policy", "cascade")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted category "Gifts"`)
	assert.Contains(t, out, "Deleted 1 transactions")

	out = mustExecute(t, transactionsCmd(), "list", "--all")
	assert.Contains(t, out, "No transactions found.")
}

func TestDeleteCategoryOrphans(t *testing.T) {
	setupCLI(t)

	mustExecute(t, transactionsCmd(), "add", "30", "Travel", "--date", "2024-03-01", "--desc", "train")

	out := mustExecute(t, categoriesCmd(), "delete", "Travel")
	assert.Contains(t, out, "1 transactions are now uncategorized")

	out = mustExecute(t, transactionsCmd(), "list", "--all")
	assert.Contains(t, out, "(uncategorized)")
	assert.Contains(t, out, "train")
}

func TestTransactionCommands(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, transactionsCmd(), "add", "42.50", "Food", "--date", "2024-03-02", "--desc", "groceries")
	assert.Contains(t, out, "(id 1)")
	mustExecute(t, transactionsCmd(), "add", "1000", "Salary", "--type", "income", "--date", "2024-03-01")
	mustExecute(t, transactionsCmd(), "add", "5", "Food", "--date", "2024-04-01")

	out = mustExecute(t, transactionsCmd(), "list", "--from", "2024-03-01", "--to", "2024-03-31")
	assert.Contains(t, out, "groceries")
	assert.Contains(t, out, "$42.50")
	assert.Contains(t, out, "$1,000.00")
	assert.NotContains(t, out, "2024-04-01")

	out = mustExecute(t, transactionsCmd(), "list", "--from", "2024-03-01", "--to", "2024-03-31", "--type", "income")
	assert.NotContains(t, out, "groceries")

	mustExecute(t, transactionsCmd(), "update", "1", "amount", "50")
	out = mustExecute(t, transactionsCmd(), "list", "--all", "--type", "expense")
	assert.Contains(t, out, "$50.00")

	_, err := execute(t, transactionsCmd(), "", "update", "1", "amount", "-3")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = execute(t, transactionsCmd(), "", "add", "10", "Salary", "--date", "2024-03-01")
	assert.ErrorIs(t, err, common.ErrCategoryNotFound)

	out, err = execute(t, transactionsCmd(), "", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted.")

	out = mustExecute(t, transactionsCmd(), "delete", "1", "--yes")
	assert.Contains(t, out, "Deleted transaction 1")

	_, err = execute(t, transactionsCmd(), "", "delete", "1", "--yes")
	assert.ErrorIs(t, err, common.ErrTransactionNotFound)

	_, err = execute(t, transactionsCmd(), "", "delete", "abc")
	assert.ErrorIs(t, err, common.ErrInvalidField)
}

func TestSettingsCommands(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, settingsCmd())
	assert.Contains(t, out, "USD")
	assert.Contains(t, out, "not set")

	out = mustExecute(t, settingsCmd(), "currency", "eur")
	assert.Contains(t, out, "Currency set to EUR")

	_, err := execute(t, settingsCmd(), "", "currency", "BTC")
	assert.ErrorIs(t, err, common.ErrUnsupportedCurrency)

	mustExecute(t, settingsCmd(), "goal", "500")
	out = mustExecute(t, settingsCmd())
	assert.Contains(t, out, "EUR")
	assert.Contains(t, out, "€500.00")

	_, err = execute(t, settingsCmd(), "", "goal", "-5")
	assert.ErrorIs(t, err, common.ErrInvalidGoal)

	mustExecute(t, settingsCmd(), "goal", "--clear")
	out = mustExecute(t, settingsCmd())
	assert.Contains(t, out, "not set")
}

func TestSubscriptionCommands(t *testing.T) {
	setupCLI(t)

	mustExecute(t, subscriptionsCmd(), "add", "Netflix", "15.99", "Entertainment", "--next-due", "2024-01-01")
	mustExecute(t, subscriptionsCmd(), "add", "Paycheck", "2000", "Salary", "--type", "income", "--frequency", "weekly", "--next-due", "2024-06-01")

	out := mustExecute(t, subscriptionsCmd(), "list")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "Paycheck")

	out = mustExecute(t, subscriptionsCmd(), "due", "--as-of", "2024-03-15")
	assert.Contains(t, out, "Netflix")
	assert.NotContains(t, out, "Paycheck")

	out = mustExecute(t, subscriptionsCmd(), "post", "--as-of", "2024-03-15")
	assert.Contains(t, out, "Netflix: 3 posted, next due 2024-04-01")
	assert.Contains(t, out, "Recorded 3 transactions")

	out = mustExecute(t, subscriptionsCmd(), "post", "--as-of", "2024-03-15")
	assert.Contains(t, out, "Nothing due as of 2024-03-15")

	out = mustExecute(t, transactionsCmd(), "list", "--from", "2024-01-01", "--to", "2024-03-31")
	assert.Contains(t, out, "2024-02-01")
	assert.Contains(t, out, "$15.99")

	_, err := execute(t, subscriptionsCmd(), "", "add", "Gym", "30", "Entertainment", "--frequency", "fortnightly")
	assert.ErrorIs(t, err, common.ErrInvalidFrequency)

	mustExecute(t, subscriptionsCmd(), "delete", "1")
	_, err = execute(t, subscriptionsCmd(), "", "delete", "1")
	assert.ErrorIs(t, err, common.ErrSubscriptionNotFound)
}

func TestReportCommands(t *testing.T) {
	setupCLI(t)

	mustExecute(t, transactionsCmd(), "add", "100", "Salary", "--type", "income", "--date", "2024-01-15")
	mustExecute(t, transactionsCmd(), "add", "40", "Food", "--date", "2024-01-20", "--desc", "lunch")
	mustExecute(t, transactionsCmd(), "add", "10", "Rent", "--date", "2024-02-01")

	out := mustExecute(t, reportCmd(), "totals", "--from", "2024-01-01", "--to", "2024-01-31")
	assert.Contains(t, out, "2024-01-01 to 2024-01-31")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "$40.00")
	assert.Contains(t, out, "$60.00")
	assert.Contains(t, out, "60.0%")

	out = mustExecute(t, reportCmd(), "overview")
	assert.Contains(t, out, "$50.00")

	out = mustExecute(t, reportCmd(), "breakdown")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "Rent")
	assert.NotContains(t, out, "Salary")

	out = mustExecute(t, reportCmd(), "recent", "--from", "2024-01-01", "--to", "2024-02-28", "--limit", "1")
	assert.Contains(t, out, "2024-02-01")
	assert.NotContains(t, out, "lunch")

	out = mustExecute(t, reportCmd(), "monthly", "--months", "2")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4, out)

	out = mustExecute(t, reportCmd(), "trend")
	assert.Contains(t, out, "Trend")

	out = mustExecute(t, dashboardCmd(), "--from", "2024-01-01", "--to", "2024-01-31")
	assert.Contains(t, out, "Summary 2024-01-01 to 2024-01-31")
	assert.Contains(t, out, "Spending by category")
}
