package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestLedger_AddRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	id, err := db.Ledger.Add(ctx, "40.00", "Food", model.CategoryTypeExpense, "2024-01-20", "lunch")
	require.NoError(t, err)

	day := date(t, "2024-01-20")
	txns, err := db.Ledger.ListInRange(ctx, day, day, "")
	require.NoError(t, err)
	require.Len(t, txns, 1)

	got := txns[0]
	assert.Equal(t, id, got.ID)
	assert.True(t, decimal.RequireFromString("40.00").Equal(got.Amount))
	assert.Equal(t, "2024-01-20", model.FormatDate(got.Date))
	assert.Equal(t, "lunch", got.Description)
	assert.Equal(t, "Food", got.CategoryName)
	assert.Equal(t, model.CategoryTypeExpense, got.Type)
}

func TestLedger_AddValidation(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		category     string
		categoryType model.CategoryType
		date         string
		wantErr      error
	}{
		{name: "category of other type", amount: "10", category: "Salary", categoryType: model.CategoryTypeExpense, date: "2024-01-01", wantErr: common.ErrCategoryNotFound},
		{name: "unknown category", amount: "10", category: "Yachts", categoryType: model.CategoryTypeExpense, date: "2024-01-01", wantErr: common.ErrCategoryNotFound},
		{name: "zero amount", amount: "0", category: "Food", categoryType: model.CategoryTypeExpense, date: "2024-01-01", wantErr: common.ErrInvalidAmount},
		{name: "negative amount", amount: "-5", category: "Food", categoryType: model.CategoryTypeExpense, date: "2024-01-01", wantErr: common.ErrInvalidAmount},
		{name: "non-numeric amount", amount: "ten", category: "Food", categoryType: model.CategoryTypeExpense, date: "2024-01-01", wantErr: common.ErrInvalidAmount},
		{name: "bad date", amount: "10", category: "Food", categoryType: model.CategoryTypeExpense, date: "2024-02-30", wantErr: common.ErrInvalidDate},
		{name: "non-iso date", amount: "10", category: "Food", categoryType: model.CategoryTypeExpense, date: "01/02/2024", wantErr: common.ErrInvalidDate},
		{name: "bad type", amount: "10", category: "Food", categoryType: model.CategoryType("Transfer"), date: "2024-01-01", wantErr: common.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			ctx := context.Background()

			_, err := db.Ledger.Add(ctx, tt.amount, tt.category, tt.categoryType, tt.date, "")
			require.ErrorIs(t, err, tt.wantErr)

			txns, err := db.Ledger.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, txns, "failed add must not write")
		})
	}
}

func TestLedger_RangeBoundsAreInclusive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	db.MustAdd("1", "Food", model.CategoryTypeExpense, "2024-02-29", "before")
	db.MustAdd("2", "Food", model.CategoryTypeExpense, "2024-03-01", "start")
	db.MustAdd("3", "Food", model.CategoryTypeExpense, "2024-03-31", "end")
	db.MustAdd("4", "Food", model.CategoryTypeExpense, "2024-04-01", "after")

	txns, err := db.Ledger.ListInRange(ctx, date(t, "2024-03-01"), date(t, "2024-03-31"), "")
	require.NoError(t, err)

	var descriptions []string
	for _, txn := range txns {
		descriptions = append(descriptions, txn.Description)
	}
	assert.Equal(t, []string{"end", "start"}, descriptions)
}

func TestLedger_ListOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	first := db.MustAdd("1", "Food", model.CategoryTypeExpense, "2024-03-02", "")
	second := db.MustAdd("2", "Salary", model.CategoryTypeIncome, "2024-03-02", "")
	older := db.MustAdd("3", "Rent", model.CategoryTypeExpense, "2024-03-01", "")

	txns, err := db.Ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, []int64{second, first, older}, []int64{txns[0].ID, txns[1].ID, txns[2].ID})

	income, err := db.Ledger.ListInRange(ctx, date(t, "2024-01-01"), date(t, "2024-12-31"), model.CategoryTypeIncome)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, second, income[0].ID)
}

func TestLedger_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	id := db.MustAdd("40.00", "Food", model.CategoryTypeExpense, "2024-01-20", "lunch")

	require.NoError(t, db.Ledger.Update(ctx, id, model.FieldAmount, "42.50"))
	require.NoError(t, db.Ledger.Update(ctx, id, model.FieldDate, "2024-01-21"))
	require.NoError(t, db.Ledger.Update(ctx, id, model.FieldDescription, "team lunch"))
	require.NoError(t, db.Ledger.Update(ctx, id, model.FieldCategory, "Dining Out"))

	got, err := db.Ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "42.5", got.Amount.String())
	assert.Equal(t, "2024-01-21", model.FormatDate(got.Date))
	assert.Equal(t, "team lunch", got.Description)
	assert.Equal(t, "Dining Out", got.CategoryName)

	// Category names resolve against the current type.
	err = db.Ledger.Update(ctx, id, model.FieldCategory, "Salary")
	assert.ErrorIs(t, err, common.ErrCategoryNotFound)

	assert.ErrorIs(t, db.Ledger.Update(ctx, id, model.FieldAmount, "-1"), common.ErrInvalidAmount)
	assert.ErrorIs(t, db.Ledger.Update(ctx, id, model.FieldDate, "yesterday"), common.ErrInvalidDate)
	assert.ErrorIs(t, db.Ledger.Update(ctx, id, model.FieldType, "Gift"), common.ErrInvalidType)
	assert.ErrorIs(t, db.Ledger.Update(ctx, id, model.TransactionField("memo"), "x"), common.ErrInvalidField)
	assert.ErrorIs(t, db.Ledger.Update(ctx, id+99, model.FieldAmount, "1"), common.ErrTransactionNotFound)

	unchanged, err := db.Ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, got, unchanged)
}

func TestLedger_UpdateTypeResetsCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	id := db.MustAdd("40.00", "Food", model.CategoryTypeExpense, "2024-01-20", "")

	require.NoError(t, db.Ledger.Update(ctx, id, model.FieldType, "income"))

	got, err := db.Ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeIncome, got.Type)
	assert.Equal(t, "Bonus", got.CategoryName)
}

func TestLedger_UpdateTypeWithoutCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	id := db.MustAdd("40.00", "Food", model.CategoryTypeExpense, "2024-01-20", "")

	incomes, err := db.Registry.List(ctx, model.CategoryTypeIncome)
	require.NoError(t, err)
	for _, cat := range incomes {
		_, err := db.Registry.Delete(ctx, cat.ID, ledger.DeleteOrphan)
		require.NoError(t, err)
	}

	err = db.Ledger.Update(ctx, id, model.FieldType, "Income")
	assert.ErrorIs(t, err, common.ErrCategoryNotFound)

	got, err := db.Ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeExpense, got.Type)
}

func TestLedger_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	id := db.MustAdd("40.00", "Food", model.CategoryTypeExpense, "2024-01-20", "")

	require.NoError(t, db.Ledger.Delete(ctx, id))
	assert.ErrorIs(t, db.Ledger.Delete(ctx, id), common.ErrTransactionNotFound)

	_, err := db.Ledger.Get(ctx, id)
	assert.ErrorIs(t, err, common.ErrTransactionNotFound)
}

func TestLedger_Import(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	rows := []model.ImportedTransaction{
		{Date: date(t, "2024-06-01"), Amount: decimal.RequireFromString("2500"), Description: "ACME PAYROLL", ExternalID: "a1", Type: model.CategoryTypeIncome},
		{Date: date(t, "2024-06-02"), Amount: decimal.RequireFromString("3.25"), Description: "COFFEE", ExternalID: "a2", Type: model.CategoryTypeExpense},
		{Date: date(t, "2024-06-03"), Amount: decimal.RequireFromString("1.10"), Description: "BANK INT", ExternalID: "a3", CategoryHint: "Interest", Type: model.CategoryTypeIncome},
		{Date: date(t, "2024-06-04"), Amount: decimal.RequireFromString("9.99"), Description: "MYSTERY", ExternalID: "a4", CategoryHint: "Interest", Type: model.CategoryTypeExpense},
	}

	result, err := db.Ledger.Import(ctx, rows, ledger.ImportDefaults{})
	require.NoError(t, err)
	assert.Equal(t, ledger.ImportResult{Inserted: 4, Skipped: 0}, *result)

	again, err := db.Ledger.Import(ctx, rows, ledger.ImportDefaults{})
	require.NoError(t, err)
	assert.Equal(t, ledger.ImportResult{Inserted: 0, Skipped: 4}, *again)

	txns, err := db.Ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 4)

	byExternal := map[string]model.Transaction{}
	for _, txn := range txns {
		byExternal[txn.ExternalID] = txn
	}
	assert.Equal(t, "Salary", byExternal["a1"].CategoryName)
	assert.Equal(t, "Miscellaneous", byExternal["a2"].CategoryName)
	assert.Equal(t, "Interest", byExternal["a3"].CategoryName)
	// A hint naming a category of the other type falls back to the default.
	assert.Equal(t, "Miscellaneous", byExternal["a4"].CategoryName)
}

func TestLedger_ImportCustomDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	rows := []model.ImportedTransaction{
		{Date: date(t, "2024-06-02"), Amount: decimal.RequireFromString("3.25"), Type: model.CategoryTypeExpense},
	}

	_, err := db.Ledger.Import(ctx, rows, ledger.ImportDefaults{ExpenseCategory: "Nope"})
	assert.ErrorIs(t, err, common.ErrCategoryNotFound)

	result, err := db.Ledger.Import(ctx, rows, ledger.ImportDefaults{ExpenseCategory: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	txns, err := db.Ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Groceries", txns[0].CategoryName)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "100.00", want: "100"},
		{in: " 0.01 ", want: "0.01"},
		{in: "1e2", want: "100"},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ledger.ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
