package ledger_test

import (
	"context"
	"testing"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Currency(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	code, err := db.Settings.Currency(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	require.NoError(t, db.Settings.SetCurrency(ctx, "inr"))
	code, err = db.Settings.Currency(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INR", code)

	err = db.Settings.SetCurrency(ctx, "BTC")
	assert.ErrorIs(t, err, common.ErrUnsupportedCurrency)

	code, err = db.Settings.Currency(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INR", code, "rejected currency must not be stored")
}

func TestSettings_CurrencyDefaultsWhenMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Storage.DeleteSetting(ctx, model.SettingCurrency))

	code, err := db.Settings.Currency(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCurrency, code)
}

func TestSettings_SavingsGoal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, ok, err := db.Settings.SavingsGoal(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, bad := range []string{"0", "-10", "lots", "", "NaN"} {
		assert.ErrorIs(t, db.Settings.SetSavingsGoal(ctx, bad), common.ErrInvalidGoal, bad)
	}

	require.NoError(t, db.Settings.SetSavingsGoal(ctx, "1500.50"))
	goal, ok, err := db.Settings.SavingsGoal(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1500.5", goal.String())

	require.NoError(t, db.Settings.ClearSavingsGoal(ctx))
	_, ok, err = db.Settings.SavingsGoal(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettings_MalformedGoalReadsAsUnset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Storage.SetSetting(ctx, model.SettingSavingsGoal, "abc"))

	_, ok, err := db.Settings.SavingsGoal(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
