package plaid

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
		},
		{
			name:    "missing client ID",
			config:  Config{Secret: "test-secret", Environment: "sandbox", AccessToken: "test-token"},
			wantErr: true,
			errMsg:  "plaid client ID is required",
		},
		{
			name:    "missing secret",
			config:  Config{ClientID: "test-client-id", Environment: "sandbox", AccessToken: "test-token"},
			wantErr: true,
			errMsg:  "plaid secret is required",
		},
		{
			name:    "missing access token",
			config:  Config{ClientID: "test-client-id", Secret: "test-secret", Environment: "sandbox"},
			wantErr: true,
			errMsg:  "plaid access token is required",
		},
		{
			name:    "unknown environment",
			config:  Config{ClientID: "id", Secret: "secret", Environment: "staging", AccessToken: "token"},
			wantErr: true,
			errMsg:  "must be sandbox or production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{ClientID: "id", Secret: "secret", Environment: "sandbox"})
	require.NoError(t, err)
	assert.NotNil(t, client.client)
	assert.NotNil(t, client.fetchPage)

	_, err = NewClient(Config{ClientID: "id"})
	assert.ErrorIs(t, err, ErrConfig)
}

func testClient(fetch pageFunc) *Client {
	return &Client{
		logger:    slog.Default(),
		fetchPage: fetch,
		retryOpts: service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestClient_GetTransactions_Validation(t *testing.T) {
	client := testClient(nil)

	//nolint:staticcheck // nil context is the case under test
	_, err := client.GetTransactions(nil, date(t, "2024-01-01"), date(t, "2024-02-01"))
	assert.ErrorContains(t, err, "context cannot be nil")

	_, err = client.GetTransactions(context.Background(), date(t, "2024-02-01"), date(t, "2024-01-01"))
	assert.ErrorIs(t, err, common.ErrInvalidDate)
}

func TestClient_GetTransactionsPaginates(t *testing.T) {
	var offsets []int32
	client := testClient(func(_ context.Context, start, end string, offset int32) ([]rawTransaction, int32, error) {
		assert.Equal(t, "2024-01-01", start)
		assert.Equal(t, "2024-01-31", end)
		offsets = append(offsets, offset)
		if offset == 0 {
			return []rawTransaction{
				{ID: "a", Date: "2024-01-02", Name: "COFFEE SHOP", Amount: 4.5},
				{ID: "b", Date: "2024-01-03", Name: "Payroll", Amount: -2500, Category: []string{"Transfer", "Payroll"}},
			}, 3, nil
		}
		return []rawTransaction{{ID: "c", Date: "2024-01-04", Name: "Zero", Amount: 0}}, 3, nil
	})

	txns, err := client.GetTransactions(context.Background(), date(t, "2024-01-01"), date(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 2}, offsets)
	require.Len(t, txns, 2)

	assert.Equal(t, model.CategoryTypeExpense, txns[0].Type)
	assert.Equal(t, "4.5", txns[0].Amount.String())
	assert.Equal(t, "a", txns[0].ExternalID)

	assert.Equal(t, model.CategoryTypeIncome, txns[1].Type)
	assert.Equal(t, "2500", txns[1].Amount.String())
	assert.Equal(t, "Payroll", txns[1].CategoryHint)
}

func TestClient_GetTransactionsRetriesRateLimit(t *testing.T) {
	calls := 0
	client := testClient(func(context.Context, string, string, int32) ([]rawTransaction, int32, error) {
		calls++
		if calls == 1 {
			return nil, 0, common.Transient(common.ErrRateLimit)
		}
		return []rawTransaction{{ID: "a", Date: "2024-01-02", Name: "Shop", Amount: 10}}, 1, nil
	})

	txns, err := client.GetTransactions(context.Background(), date(t, "2024-01-01"), date(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Equal(t, 2, calls)
}

func TestClient_GetTransactionsStopsOnPermanentError(t *testing.T) {
	calls := 0
	failure := errors.New("INVALID_ACCESS_TOKEN")
	client := testClient(func(context.Context, string, string, int32) ([]rawTransaction, int32, error) {
		calls++
		return nil, 0, common.Permanent(failure)
	})

	_, err := client.GetTransactions(context.Background(), date(t, "2024-01-01"), date(t, "2024-01-31"))
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, calls)
}

func TestMapTransaction(t *testing.T) {
	client := testClient(nil)

	txn, ok := client.mapTransaction(rawTransaction{
		ID:       "tx1",
		Date:     "2024-03-05",
		Name:     "AMZN MKTP",
		Merchant: "Amazon   Marketplace 123456789",
		Category: []string{"Shops", "Groceries"},
		Amount:   19.999,
	})
	require.True(t, ok)
	assert.Equal(t, "Amazon Marketplace", txn.Description)
	assert.Equal(t, "20", txn.Amount.String())
	assert.Equal(t, "Groceries", txn.CategoryHint)
	assert.Equal(t, "2024-03-05", model.FormatDate(txn.Date))

	_, ok = client.mapTransaction(rawTransaction{ID: "bad", Date: "03/05/2024", Amount: 1})
	assert.False(t, ok)
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"STARBUCKS  STORE", "STARBUCKS STORE"},
		{"ACME 123456789", "ACME"},
		{"ROUTE 66", "ROUTE 66"},
		{"123456789", "123456789"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanDescription(tt.input))
		})
	}
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient()
	start, end := date(t, "2024-01-01"), date(t, "2024-01-31")

	expected := []model.ImportedTransaction{{ExternalID: "tx1", Type: model.CategoryTypeExpense}}
	mock.GetTransactionsFn = func(context.Context, time.Time, time.Time) ([]model.ImportedTransaction, error) {
		return expected, nil
	}

	txs, err := mock.GetTransactions(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, expected, txs)
	require.Len(t, mock.Requests(), 1)
	assert.Equal(t, start, mock.Requests()[0].Start)
}
