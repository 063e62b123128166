package plaid

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
)

// MockClient is an in-memory TransactionFetcher. It remembers every window
// it was asked for and answers through GetTransactionsFn when set.
type MockClient struct {
	GetTransactionsFn func(ctx context.Context, startDate, endDate time.Time) ([]model.ImportedTransaction, error)

	mu       sync.Mutex
	requests []model.DateRange
}

var _ TransactionFetcher = (*MockClient)(nil)

// NewMockClient returns a MockClient that fetches nothing.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GetTransactions implements TransactionFetcher.
func (m *MockClient) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.ImportedTransaction, error) {
	m.mu.Lock()
	m.requests = append(m.requests, model.DateRange{Start: startDate, End: endDate})
	fn := m.GetTransactionsFn
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, startDate, endDate)
}

// Requests returns the windows fetched so far, oldest first.
func (m *MockClient) Requests() []model.DateRange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.DateRange(nil), m.requests...)
}
