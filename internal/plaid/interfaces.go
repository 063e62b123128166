package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
)

// TransactionFetcher pulls bank transactions ready for ledger import.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.ImportedTransaction, error)
}
