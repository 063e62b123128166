// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/shopspring/decimal"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	Range *model.DateRange
	Type  model.CategoryType
	Limit int
}

// CategoryTotal is the summed amount of one category within a range.
type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
}

// DatedAmount is the minimal projection used for time bucketing.
type DatedAmount struct {
	Date   time.Time
	Amount decimal.Decimal
}

// SubscriptionPosting is one subscription's materialization: a transaction
// per occurrence date, then the subscription moves to NextDue.
type SubscriptionPosting struct {
	NextDue      time.Time
	Occurrences  []time.Time
	Subscription model.Subscription
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Category operations
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error)
	SeedCategories(ctx context.Context, categories []model.Category) (int, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByNameAndType(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error)
	FirstCategoryOfType(ctx context.Context, categoryType model.CategoryType) (*model.Category, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoriesByType(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) error
	RetypeCategory(ctx context.Context, id int64, categoryType model.CategoryType) error
	CategoryUsage(ctx context.Context, id int64) (transactions, subscriptions int, err error)
	DeleteCategory(ctx context.Context, id int64, cascade bool) (int, error)

	// Transaction operations
	InsertTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	ImportTransactions(ctx context.Context, txns []model.Transaction) (inserted int, err error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error

	// Aggregate queries
	SumByType(ctx context.Context, categoryType model.CategoryType, rng *model.DateRange) (decimal.Decimal, error)
	CategoryTotals(ctx context.Context, categoryType model.CategoryType, rng *model.DateRange) ([]CategoryTotal, error)
	RecentActivity(ctx context.Context, rng model.DateRange, limit int) ([]model.Transaction, error)
	AmountsByType(ctx context.Context, categoryType model.CategoryType, rng model.DateRange) ([]DatedAmount, error)

	// Subscription operations
	CreateSubscription(ctx context.Context, sub *model.Subscription) (int64, error)
	GetSubscriptionByID(ctx context.Context, id int64) (*model.Subscription, error)
	GetSubscriptions(ctx context.Context) ([]model.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) error
	PostSubscriptions(ctx context.Context, postings []SubscriptionPosting) error

	// Settings operations
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	// Database management
	Migrate(ctx context.Context) error
	Seed(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
