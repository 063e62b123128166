package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a strictly positive decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", common.ErrInvalidAmount, s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be greater than zero", common.ErrInvalidAmount, amount)
	}
	return amount, nil
}

// ParseDate parses an ISO yyyy-mm-dd calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a yyyy-mm-dd date", common.ErrInvalidDate, s)
	}
	return d, nil
}

// ParseType parses Income or Expense.
func ParseType(s string) (model.CategoryType, error) {
	t, ok := model.ParseCategoryType(s)
	if !ok {
		return "", fmt.Errorf("%w: %q must be Income or Expense", common.ErrInvalidType, s)
	}
	return t, nil
}

// ImportDefaults names the categories used for imported rows whose hint
// does not match an existing category of the row's type.
type ImportDefaults struct {
	IncomeCategory  string
	ExpenseCategory string
}

// DefaultImportCategories are the seeded fallbacks for imports.
var DefaultImportCategories = ImportDefaults{
	IncomeCategory:  "Salary",
	ExpenseCategory: "Miscellaneous",
}

// ImportResult reports what an import did.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// Ledger records and edits transactions.
type Ledger struct {
	store service.Storage
}

// NewLedger creates a transaction ledger over store.
func NewLedger(store service.Storage) *Ledger {
	return &Ledger{store: store}
}

// Add records a transaction. The category is resolved by name and type
// together, so a name that exists only under the other type is not found.
func (l *Ledger) Add(ctx context.Context, amount, categoryName string, categoryType model.CategoryType, date, description string) (int64, error) {
	if !categoryType.Valid() {
		return 0, fmt.Errorf("%w: %q must be Income or Expense", common.ErrInvalidType, categoryType)
	}

	parsedAmount, err := ParseAmount(amount)
	if err != nil {
		return 0, err
	}

	parsedDate, err := ParseDate(date)
	if err != nil {
		return 0, err
	}

	cat, err := l.store.GetCategoryByNameAndType(ctx, strings.TrimSpace(categoryName), categoryType)
	if err != nil {
		return 0, err
	}

	return l.store.InsertTransaction(ctx, &model.Transaction{
		Date:        parsedDate,
		Amount:      parsedAmount,
		Description: strings.TrimSpace(description),
		Type:        categoryType,
		CategoryID:  cat.ID,
	})
}

// Get returns one transaction.
func (l *Ledger) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	return l.store.GetTransactionByID(ctx, id)
}

// Update changes a single field of a transaction.
//
// Changing the type also moves the transaction to the alphabetically first
// category of the new type. Changing the category resolves the name against
// the transaction's current type.
func (l *Ledger) Update(ctx context.Context, id int64, field model.TransactionField, value string) error {
	txn, err := l.store.GetTransactionByID(ctx, id)
	if err != nil {
		return err
	}

	switch field {
	case model.FieldType:
		newType, err := ParseType(value)
		if err != nil {
			return err
		}
		first, err := l.store.FirstCategoryOfType(ctx, newType)
		if err != nil {
			return err
		}
		txn.Type = newType
		txn.CategoryID = first.ID
	case model.FieldCategory:
		cat, err := l.store.GetCategoryByNameAndType(ctx, strings.TrimSpace(value), txn.Type)
		if err != nil {
			return err
		}
		txn.CategoryID = cat.ID
	case model.FieldAmount:
		if txn.Amount, err = ParseAmount(value); err != nil {
			return err
		}
	case model.FieldDate:
		if txn.Date, err = ParseDate(value); err != nil {
			return err
		}
	case model.FieldDescription:
		txn.Description = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: %q (want type, category, amount, date or description)", common.ErrInvalidField, field)
	}

	if err := l.store.UpdateTransaction(ctx, txn); err != nil {
		return err
	}

	slog.Debug("updated transaction", "id", id, "field", field)
	return nil
}

// Delete removes a transaction permanently.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	return l.store.DeleteTransaction(ctx, id)
}

// List returns every transaction, newest first. Transactions whose category
// was deleted are included with an empty category name.
func (l *Ledger) List(ctx context.Context) ([]model.Transaction, error) {
	return l.store.GetTransactions(ctx, service.TransactionFilter{})
}

// ListInRange returns transactions dated within [start, end], both ends
// included, optionally of one type only.
func (l *Ledger) ListInRange(ctx context.Context, start, end time.Time, categoryType model.CategoryType) ([]model.Transaction, error) {
	if categoryType != "" && !categoryType.Valid() {
		return nil, fmt.Errorf("%w: %q must be Income or Expense", common.ErrInvalidType, categoryType)
	}
	return l.store.GetTransactions(ctx, service.TransactionFilter{
		Range: &model.DateRange{Start: start, End: end},
		Type:  categoryType,
	})
}

// Import records externally sourced transactions in one database
// transaction. Each row goes to its hinted category when one of the right
// type exists, otherwise to the default category for its type. Rows whose
// external ID is already recorded are skipped.
func (l *Ledger) Import(ctx context.Context, rows []model.ImportedTransaction, defaults ImportDefaults) (*ImportResult, error) {
	if defaults.IncomeCategory == "" {
		defaults.IncomeCategory = DefaultImportCategories.IncomeCategory
	}
	if defaults.ExpenseCategory == "" {
		defaults.ExpenseCategory = DefaultImportCategories.ExpenseCategory
	}

	fallback := make(map[model.CategoryType]*model.Category, 2)
	resolveDefault := func(t model.CategoryType) (*model.Category, error) {
		if cat, ok := fallback[t]; ok {
			return cat, nil
		}
		name := defaults.ExpenseCategory
		if t == model.CategoryTypeIncome {
			name = defaults.IncomeCategory
		}
		cat, err := l.store.GetCategoryByNameAndType(ctx, name, t)
		if err != nil {
			return nil, fmt.Errorf("default %s category: %w", strings.ToLower(string(t)), err)
		}
		fallback[t] = cat
		return cat, nil
	}

	txns := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		if !row.Type.Valid() {
			return nil, fmt.Errorf("row %d: %w: %q", i, common.ErrInvalidType, row.Type)
		}
		if !row.Amount.IsPositive() {
			return nil, fmt.Errorf("row %d: %w: %s must be greater than zero", i, common.ErrInvalidAmount, row.Amount)
		}
		if row.Date.IsZero() {
			return nil, fmt.Errorf("row %d: %w: missing date", i, common.ErrInvalidDate)
		}

		var cat *model.Category
		if row.CategoryHint != "" {
			hinted, err := l.store.GetCategoryByNameAndType(ctx, row.CategoryHint, row.Type)
			switch {
			case err == nil:
				cat = hinted
			case !errors.Is(err, common.ErrCategoryNotFound):
				return nil, err
			}
		}
		if cat == nil {
			var err error
			if cat, err = resolveDefault(row.Type); err != nil {
				return nil, err
			}
		}

		txns = append(txns, model.Transaction{
			Date:        model.Day(row.Date),
			Amount:      row.Amount,
			Description: strings.TrimSpace(row.Description),
			ExternalID:  row.ExternalID,
			Type:        row.Type,
			CategoryID:  cat.ID,
		})
	}

	if len(txns) == 0 {
		return &ImportResult{}, nil
	}

	inserted, err := l.store.ImportTransactions(ctx, txns)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Inserted: inserted, Skipped: len(txns) - inserted}, nil
}
