// Package ledger implements the write side of the tracker: the category
// registry, the transaction ledger, the settings store and the subscription
// book. Every component validates its input fully before writing.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

// DeletePolicy decides what happens to rows that reference a deleted category.
type DeletePolicy int

const (
	// DeleteOrphan removes the category and leaves references dangling.
	DeleteOrphan DeletePolicy = iota
	// DeleteBlock refuses to delete a referenced category.
	DeleteBlock
	// DeleteCascade removes referencing transactions and subscriptions too.
	DeleteCascade
)

func (p DeletePolicy) String() string {
	switch p {
	case DeleteOrphan:
		return "orphan"
	case DeleteBlock:
		return "block"
	case DeleteCascade:
		return "cascade"
	}
	return fmt.Sprintf("DeletePolicy(%d)", int(p))
}

// ParseDeletePolicy parses "orphan", "block" or "cascade".
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "orphan", "":
		return DeleteOrphan, nil
	case "block":
		return DeleteBlock, nil
	case "cascade":
		return DeleteCascade, nil
	}
	return DeleteOrphan, fmt.Errorf("%w: unknown delete policy %q", common.ErrInvalidField, s)
}

// Usage counts the rows referencing a category.
type Usage struct {
	Transactions  int
	Subscriptions int
}

// InUse reports whether anything references the category.
func (u Usage) InUse() bool {
	return u.Transactions > 0 || u.Subscriptions > 0
}

// DeleteResult describes what a category deletion did.
type DeleteResult struct {
	Category                 model.Category
	ReferencingTransactions  int
	ReferencingSubscriptions int
	CascadedTransactions     int
}

// Orphaned reports how many transactions were left with a dangling category.
func (r DeleteResult) Orphaned() int {
	return r.ReferencingTransactions - r.CascadedTransactions
}

// Registry manages categories.
type Registry struct {
	store service.Storage
}

// NewRegistry creates a category registry over store.
func NewRegistry(store service.Storage) *Registry {
	return &Registry{store: store}
}

// Add creates a category. Names are unique and compared case-sensitively.
func (r *Registry) Add(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", common.ErrInvalidName)
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: %q must be Income or Expense", common.ErrInvalidType, categoryType)
	}
	return r.store.CreateCategory(ctx, name, categoryType)
}

// Get returns a category by ID.
func (r *Registry) Get(ctx context.Context, id int64) (*model.Category, error) {
	return r.store.GetCategoryByID(ctx, id)
}

// Lookup returns a category by exact name.
func (r *Registry) Lookup(ctx context.Context, name string) (*model.Category, error) {
	return r.store.GetCategoryByName(ctx, strings.TrimSpace(name))
}

// Rename changes a category's name.
func (r *Registry) Rename(ctx context.Context, id int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: category name cannot be empty", common.ErrInvalidName)
	}
	return r.store.RenameCategory(ctx, id, newName)
}

// Retype changes a category's type. Transactions already recorded against
// the category keep their original type.
func (r *Registry) Retype(ctx context.Context, id int64, newType model.CategoryType) error {
	if !newType.Valid() {
		return fmt.Errorf("%w: %q must be Income or Expense", common.ErrInvalidType, newType)
	}
	return r.store.RetypeCategory(ctx, id, newType)
}

// Usage reports how many transactions and subscriptions reference a category.
func (r *Registry) Usage(ctx context.Context, id int64) (Usage, error) {
	if _, err := r.store.GetCategoryByID(ctx, id); err != nil {
		return Usage{}, err
	}
	txns, subs, err := r.store.CategoryUsage(ctx, id)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Transactions: txns, Subscriptions: subs}, nil
}

// Delete removes a category according to policy.
func (r *Registry) Delete(ctx context.Context, id int64, policy DeletePolicy) (*DeleteResult, error) {
	cat, err := r.store.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	usage, err := r.Usage(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{
		Category:                 *cat,
		ReferencingTransactions:  usage.Transactions,
		ReferencingSubscriptions: usage.Subscriptions,
	}

	if policy == DeleteBlock && usage.InUse() {
		return result, fmt.Errorf("%w: %q is used by %d transactions and %d subscriptions",
			common.ErrCategoryInUse, cat.Name, usage.Transactions, usage.Subscriptions)
	}

	cascaded, err := r.store.DeleteCategory(ctx, id, policy == DeleteCascade)
	if err != nil {
		return nil, err
	}
	result.CascadedTransactions = cascaded
	return result, nil
}

// List returns categories ordered by type then name. An empty type lists all.
func (r *Registry) List(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error) {
	if categoryType == "" {
		return r.store.GetCategories(ctx)
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: %q must be Income or Expense", common.ErrInvalidType, categoryType)
	}
	return r.store.GetCategoriesByType(ctx, categoryType)
}
