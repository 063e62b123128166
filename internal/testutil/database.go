// Package testutil provides shared fixtures for tests that need a real,
// migrated and seeded ledger database.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/storage"
)

// TestDB bundles an in-memory store with every ledger component wired to it.
type TestDB struct {
	Storage  *storage.SQLiteStorage
	Registry *ledger.Registry
	Ledger   *ledger.Ledger
	Settings *ledger.Settings
	Book     *ledger.Book
	t        *testing.T
}

// SetupTestDB creates a new in-memory test database with the default
// categories and currency seeded. Cleanup is registered on t.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.MustAdd("100.00", "Salary", model.CategoryTypeIncome, "2024-01-15", "")
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.InMemory)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	if err := store.Seed(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to seed database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:  store,
		Registry: ledger.NewRegistry(store),
		Ledger:   ledger.NewLedger(store),
		Settings: ledger.NewSettings(store),
		Book:     ledger.NewBook(store),
		t:        t,
	}
}

// MustAdd records a transaction or fails the test.
func (db *TestDB) MustAdd(amount, category string, categoryType model.CategoryType, date, description string) int64 {
	db.t.Helper()
	id, err := db.Ledger.Add(context.Background(), amount, category, categoryType, date, description)
	if err != nil {
		db.t.Fatalf("failed to add %s %s on %s: %v", categoryType, amount, date, err)
	}
	return id
}

// MustCategory returns the category with the given name or fails the test.
func (db *TestDB) MustCategory(name string) *model.Category {
	db.t.Helper()
	cat, err := db.Registry.Lookup(context.Background(), name)
	if err != nil {
		db.t.Fatalf("category %q not found: %v", name, err)
	}
	return cat
}
