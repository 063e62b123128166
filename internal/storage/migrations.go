package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the schema version Migrate brings a database to.
// Opening a ledger at any other version is fatal.
const ExpectedSchemaVersion = 4

// schemaStep moves the schema from version-1 to version.
type schemaStep struct {
	version    int
	summary    string
	statements []string
}

// Amounts are canonical decimal text and dates are yyyy-mm-dd text.
// transactions.category_id is not a foreign key: deleting a category may
// leave rows pointing at a missing id.
var schemaSteps = []schemaStep{
	{
		version: 1,
		summary: "ledger tables",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS categories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				type TEXT NOT NULL CHECK (type IN ('Income', 'Expense'))
			)`,
			`CREATE TABLE IF NOT EXISTS transactions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				date TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('Income', 'Expense')),
				category_id INTEGER NOT NULL,
				amount TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS subscriptions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				amount TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('Income', 'Expense')),
				category_id INTEGER NOT NULL,
				frequency TEXT NOT NULL,
				next_due TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
		},
	},
	{
		version: 2,
		summary: "range and category indexes",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_transactions_type_date ON transactions(type, date)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id)`,
			`CREATE INDEX IF NOT EXISTS idx_subscriptions_category ON subscriptions(category_id)`,
		},
	},
	{
		version: 3,
		summary: "external ids for idempotent imports",
		statements: []string{
			`ALTER TABLE transactions ADD COLUMN external_id TEXT`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_external_id
				ON transactions(external_id) WHERE external_id IS NOT NULL`,
		},
	},
	{
		version: 4,
		summary: "subscription anchor day",
		statements: []string{
			`ALTER TABLE subscriptions ADD COLUMN anchor_day INTEGER NOT NULL DEFAULT 0`,
			`UPDATE subscriptions SET anchor_day = CAST(substr(next_due, 9, 2) AS INTEGER)`,
		},
	},
}

// SchemaVersion reads PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Migrate applies every step newer than the database's version, each in its
// own transaction together with the version bump.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	from, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, step := range schemaSteps {
		if step.version <= from {
			continue
		}
		if err := s.withTx(ctx, step.apply); err != nil {
			return fmt.Errorf("migration %d (%s): %w", step.version, step.summary, err)
		}
		slog.Debug("applied migration", "version", step.version, "summary", step.summary)
	}

	to, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if to != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, to)
	}
	return nil
}

func (step schemaStep) apply(tx *sql.Tx) error {
	for _, stmt := range step.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not take bind parameters.
	_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", step.version))
	return err
}
