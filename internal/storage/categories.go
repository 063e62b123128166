package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/mattn/go-sqlite3"
)

const categoryColumns = `id, name, type`

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var cat model.Category
	var categoryType string
	if err := row.Scan(&cat.ID, &cat.Name, &categoryType); err != nil {
		return nil, err
	}
	cat.Type = model.CategoryType(categoryType)
	return &cat, nil
}

// CreateCategory creates a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, fmt.Errorf("%w: category name cannot be empty", common.ErrInvalidName)
	}
	if err := validateType(categoryType); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, type) VALUES (?, ?)`, name, string(categoryType))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %q already exists", common.ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created new category", "name", name, "type", categoryType, "id", id)
	return &model.Category{ID: id, Name: name, Type: categoryType}, nil
}

// SeedCategories inserts any of the given categories that are not present yet
// and reports how many were added. Existing names are left untouched.
func (s *SQLiteStorage) SeedCategories(ctx context.Context, categories []model.Category) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	added := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO categories (name, type) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare seed statement: %w", err)
		}
		defer stmt.Close()

		for _, cat := range categories {
			if err := validateType(cat.Type); err != nil {
				return err
			}
			result, err := stmt.ExecContext(ctx, cat.Name, string(cat.Type))
			if err != nil {
				return fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read seed result: %w", err)
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if added > 0 {
		slog.Debug("seeded categories", "added", added)
	}
	return added, nil
}

// GetCategoryByID returns a category by its ID.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", common.ErrCategoryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetCategoryByName returns a category by its exact name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", common.ErrCategoryNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetCategoryByNameAndType returns the category with the given name only if
// it also has the given type.
func (s *SQLiteStorage) GetCategoryByNameAndType(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ? AND type = ?`, name, string(categoryType)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no %s category named %q", common.ErrCategoryNotFound, categoryType, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// FirstCategoryOfType returns the alphabetically first category of a type.
func (s *SQLiteStorage) FirstCategoryOfType(ctx context.Context, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE type = ? ORDER BY name LIMIT 1`, string(categoryType)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no %s categories defined", common.ErrCategoryNotFound, categoryType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetCategories returns all categories ordered by type then name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY type, name`)
}

// GetCategoriesByType returns the categories of one type ordered by name.
func (s *SQLiteStorage) GetCategoriesByType(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE type = ? ORDER BY name`, string(categoryType))
}

func (s *SQLiteStorage) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// RenameCategory changes a category's name.
func (s *SQLiteStorage) RenameCategory(ctx context.Context, id int64, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return fmt.Errorf("%w: category name cannot be empty", common.ErrInvalidName)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q already exists", common.ErrDuplicateName, name)
		}
		return fmt.Errorf("failed to rename category: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: id %d", common.ErrCategoryNotFound, id))
}

// RetypeCategory changes a category's type. Transactions keep the type they
// were recorded with.
func (s *SQLiteStorage) RetypeCategory(ctx context.Context, id int64, categoryType model.CategoryType) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateType(categoryType); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE categories SET type = ? WHERE id = ?`, string(categoryType), id)
	if err != nil {
		return fmt.Errorf("failed to retype category: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: id %d", common.ErrCategoryNotFound, id))
}

// CategoryUsage counts the transactions and subscriptions referencing a category.
func (s *SQLiteStorage) CategoryUsage(ctx context.Context, id int64) (transactions, subscriptions int, err error) {
	if err := validateContext(ctx); err != nil {
		return 0, 0, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE category_id = ?),
			(SELECT COUNT(*) FROM subscriptions WHERE category_id = ?)`,
		id, id).Scan(&transactions, &subscriptions)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count category usage: %w", err)
	}
	return transactions, subscriptions, nil
}

// DeleteCategory removes a category. With cascade set, referencing
// transactions and subscriptions are removed in the same database
// transaction and the number of removed transactions is returned; otherwise
// references are left dangling.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64, cascade bool) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	cascaded := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		if err := requireAffected(result, fmt.Errorf("%w: id %d", common.ErrCategoryNotFound, id)); err != nil {
			return err
		}

		if !cascade {
			return nil
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM transactions WHERE category_id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category transactions: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read delete result: %w", err)
		}
		cascaded = int(n)

		if _, err := tx.ExecContext(ctx, `DELETE FROM subscriptions WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete category subscriptions: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("deleted category", "id", id, "cascade", cascade, "cascaded_transactions", cascaded)
	return cascaded, nil
}

// requireAffected returns notFound when an UPDATE or DELETE matched no rows.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
