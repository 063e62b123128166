package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

// The LEFT JOIN keeps transactions whose category was deleted; their
// category name scans as empty.
const transactionSelect = `
	SELECT t.id, t.date, t.type, t.category_id, t.amount, t.description,
		COALESCE(t.external_id, ''), COALESCE(c.name, '')
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var txn model.Transaction
	var date, txnType string
	if err := row.Scan(&txn.ID, &date, &txnType, &txn.CategoryID, &txn.Amount,
		&txn.Description, &txn.ExternalID, &txn.CategoryName); err != nil {
		return nil, err
	}

	parsed, err := model.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("transaction %d has malformed date %q: %w", txn.ID, date, err)
	}
	txn.Date = parsed
	txn.Type = model.CategoryType(txnType)
	return &txn, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// InsertTransaction stores a new transaction and returns its ID.
func (s *SQLiteStorage) InsertTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (date, type, category_id, amount, description, external_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		model.FormatDate(txn.Date), string(txn.Type), txn.CategoryID,
		txn.Amount.String(), txn.Description, nullableString(txn.ExternalID))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: external id %q already recorded", common.ErrDuplicateName, txn.ExternalID)
		}
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction ID: %w", err)
	}

	txn.ID = id
	slog.Debug("inserted transaction", "id", id, "type", txn.Type, "amount", txn.Amount.String())
	return id, nil
}

// ImportTransactions inserts a batch in one database transaction. Rows whose
// external ID is already present are skipped; the number actually inserted
// is returned.
func (s *SQLiteStorage) ImportTransactions(ctx context.Context, txns []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range txns {
		if err := validateTransaction(&txns[i]); err != nil {
			return 0, fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transactions (date, type, category_id, amount, description, external_id)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, txn := range txns {
			result, err := stmt.ExecContext(ctx,
				model.FormatDate(txn.Date), string(txn.Type), txn.CategoryID,
				txn.Amount.String(), txn.Description, nullableString(txn.ExternalID))
			if err != nil {
				return fmt.Errorf("failed to insert transaction: %w", err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read insert result: %w", err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("imported transactions", "inserted", inserted, "skipped", len(txns)-inserted)
	return inserted, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", common.ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetTransactions lists transactions newest first (date, then id, descending).
// A nil filter range lists the whole ledger; bounds are inclusive.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if filter.Range != nil {
		where = append(where, "t.date BETWEEN ? AND ?")
		args = append(args, model.FormatDate(filter.Range.Start), model.FormatDate(filter.Range.End))
	}
	if filter.Type != "" {
		if err := validateType(filter.Type); err != nil {
			return nil, err
		}
		where = append(where, "t.type = ?")
		args = append(args, string(filter.Type))
	}

	query := transactionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date DESC, t.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

// UpdateTransaction rewrites every editable column of an existing
// transaction in a single statement.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, type = ?, category_id = ?, amount = ?, description = ?
		WHERE id = ?`,
		model.FormatDate(txn.Date), string(txn.Type), txn.CategoryID,
		txn.Amount.String(), txn.Description, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: id %d", common.ErrTransactionNotFound, txn.ID))
}

// DeleteTransaction removes a transaction permanently.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if err := requireAffected(result, fmt.Errorf("%w: id %d", common.ErrTransactionNotFound, id)); err != nil {
		return err
	}

	slog.Debug("deleted transaction", "id", id)
	return nil
}
