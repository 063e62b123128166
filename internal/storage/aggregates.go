package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/shopspring/decimal"
)

// Amounts are stored as decimal text, so SQL SUM would go through floating
// point. Every aggregate here selects the raw values and adds them exactly.

// SumByType totals the amounts of one type, optionally restricted to an
// inclusive date range. An empty selection sums to zero.
func (s *SQLiteStorage) SumByType(ctx context.Context, categoryType model.CategoryType, rng *model.DateRange) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}
	if err := validateType(categoryType); err != nil {
		return decimal.Zero, err
	}

	query := `SELECT amount FROM transactions WHERE type = ?`
	args := []any{string(categoryType)}
	if rng != nil {
		query += ` AND date BETWEEN ? AND ?`
		args = append(args, model.FormatDate(rng.Start), model.FormatDate(rng.End))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		total = total.Add(amount)
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating amounts: %w", err)
	}
	return total, nil
}

// CategoryTotals sums amounts of one type per category name, ordered by name.
// Only categories that still exist and have at least one matching
// transaction appear. A nil range covers all time.
func (s *SQLiteStorage) CategoryTotals(ctx context.Context, categoryType model.CategoryType, rng *model.DateRange) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateType(categoryType); err != nil {
		return nil, err
	}

	query := `
		SELECT c.name, t.amount
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.type = ?`
	args := []any{string(categoryType)}
	if rng != nil {
		query += ` AND t.date BETWEEN ? AND ?`
		args = append(args, model.FormatDate(rng.Start), model.FormatDate(rng.End))
	}
	query += ` ORDER BY c.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	var totals []service.CategoryTotal
	for rows.Next() {
		var name string
		var amount decimal.Decimal
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan category amount: %w", err)
		}
		if n := len(totals); n > 0 && totals[n-1].Name == name {
			totals[n-1].Total = totals[n-1].Total.Add(amount)
			continue
		}
		totals = append(totals, service.CategoryTotal{Name: name, Total: amount})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}

// RecentActivity returns up to limit transactions within the range, newest
// first. Only transactions whose category still exists are included.
func (s *SQLiteStorage) RecentActivity(ctx context.Context, rng model.DateRange, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.date, t.type, t.category_id, t.amount, t.description,
			COALESCE(t.external_id, ''), c.name
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.date BETWEEN ? AND ?
		ORDER BY t.date DESC, t.id DESC
		LIMIT ?`,
		model.FormatDate(rng.Start), model.FormatDate(rng.End), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
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
		return nil, fmt.Errorf("error iterating recent activity: %w", err)
	}
	return txns, nil
}

// AmountsByType returns the date and amount of every transaction of one type
// within the inclusive range, oldest first.
func (s *SQLiteStorage) AmountsByType(ctx context.Context, categoryType model.CategoryType, rng model.DateRange) ([]service.DatedAmount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateType(categoryType); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, amount
		FROM transactions
		WHERE type = ? AND date BETWEEN ? AND ?
		ORDER BY date, id`,
		string(categoryType), model.FormatDate(rng.Start), model.FormatDate(rng.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer rows.Close()

	var amounts []service.DatedAmount
	for rows.Next() {
		var date string
		var da service.DatedAmount
		if err := rows.Scan(&date, &da.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan amount: %w", err)
		}
		if da.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("malformed transaction date %q: %w", date, err)
		}
		amounts = append(amounts, da)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amounts: %w", err)
	}
	return amounts, nil
}
