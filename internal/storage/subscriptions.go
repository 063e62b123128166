package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

const subscriptionSelect = `
	SELECT s.id, s.name, s.amount, s.type, s.category_id, s.frequency, s.next_due,
		s.anchor_day, COALESCE(c.name, '')
	FROM subscriptions s
	LEFT JOIN categories c ON c.id = s.category_id`

func scanSubscription(row interface{ Scan(...any) error }) (*model.Subscription, error) {
	var sub model.Subscription
	var subType, frequency, nextDue string
	if err := row.Scan(&sub.ID, &sub.Name, &sub.Amount, &subType, &sub.CategoryID,
		&frequency, &nextDue, &sub.AnchorDay, &sub.CategoryName); err != nil {
		return nil, err
	}

	parsed, err := model.ParseDate(nextDue)
	if err != nil {
		return nil, fmt.Errorf("subscription %d has malformed due date %q: %w", sub.ID, nextDue, err)
	}
	sub.NextDue = parsed
	sub.Type = model.CategoryType(subType)
	sub.Frequency = model.Frequency(frequency)
	return &sub, nil
}

// CreateSubscription stores a new subscription and returns its ID.
func (s *SQLiteStorage) CreateSubscription(ctx context.Context, sub *model.Subscription) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateSubscription(sub); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (name, amount, type, category_id, frequency, next_due, anchor_day)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.Name, sub.Amount.String(), string(sub.Type), sub.CategoryID,
		string(sub.Frequency), model.FormatDate(sub.NextDue), sub.Anchor())
	if err != nil {
		return 0, fmt.Errorf("failed to create subscription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get subscription ID: %w", err)
	}

	sub.ID = id
	slog.Info("created subscription", "id", id, "name", sub.Name, "frequency", sub.Frequency)
	return id, nil
}

// GetSubscriptionByID retrieves a single subscription.
func (s *SQLiteStorage) GetSubscriptionByID(ctx context.Context, id int64) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.db.QueryRowContext(ctx, subscriptionSelect+` WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", common.ErrSubscriptionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}
	return sub, nil
}

// GetSubscriptions lists subscriptions by next due date, then name.
func (s *SQLiteStorage) GetSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, subscriptionSelect+` ORDER BY s.next_due, s.name, s.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}
	return subs, nil
}

// DeleteSubscription removes a subscription.
func (s *SQLiteStorage) DeleteSubscription(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: id %d", common.ErrSubscriptionNotFound, id))
}

// PostSubscriptions records one transaction per occurrence date for each
// posting and moves each subscription's next due date forward. Either every
// posting applies or none does.
func (s *SQLiteStorage) PostSubscriptions(ctx context.Context, postings []service.SubscriptionPosting) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range postings {
		if err := validateSubscription(&postings[i].Subscription); err != nil {
			return err
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, posting := range postings {
			sub := posting.Subscription
			for _, due := range posting.Occurrences {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO transactions (date, type, category_id, amount, description)
					VALUES (?, ?, ?, ?, ?)`,
					model.FormatDate(due), string(sub.Type), sub.CategoryID,
					sub.Amount.String(), sub.Name); err != nil {
					return fmt.Errorf("failed to post subscription %q: %w", sub.Name, err)
				}
			}

			result, err := tx.ExecContext(ctx, `UPDATE subscriptions SET next_due = ? WHERE id = ?`,
				model.FormatDate(posting.NextDue), sub.ID)
			if err != nil {
				return fmt.Errorf("failed to advance subscription: %w", err)
			}
			if err := requireAffected(result, fmt.Errorf("%w: id %d", common.ErrSubscriptionNotFound, sub.ID)); err != nil {
				return err
			}

			slog.Debug("posted subscription", "id", sub.ID, "occurrences", len(posting.Occurrences),
				"next_due", model.FormatDate(posting.NextDue))
		}
		return nil
	})
}
