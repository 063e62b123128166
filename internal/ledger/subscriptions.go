package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

// maxOccurrences bounds how many missed periods one Post can materialize
// for a single subscription.
const maxOccurrences = 1000

// PostedSubscription is one subscription materialized by Post.
type PostedSubscription struct {
	NextDue      time.Time
	Subscription model.Subscription
	Occurrences  int
}

// PostResult reports what Post did.
type PostResult struct {
	Posted []PostedSubscription
	// Skipped lists due subscriptions whose category no longer exists.
	Skipped      []model.Subscription
	Transactions int
}

// Book manages recurring subscriptions. Nothing is posted automatically;
// Post must be called explicitly.
type Book struct {
	store service.Storage
}

// NewBook creates a subscription book over store.
func NewBook(store service.Storage) *Book {
	return &Book{store: store}
}

// Add creates a subscription.
func (b *Book) Add(ctx context.Context, name, amount, categoryName string, categoryType model.CategoryType, frequency, nextDue string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: subscription name cannot be empty", common.ErrInvalidName)
	}
	if !categoryType.Valid() {
		return 0, fmt.Errorf("%w: %q must be Income or Expense", common.ErrInvalidType, categoryType)
	}

	parsedAmount, err := ParseAmount(amount)
	if err != nil {
		return 0, err
	}

	freq, ok := model.ParseFrequency(frequency)
	if !ok {
		return 0, fmt.Errorf("%w: %q (want Daily, Weekly, Monthly or Yearly)", common.ErrInvalidFrequency, frequency)
	}

	due, err := ParseDate(nextDue)
	if err != nil {
		return 0, err
	}

	cat, err := b.store.GetCategoryByNameAndType(ctx, strings.TrimSpace(categoryName), categoryType)
	if err != nil {
		return 0, err
	}

	return b.store.CreateSubscription(ctx, &model.Subscription{
		NextDue:    due,
		Amount:     parsedAmount,
		Name:       name,
		Type:       categoryType,
		Frequency:  freq,
		CategoryID: cat.ID,
		AnchorDay:  due.Day(),
	})
}

// List returns subscriptions ordered by next due date, then name.
func (b *Book) List(ctx context.Context) ([]model.Subscription, error) {
	return b.store.GetSubscriptions(ctx)
}

// Delete removes a subscription. Transactions it already posted remain.
func (b *Book) Delete(ctx context.Context, id int64) error {
	return b.store.DeleteSubscription(ctx, id)
}

// Due returns subscriptions whose next due date is on or before asOf.
func (b *Book) Due(ctx context.Context, asOf time.Time) ([]model.Subscription, error) {
	subs, err := b.store.GetSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := model.FormatDate(asOf)
	var due []model.Subscription
	for _, sub := range subs {
		if model.FormatDate(sub.NextDue) <= cutoff {
			due = append(due, sub)
		}
	}
	return due, nil
}

// Post records a transaction for every occurrence of every due subscription
// up to and including asOf, and advances each next due date past asOf.
// All postings are written in one database transaction.
func (b *Book) Post(ctx context.Context, asOf time.Time) (*PostResult, error) {
	due, err := b.Due(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &PostResult{}
	var postings []service.SubscriptionPosting
	for _, sub := range due {
		if sub.CategoryName == "" {
			slog.Warn("skipping subscription with deleted category", "id", sub.ID, "name", sub.Name)
			result.Skipped = append(result.Skipped, sub)
			continue
		}

		occurrences, next := Occurrences(sub.NextDue, sub.Frequency, sub.Anchor(), asOf)
		postings = append(postings, service.SubscriptionPosting{
			Subscription: sub,
			Occurrences:  occurrences,
			NextDue:      next,
		})
		result.Posted = append(result.Posted, PostedSubscription{
			Subscription: sub,
			Occurrences:  len(occurrences),
			NextDue:      next,
		})
		result.Transactions += len(occurrences)
	}

	if len(postings) == 0 {
		return result, nil
	}

	if err := b.store.PostSubscriptions(ctx, postings); err != nil {
		return nil, err
	}

	slog.Info("posted subscriptions", "subscriptions", len(postings), "transactions", result.Transactions)
	return result, nil
}

// Occurrences lists the due dates from first through asOf and returns the
// first due date after asOf. Monthly and yearly dates fall on anchorDay
// where the month has one; anchorDay <= 0 uses first's day.
func Occurrences(first time.Time, frequency model.Frequency, anchorDay int, asOf time.Time) ([]time.Time, time.Time) {
	if anchorDay <= 0 {
		anchorDay = first.Day()
	}
	cutoff := model.FormatDate(asOf)
	var dates []time.Time
	d := first
	for model.FormatDate(d) <= cutoff && len(dates) < maxOccurrences {
		dates = append(dates, d)
		next := model.NextOccurrenceOn(d, frequency, anchorDay)
		if !next.After(d) {
			break
		}
		d = next
	}
	return dates, d
}
