// Package report computes read-only summaries of the ledger: totals,
// savings rate, category and monthly breakdowns, month-over-month trend and
// goal progress. The engine keeps no state between calls; every result is
// computed from the store as it is at call time.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/shopspring/decimal"
)

// Defaults for the windowed queries.
const (
	DefaultRecentLimit  = 6
	DefaultMonthsBack   = 11
	DefaultRecentMonths = 3
)

var hundred = decimal.NewFromInt(100)

// Totals is the income, expense and balance of a window.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// MonthTotal is one calendar month's sum.
type MonthTotal struct {
	Month time.Time
	Total decimal.Decimal
	Label string
}

// Direction classifies a month-over-month change.
type Direction string

// Trend directions.
const (
	Increased   Direction = "Increased"
	Decreased   Direction = "Decreased"
	Unchanged   Direction = "Unchanged"
	NoPriorData Direction = "NoPriorData"
)

// Trend compares this month's expenses so far with all of last month's.
// Percent is only meaningful when Direction is not NoPriorData.
type Trend struct {
	ThisMonth decimal.Decimal
	LastMonth decimal.Decimal
	Percent   decimal.Decimal
	Direction Direction
}

// HasPercent reports whether a percent change is available.
func (t Trend) HasPercent() bool {
	return t.Direction != NoPriorData
}

// Progress is the fraction of a savings goal reached, capped at 1.
type Progress struct {
	Fraction decimal.Decimal
	Achieved bool
}

// Dashboard is everything the overview screen shows for one window.
type Dashboard struct {
	Range          model.DateRange
	Currency       string
	Totals         Totals
	SavingsRate    decimal.Decimal
	HasSavingsRate bool
	NetWorth       decimal.Decimal
	Goal           decimal.Decimal
	HasGoal        bool
	Progress       Progress
	Recent         []model.Transaction
	Trend          Trend
	LastMonths     []MonthTotal
	Breakdown      []service.CategoryTotal
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine answers aggregate queries over the ledger.
type Engine struct {
	store    service.Storage
	settings *ledger.Settings
	now      func() time.Time
}

// NewEngine creates an aggregation engine over store.
func NewEngine(store service.Storage, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		settings: ledger.NewSettings(store),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the engine's current calendar date.
func (e *Engine) Today() time.Time {
	now := e.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Totals sums income and expense within [start, end].
func (e *Engine) Totals(ctx context.Context, start, end time.Time) (Totals, error) {
	return e.totals(ctx, &model.DateRange{Start: start, End: end})
}

// Overview returns the all-time totals; the balance is the net worth.
func (e *Engine) Overview(ctx context.Context) (Totals, error) {
	return e.totals(ctx, nil)
}

func (e *Engine) totals(ctx context.Context, rng *model.DateRange) (Totals, error) {
	income, err := e.store.SumByType(ctx, model.CategoryTypeIncome, rng)
	if err != nil {
		return Totals{}, fmt.Errorf("sum income: %w", err)
	}
	expense, err := e.store.SumByType(ctx, model.CategoryTypeExpense, rng)
	if err != nil {
		return Totals{}, fmt.Errorf("sum expense: %w", err)
	}
	return Totals{Income: income, Expense: expense, Balance: income.Sub(expense)}, nil
}

// SavingsRate returns (income - expense) / income * 100. ok is false when
// income is zero, in which case no rate exists.
func SavingsRate(income, expense decimal.Decimal) (rate decimal.Decimal, ok bool) {
	if income.IsZero() {
		return decimal.Zero, false
	}
	return income.Sub(expense).Div(income).Mul(hundred), true
}

// GoalProgress returns min(income/goal, 1). A non-positive goal has no progress.
func GoalProgress(currentIncome, goal decimal.Decimal) Progress {
	if !goal.IsPositive() {
		return Progress{Fraction: decimal.Zero}
	}
	fraction := currentIncome.Div(goal)
	one := decimal.NewFromInt(1)
	if fraction.GreaterThan(one) {
		fraction = one
	}
	if fraction.IsNegative() {
		fraction = decimal.Zero
	}
	return Progress{Fraction: fraction, Achieved: fraction.GreaterThanOrEqual(one)}
}

// RecentActivity returns the latest transactions within [start, end], newest
// first. A non-positive limit uses DefaultRecentLimit.
func (e *Engine) RecentActivity(ctx context.Context, start, end time.Time, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return e.store.RecentActivity(ctx, model.DateRange{Start: start, End: end}, limit)
}

// CategoryBreakdown sums all-time amounts per category for one type,
// defaulting to Expense. Categories without transactions are omitted.
func (e *Engine) CategoryBreakdown(ctx context.Context, categoryType model.CategoryType) ([]service.CategoryTotal, error) {
	if categoryType == "" {
		categoryType = model.CategoryTypeExpense
	}
	return e.store.CategoryTotals(ctx, categoryType, nil)
}

// MonthlySeries returns one total per calendar month, oldest first, for the
// current month and the monthsBack months before it. Empty months are zero.
// A negative monthsBack uses DefaultMonthsBack.
func (e *Engine) MonthlySeries(ctx context.Context, categoryType model.CategoryType, monthsBack int) ([]MonthTotal, error) {
	if monthsBack < 0 {
		monthsBack = DefaultMonthsBack
	}
	return e.monthBuckets(ctx, categoryType, monthsBack+1)
}

// RecentMonthsExpense returns expense totals for the trailing n calendar
// months including the current one, labelled like "Jan 2024".
func (e *Engine) RecentMonthsExpense(ctx context.Context, n int) ([]MonthTotal, error) {
	if n <= 0 {
		n = DefaultRecentMonths
	}
	return e.monthBuckets(ctx, model.CategoryTypeExpense, n)
}

func (e *Engine) monthBuckets(ctx context.Context, categoryType model.CategoryType, n int) ([]MonthTotal, error) {
	today := e.Today()
	first := model.MonthStart(today).AddDate(0, -(n - 1), 0)

	buckets := make([]MonthTotal, n)
	for i := range buckets {
		month := first.AddDate(0, i, 0)
		buckets[i] = MonthTotal{Month: month, Label: month.Format("Jan 2006"), Total: decimal.Zero}
	}

	amounts, err := e.store.AmountsByType(ctx, categoryType,
		model.DateRange{Start: first, End: model.MonthEnd(today)})
	if err != nil {
		return nil, err
	}

	for _, a := range amounts {
		idx := (a.Date.Year()-first.Year())*12 + int(a.Date.Month()) - int(first.Month())
		if idx >= 0 && idx < n {
			buckets[idx].Total = buckets[idx].Total.Add(a.Amount)
		}
	}
	return buckets, nil
}

// Trend compares the expense total from the first of today's month through
// today with the whole previous calendar month.
func (e *Engine) Trend(ctx context.Context, today time.Time) (Trend, error) {
	today = model.Day(today)
	thisStart := model.MonthStart(today)
	lastStart := thisStart.AddDate(0, -1, 0)

	this, err := e.store.SumByType(ctx, model.CategoryTypeExpense,
		&model.DateRange{Start: thisStart, End: today})
	if err != nil {
		return Trend{}, err
	}
	last, err := e.store.SumByType(ctx, model.CategoryTypeExpense,
		&model.DateRange{Start: lastStart, End: model.MonthEnd(lastStart)})
	if err != nil {
		return Trend{}, err
	}

	return CompareMonths(this, last), nil
}

// CompareMonths classifies the change from last to this.
func CompareMonths(this, last decimal.Decimal) Trend {
	t := Trend{ThisMonth: this, LastMonth: last, Percent: decimal.Zero}
	if last.IsZero() {
		t.Direction = NoPriorData
		return t
	}

	t.Percent = this.Sub(last).Div(last).Mul(hundred)
	switch t.Percent.Sign() {
	case 1:
		t.Direction = Increased
	case -1:
		t.Direction = Decreased
	default:
		t.Direction = Unchanged
	}
	return t
}

// Dashboard assembles the overview for one window. Goal progress is measured
// against the window's income.
func (e *Engine) Dashboard(ctx context.Context, rng model.DateRange) (*Dashboard, error) {
	d := &Dashboard{Range: rng}

	var err error
	if d.Currency, err = e.settings.Currency(ctx); err != nil {
		return nil, err
	}
	if d.Totals, err = e.Totals(ctx, rng.Start, rng.End); err != nil {
		return nil, err
	}
	d.SavingsRate, d.HasSavingsRate = SavingsRate(d.Totals.Income, d.Totals.Expense)

	overall, err := e.Overview(ctx)
	if err != nil {
		return nil, err
	}
	d.NetWorth = overall.Balance

	if d.Goal, d.HasGoal, err = e.settings.SavingsGoal(ctx); err != nil {
		return nil, err
	}
	if d.HasGoal {
		d.Progress = GoalProgress(d.Totals.Income, d.Goal)
	}

	if d.Recent, err = e.RecentActivity(ctx, rng.Start, rng.End, DefaultRecentLimit); err != nil {
		return nil, err
	}
	if d.Trend, err = e.Trend(ctx, e.Today()); err != nil {
		return nil, err
	}
	if d.LastMonths, err = e.RecentMonthsExpense(ctx, DefaultRecentMonths); err != nil {
		return nil, err
	}
	if d.Breakdown, err = e.CategoryBreakdown(ctx, model.CategoryTypeExpense); err != nil {
		return nil, err
	}
	return d, nil
}
