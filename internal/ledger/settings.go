package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/shopspring/decimal"
)

// Settings stores the active currency and the savings goal.
type Settings struct {
	store service.Storage
}

// NewSettings creates a settings store over store.
func NewSettings(store service.Storage) *Settings {
	return &Settings{store: store}
}

// Currency returns the active currency code, USD when none is stored.
func (s *Settings) Currency(ctx context.Context) (string, error) {
	code, ok, err := s.store.GetSetting(ctx, model.SettingCurrency)
	if err != nil {
		return "", err
	}
	if !ok || !model.IsSupportedCurrency(code) {
		return model.DefaultCurrency, nil
	}
	return code, nil
}

// SetCurrency changes the active currency label. No amounts are converted.
func (s *Settings) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !model.IsSupportedCurrency(code) {
		return fmt.Errorf("%w: %q (supported: %s)", common.ErrUnsupportedCurrency, code,
			strings.Join(model.SupportedCurrencies, ", "))
	}
	if err := s.store.SetSetting(ctx, model.SettingCurrency, code); err != nil {
		return err
	}
	slog.Info("currency changed", "currency", code)
	return nil
}

// SavingsGoal returns the goal amount. ok is false when no valid goal is set.
func (s *Settings) SavingsGoal(ctx context.Context) (goal decimal.Decimal, ok bool, err error) {
	raw, found, err := s.store.GetSetting(ctx, model.SettingSavingsGoal)
	if err != nil || !found {
		return decimal.Zero, false, err
	}
	goal, err = decimal.NewFromString(raw)
	if err != nil || !goal.IsPositive() {
		slog.Warn("ignoring malformed savings goal", "value", raw)
		return decimal.Zero, false, nil
	}
	return goal, true, nil
}

// SetSavingsGoal stores a positive goal amount.
func (s *Settings) SetSavingsGoal(ctx context.Context, amount string) error {
	goal, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", common.ErrInvalidGoal, amount)
	}
	if !goal.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", common.ErrInvalidGoal, goal)
	}
	return s.store.SetSetting(ctx, model.SettingSavingsGoal, goal.String())
}

// ClearSavingsGoal removes the goal.
func (s *Settings) ClearSavingsGoal(ctx context.Context) error {
	return s.store.DeleteSetting(ctx, model.SettingSavingsGoal)
}
