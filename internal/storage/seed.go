package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/fintrack/internal/model"
)

// Seed installs the default category set and currency. It only inserts what
// is missing, so it is safe to run on every start.
func (s *SQLiteStorage) Seed(ctx context.Context) error {
	if _, err := s.SeedCategories(ctx, model.DefaultCategories()); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := s.SeedSetting(ctx, model.SettingCurrency, model.DefaultCurrency); err != nil {
		return err
	}
	return nil
}
