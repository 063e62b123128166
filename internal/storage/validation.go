// Package storage provides the SQLite persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateType ensures t is Income or Expense.
func validateType(t model.CategoryType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidType, t)
	}
	return nil
}

// validateTransaction checks the row-level shape of a transaction. Category
// existence and type coupling are the ledger's job.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateType(txn.Type); err != nil {
		return err
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", common.ErrInvalidDate)
	}
	if !txn.Amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", common.ErrInvalidAmount, txn.Amount)
	}
	return nil
}

// validateSubscription checks the row-level shape of a subscription.
func validateSubscription(sub *model.Subscription) error {
	if sub == nil {
		return fmt.Errorf("%w: subscription", ErrNilParameter)
	}
	if strings.TrimSpace(sub.Name) == "" {
		return fmt.Errorf("%w: subscription name is empty", common.ErrInvalidName)
	}
	if err := validateType(sub.Type); err != nil {
		return err
	}
	if _, ok := model.ParseFrequency(string(sub.Frequency)); !ok {
		return fmt.Errorf("%w: %q", common.ErrInvalidFrequency, sub.Frequency)
	}
	if sub.NextDue.IsZero() {
		return fmt.Errorf("%w: missing next due date", common.ErrInvalidDate)
	}
	if !sub.Amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", common.ErrInvalidAmount, sub.Amount)
	}
	return nil
}
