// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
)

// Validation errors returned by the ledger components. Each is a local
// failure of a single operation; callers report them and nothing is retried.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrInvalidType         = errors.New("invalid type")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidGoal         = errors.New("invalid savings goal")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidField        = errors.New("invalid field")
	ErrInvalidFrequency    = errors.New("invalid frequency")

	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrCategoryInUse        = errors.New("category in use")
)

// Configuration errors.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError carries a message meant for the person at the terminal along
// with the underlying cause.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return e.UserMessage + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError wraps err with a message for the user.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

var validationErrors = []error{
	ErrInvalidAmount, ErrInvalidDate, ErrCategoryNotFound, ErrDuplicateName,
	ErrInvalidType, ErrUnsupportedCurrency, ErrInvalidGoal, ErrInvalidName,
	ErrInvalidField, ErrInvalidFrequency, ErrCategoryInUse,
}

// IsValidationError reports whether err is one of the ledger validation errors.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether a remote failure may succeed on another try.
func IsRetryable(err error) bool {
	var re *RetryableError
	switch {
	case errors.As(err, &re):
		return re.Retryable
	default:
		return errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded)
	}
}
