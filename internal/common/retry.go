package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/fintrack/internal/service"
)

var (
	// ErrRateLimit marks a failure caused by a remote API's rate limit.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is wrapped around the last failure once attempts run out.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError tags a remote failure as worth retrying or not.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable failure.
func Transient(err error) error {
	return &RetryableError{Err: err, Retryable: true}
}

// Permanent wraps err so that WithRetry gives up immediately.
func Permanent(err error) error {
	return &RetryableError{Err: err, Retryable: false}
}

// DefaultRetryOptions are used by the remote importers and exporters.
var DefaultRetryOptions = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Multiplier:   2.0,
}

func normalize(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultRetryOptions.MaxAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	return opts
}

// giveUp reports failures no retry can fix.
func giveUp(err error) bool {
	var re *RetryableError
	if errors.As(err, &re) && !re.Retryable {
		return true
	}
	return IsValidationError(err)
}

// WithRetry calls operation until it succeeds, fails permanently, or runs
// out of attempts. Delays grow by Multiplier up to MaxDelay; a rate-limit
// failure waits MaxDelay straight away.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	opts = normalize(opts)
	wait := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := operation()
		switch {
		case err == nil:
			return nil
		case giveUp(err):
			return err
		case attempt >= opts.MaxAttempts:
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		if errors.Is(err, ErrRateLimit) {
			wait = opts.MaxDelay
		}
		slog.Warn("remote call failed, retrying", "attempt", attempt, "wait", wait, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(time.Duration(float64(wait)*opts.Multiplier), opts.MaxDelay)
	}
}
