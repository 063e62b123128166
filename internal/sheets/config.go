// Package sheets exports ledger reports to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
)

// Config controls where and how a report is exported.
type Config struct {
	// OAuth user credentials. The refresh token may come from RefreshToken
	// directly or from a file written by Authorize.
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenFile    string

	// Service account key, used instead of OAuth.
	ServiceAccountPath string

	// Empty SpreadsheetID means a new spreadsheet titled SpreadsheetName.
	SpreadsheetID   string
	SpreadsheetName string
	TimeZone        string

	BatchSize        int
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool
}

type authMode int

const (
	authNone authMode = iota
	authOAuth
	authServiceAccount
)

// DefaultConfig returns the export defaults. Credentials are left empty.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Fintrack Report",
		TimeZone:         "UTC",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

// HasOAuth reports whether client credentials and a refresh token source are set.
func (c *Config) HasOAuth() bool {
	if c.ClientID == "" || c.ClientSecret == "" {
		return false
	}
	return c.RefreshToken != "" || c.TokenFile != ""
}

func (c *Config) authMode() (authMode, error) {
	oauth, account := c.HasOAuth(), c.ServiceAccountPath != ""
	switch {
	case oauth && account:
		return authNone, fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	case oauth:
		return authOAuth, nil
	case account:
		return authServiceAccount, nil
	default:
		return authNone, fmt.Errorf("%w: no authentication method configured", common.ErrInvalidConfig)
	}
}

// Validate reports the first problem that would stop an export.
func (c *Config) Validate() error {
	if _, err := c.authMode(); err != nil {
		return err
	}

	var problem string
	switch {
	case c.BatchSize <= 0:
		problem = "batch size must be positive"
	case c.RetryAttempts < 0:
		problem = "retry attempts cannot be negative"
	case c.RetryDelay < 0:
		problem = "retry delay cannot be negative"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, problem)
}
