package sheets

import (
	"testing"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceAccount() Config {
	cfg := DefaultConfig()
	cfg.ServiceAccountPath = "/keys/export.json"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	oauthWithFile := DefaultConfig()
	oauthWithFile.ClientID, oauthWithFile.ClientSecret = "id", "secret"
	oauthWithFile.TokenFile = "/tmp/token.json"
	require.NoError(t, oauthWithFile.Validate())
	account := serviceAccount()
	require.NoError(t, account.Validate())

	tests := []struct {
		want   string
		mutate func(*Config)
	}{
		{"no authentication method configured", func(c *Config) { c.ServiceAccountPath = "" }},
		{"no authentication method configured", func(c *Config) {
			c.ServiceAccountPath = ""
			c.ClientID, c.RefreshToken = "id", "token"
		}},
		{"multiple authentication methods configured", func(c *Config) {
			c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
		}},
		{"batch size must be positive", func(c *Config) { c.BatchSize = 0 }},
		{"retry attempts cannot be negative", func(c *Config) { c.RetryAttempts = -1 }},
		{"retry delay cannot be negative", func(c *Config) { c.RetryDelay = -time.Second }},
	}

	for _, tt := range tests {
		cfg := serviceAccount()
		tt.mutate(&cfg)
		err := cfg.Validate()
		assert.ErrorIs(t, err, common.ErrInvalidConfig, tt.want)
		assert.ErrorContains(t, err, tt.want)
	}
}

func TestConfigAuthMode(t *testing.T) {
	account := serviceAccount()
	mode, err := account.authMode()
	require.NoError(t, err)
	assert.Equal(t, authServiceAccount, mode)

	cfg := DefaultConfig()
	cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken = "id", "secret", "token"
	mode, err = cfg.authMode()
	require.NoError(t, err)
	assert.Equal(t, authOAuth, mode)
	assert.True(t, cfg.HasOAuth())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Fintrack Report", cfg.SpreadsheetName)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.True(t, cfg.EnableFormatting)
	assert.ErrorIs(t, cfg.Validate(), common.ErrInvalidConfig)
}
