package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/pattern"
	"github.com/Veraticus/fintrack/internal/plaid"
	"github.com/Veraticus/fintrack/internal/sheets"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FINTRACK_DATABASE_PATH.
const EnvPrefix = "FINTRACK"

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Plaid    PlaidConfig    `mapstructure:"plaid"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Import   ImportConfig   `mapstructure:"import"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// PlaidConfig holds bank sync credentials. All fields are optional until
// a Plaid command runs.
type PlaidConfig struct {
	ClientID    string `mapstructure:"client_id"`
	Secret      string `mapstructure:"secret"`
	Environment string `mapstructure:"environment" validate:"omitempty,oneof=sandbox production"`
	AccessToken string `mapstructure:"access_token"`
}

// ImportConfig controls how imported rows are filed.
type ImportConfig struct {
	IncomeCategory  string         `mapstructure:"income_category"`
	ExpenseCategory string         `mapstructure:"expense_category"`
	Rules           []pattern.Rule `mapstructure:"rules" validate:"dive"`
}

// SheetsConfig holds Google Sheets export settings.
type SheetsConfig struct {
	ClientID           string        `mapstructure:"client_id"`
	ClientSecret       string        `mapstructure:"client_secret"`
	RefreshToken       string        `mapstructure:"refresh_token"`
	TokenFile          string        `mapstructure:"token_file"`
	ServiceAccountPath string        `mapstructure:"service_account_path"`
	SpreadsheetID      string        `mapstructure:"spreadsheet_id"`
	SpreadsheetName    string        `mapstructure:"spreadsheet_name"`
	TimeZone           string        `mapstructure:"timezone"`
	BatchSize          int           `mapstructure:"batch_size" validate:"gt=0"`
	RetryAttempts      int           `mapstructure:"retry_attempts" validate:"gte=0"`
	RetryDelay         time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	EnableFormatting   bool          `mapstructure:"enable_formatting"`
}

// PlaidClientConfig converts to the Plaid client's configuration.
func (c *Config) PlaidClientConfig() plaid.Config {
	return plaid.Config{
		ClientID:    c.Plaid.ClientID,
		Secret:      c.Plaid.Secret,
		Environment: c.Plaid.Environment,
		AccessToken: c.Plaid.AccessToken,
	}
}

// SheetsWriterConfig converts to the Sheets writer's configuration.
func (c *Config) SheetsWriterConfig() sheets.Config {
	s := c.Sheets
	return sheets.Config{
		ClientID:           s.ClientID,
		ClientSecret:       s.ClientSecret,
		RefreshToken:       s.RefreshToken,
		TokenFile:          s.TokenFile,
		ServiceAccountPath: s.ServiceAccountPath,
		SpreadsheetID:      s.SpreadsheetID,
		SpreadsheetName:    s.SpreadsheetName,
		TimeZone:           s.TimeZone,
		BatchSize:          s.BatchSize,
		RetryAttempts:      s.RetryAttempts,
		RetryDelay:         s.RetryDelay,
		EnableFormatting:   s.EnableFormatting,
	}
}

// ImportDefaults returns the fallback categories for imported rows.
func (c *Config) ImportDefaults() ledger.ImportDefaults {
	return ledger.ImportDefaults{
		IncomeCategory:  c.Import.IncomeCategory,
		ExpenseCategory: c.Import.ExpenseCategory,
	}
}

// ImportMatcher compiles the configured import rules.
func (c *Config) ImportMatcher() (*pattern.Matcher, error) {
	return pattern.NewMatcher(c.Import.Rules)
}

// legacyEnv maps keys to the provider's conventional variable names, read
// when the FINTRACK_ form is unset.
var legacyEnv = map[string]string{
	"plaid.client_id":             "PLAID_CLIENT_ID",
	"plaid.secret":                "PLAID_SECRET",
	"plaid.environment":           "PLAID_ENV",
	"plaid.access_token":          "PLAID_ACCESS_TOKEN",
	"sheets.client_id":            "GOOGLE_SHEETS_CLIENT_ID",
	"sheets.client_secret":        "GOOGLE_SHEETS_CLIENT_SECRET",
	"sheets.refresh_token":        "GOOGLE_SHEETS_REFRESH_TOKEN",
	"sheets.service_account_path": "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
	"sheets.spreadsheet_id":       "GOOGLE_SHEETS_SPREADSHEET_ID",
	"sheets.spreadsheet_name":     "GOOGLE_SHEETS_SPREADSHEET_NAME",
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	sd := sheets.DefaultConfig()

	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("plaid.environment", "sandbox")
	v.SetDefault("import.income_category", ledger.DefaultImportCategories.IncomeCategory)
	v.SetDefault("import.expense_category", ledger.DefaultImportCategories.ExpenseCategory)
	v.SetDefault("sheets.token_file", DefaultDir()+"/sheets-token.json")
	v.SetDefault("sheets.spreadsheet_name", sd.SpreadsheetName)
	v.SetDefault("sheets.timezone", sd.TimeZone)
	v.SetDefault("sheets.batch_size", sd.BatchSize)
	v.SetDefault("sheets.retry_attempts", sd.RetryAttempts)
	v.SetDefault("sheets.retry_delay", sd.RetryDelay)
	v.SetDefault("sheets.enable_formatting", sd.EnableFormatting)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Missing files are ignored and existing
// variables are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ReadConfigFile points v at cfgFile, or at config.yaml in the default
// directory or the working directory, and reads it. A missing default file
// is fine; a missing explicit file is not.
func ReadConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load decodes v into a Config, expands paths and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Sheets.TokenFile = ExpandPath(cfg.Sheets.TokenFile)
	cfg.Sheets.ServiceAccountPath = ExpandPath(cfg.Sheets.ServiceAccountPath)
	// Flags and env vars arrive in whatever case the user typed.
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidConfig, describe(err))
	}
	return &cfg, nil
}

// describe flattens validator errors into "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), rule))
	}
	return strings.Join(parts, "; ")
}
