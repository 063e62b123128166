// Package plaid syncs bank transactions through the Plaid API.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/google/uuid"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
)

// pageSize is Plaid's maximum for /transactions/get.
const pageSize = int32(500)

const rateLimitCode = "RATE_LIMIT_EXCEEDED"

// ErrConfig is returned for incomplete Plaid settings.
var ErrConfig = errors.New("invalid plaid configuration")

var validEnvironments = map[string]plaid.Environment{
	"sandbox":    plaid.Sandbox,
	"production": plaid.Production,
}

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

func (c *Config) validateCredentials() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", ErrConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", ErrConfig)
	}
	if c.Environment == "" {
		return fmt.Errorf("%w: plaid environment is required", ErrConfig)
	}
	if _, ok := validEnvironments[c.Environment]; !ok {
		return fmt.Errorf("%w: invalid Plaid environment: must be sandbox or production", ErrConfig)
	}
	return nil
}

// Validate ensures everything needed to fetch transactions is present.
func (c *Config) Validate() error {
	if err := c.validateCredentials(); err != nil {
		return err
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", ErrConfig)
	}
	return nil
}

// rawTransaction is the subset of a Plaid transaction the ledger uses.
type rawTransaction struct {
	ID       string
	Date     string
	Name     string
	Merchant string
	Category []string
	Amount   float64
}

func fromPlaid(pt plaid.Transaction) rawTransaction {
	return rawTransaction{
		ID:       pt.GetTransactionId(),
		Date:     pt.GetDate(),
		Name:     pt.GetName(),
		Merchant: pt.GetMerchantName(),
		Category: pt.GetCategory(),
		Amount:   pt.GetAmount(),
	}
}

// pageFunc fetches one page of transactions and the total available.
type pageFunc func(ctx context.Context, start, end string, offset int32) ([]rawTransaction, int32, error)

// Client implements TransactionFetcher against the Plaid API.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	fetchPage   pageFunc
	retryOpts   service.RetryOptions
	accessToken string
	environment string
}

var _ TransactionFetcher = (*Client)(nil)

// NewClient creates a Plaid client. The access token may be empty when the
// client is only used for the Link token exchange.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validateCredentials(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	configuration.UseEnvironment(validEnvironments[cfg.Environment])

	c := &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		environment: cfg.Environment,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
	c.fetchPage = c.apiPage
	return c, nil
}

func (c *Client) apiPage(ctx context.Context, start, end string, offset int32) ([]rawTransaction, int32, error) {
	request := plaid.NewTransactionsGetRequest(c.accessToken, start, end)
	request.SetOptions(plaid.TransactionsGetRequestOptions{
		Count:  plaid.PtrInt32(pageSize),
		Offset: plaid.PtrInt32(offset),
	})

	resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, 0, c.classify(err)
	}

	page := make([]rawTransaction, 0, len(resp.GetTransactions()))
	for _, pt := range resp.GetTransactions() {
		page = append(page, fromPlaid(pt))
	}
	return page, resp.GetTotalTransactions(), nil
}

// classify turns Plaid API failures into retryable or permanent errors.
func (c *Client) classify(err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return common.Transient(fmt.Errorf("plaid request failed: %w", err))
	}
	if plaidErr.ErrorCode == rateLimitCode {
		c.logger.Warn("rate limit hit, will retry", "error", plaidErr.ErrorMessage)
		return common.Transient(fmt.Errorf("%w: %s", common.ErrRateLimit, plaidErr.ErrorMessage))
	}
	return common.Permanent(fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage))
}

// GetTransactions fetches every transaction in [startDate, endDate], page by
// page, and maps them for import. Zero-amount rows are dropped.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.ImportedTransaction, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("%w: start date must be before end date", common.ErrInvalidDate)
	}

	start, end := model.FormatDate(startDate), model.FormatDate(endDate)
	c.logger.Info("fetching transactions from plaid", "start_date", start, "end_date", end)

	var all []rawTransaction
	for offset := int32(0); ; {
		var (
			page  []rawTransaction
			total int32
		)
		err := common.WithRetry(ctx, func() error {
			var pageErr error
			page, total, pageErr = c.fetchPage(ctx, start, end, offset)
			return pageErr
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		offset += int32(len(page))
		c.logger.Debug("fetched transaction page", "count", len(page), "offset", offset, "total", total)

		if len(page) == 0 || offset >= total {
			break
		}
	}

	out := make([]model.ImportedTransaction, 0, len(all))
	for _, raw := range all {
		txn, ok := c.mapTransaction(raw)
		if ok {
			out = append(out, txn)
		}
	}

	c.logger.Info("fetched plaid transactions", "fetched", len(all), "importable", len(out))
	return out, nil
}

// mapTransaction converts a Plaid row. Plaid reports money leaving the
// account as positive, so positive amounts are expenses.
func (c *Client) mapTransaction(raw rawTransaction) (model.ImportedTransaction, bool) {
	date, err := model.ParseDate(raw.Date)
	if err != nil {
		c.logger.Warn("skipping plaid transaction with bad date", "id", raw.ID, "date", raw.Date)
		return model.ImportedTransaction{}, false
	}

	amount := decimal.NewFromFloat(raw.Amount).Round(2)
	if amount.IsZero() {
		return model.ImportedTransaction{}, false
	}

	txnType := model.CategoryTypeExpense
	if amount.IsNegative() {
		txnType = model.CategoryTypeIncome
	}

	description := raw.Merchant
	if description == "" {
		description = raw.Name
	}

	var hint string
	if len(raw.Category) > 0 {
		hint = raw.Category[len(raw.Category)-1]
	}

	return model.ImportedTransaction{
		Date:         date,
		Amount:       amount.Abs(),
		Description:  cleanDescription(description),
		ExternalID:   raw.ID,
		CategoryHint: hint,
		Type:         txnType,
	}, true
}

// cleanDescription collapses whitespace and drops a trailing reference
// number such as "ACME 123456789".
func cleanDescription(s string) string {
	parts := strings.Fields(s)
	if n := len(parts); n > 1 && len(parts[n-1]) > 5 && isAllDigits(parts[n-1]) {
		parts = parts[:n-1]
	}
	return strings.Join(parts, " ")
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// CreateLinkToken creates a Link token for connecting a bank in Plaid Link.
func (c *Client) CreateLinkToken(ctx context.Context) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: "fintrack-" + uuid.NewString(),
	}

	request := plaid.NewLinkTokenCreateRequest(
		"fintrack",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := c.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", c.classify(err)
	}
	return resp.GetLinkToken(), nil
}

// ExchangePublicToken swaps a Link public token for an access token and item id.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := c.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", c.classify(err)
	}
	return resp.GetAccessToken(), resp.GetItemId(), nil
}
