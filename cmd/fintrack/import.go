package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/ofx"
	"github.com/Veraticus/fintrack/internal/pattern"
	"github.com/Veraticus/fintrack/internal/plaid"
	"github.com/spf13/cobra"
)

// importOptions are shared by every import source.
type importOptions struct {
	rules           *pattern.Matcher
	incomeCategory  string
	expenseCategory string
	dryRun          bool
}

func (o *importOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.incomeCategory, "income-category", "",
		"category for income rows without a matching hint (default from config, else Salary)")
	cmd.Flags().StringVar(&o.expenseCategory, "expense-category", "",
		"category for expense rows without a matching hint (default from config, else Miscellaneous)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "show what would be imported without saving")
}

// prepare fills in configured defaults and compiles the import rules.
func (o *importOptions) prepare() error {
	if appConfig == nil {
		return nil
	}
	defaults := appConfig.ImportDefaults()
	if o.incomeCategory == "" {
		o.incomeCategory = defaults.IncomeCategory
	}
	if o.expenseCategory == "" {
		o.expenseCategory = defaults.ExpenseCategory
	}

	rules, err := appConfig.ImportMatcher()
	if err != nil {
		return err
	}
	if rules.Len() > 0 {
		o.rules = rules
	}
	return nil
}

func (o *importOptions) defaults() ledger.ImportDefaults {
	return ledger.ImportDefaults{IncomeCategory: o.incomeCategory, ExpenseCategory: o.expenseCategory}
}

// classify applies the import rules, which take precedence over source hints.
func (o *importOptions) classify(rows []model.ImportedTransaction) {
	if o.rules == nil {
		return
	}
	matched := o.rules.Apply(rows)
	slog.Debug("applied import rules", "rows", len(rows), "matched", matched)
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank statements or Plaid",
		Long: `Import transactions from OFX/QFX statement files or from a bank linked
through Plaid. Rows are filed under the category named by their hint when
one of the right type exists, otherwise under the default category for
their type. Rows already imported are skipped, so imports can be re-run.`,
	}

	cmd.AddCommand(importOFXCmd())
	cmd.AddCommand(plaidCmd())
	return cmd
}

func importOFXCmd() *cobra.Command {
	var (
		opts        importOptions
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "ofx <files or directories...>",
		Short: "Import OFX/QFX statement files",
		Example: `  fintrack import ofx ~/Downloads/chase_jan_2024.qfx
  fintrack import ofx ~/Downloads/*.qfx
  fintrack import ofx ~/Statements --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.prepare(); err != nil {
				return err
			}
			files, err := expandStatementPaths(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return common.NewUserError("no OFX or QFX files found", nil)
			}

			ctx := cmd.Context()
			slog.Info("parsing statement files", "files", len(files), "dry_run", opts.dryRun)

			results, err := ofx.NewParser().ParseFiles(ctx, files, parallelism)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				return importStatements(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), a, results, opts)
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVarP(&parallelism, "parallel", "p", ofx.DefaultParallelism, "files parsed concurrently")
	return cmd
}

var statementExtensions = map[string]bool{".ofx": true, ".qfx": true}

// expandStatementPaths resolves globs and directories into a sorted list of
// statement files. Explicitly named files are kept whatever their extension.
func expandStatementPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("no files found matching pattern", "pattern", pattern)
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(match)
				continue
			}

			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, fmt.Errorf("failed to read directory %s: %w", match, err)
			}
			for _, e := range entries {
				if !e.IsDir() && statementExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
					add(filepath.Join(match, e.Name()))
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// importStatements stores each file's rows in its own database transaction
// so one bad file does not discard the others already imported.
func importStatements(ctx context.Context, out, progressOut io.Writer, a *app, results []ofx.FileResult, opts importOptions) error {
	for _, r := range results {
		opts.classify(r.Transactions)
	}

	if opts.dryRun {
		var rows []model.ImportedTransaction
		for _, r := range results {
			rows = append(rows, r.Transactions...)
		}
		return previewImport(ctx, out, a, rows)
	}

	progress := cli.NewProgress(progressOut, len(results), "Importing")
	var inserted, skipped int
	for _, r := range results {
		progress.Describe(filepath.Base(r.Path))
		result, err := a.ledger.Import(ctx, r.Transactions, opts.defaults())
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", r.Path, err)
		}
		inserted += result.Inserted
		skipped += result.Skipped
		progress.Step()
	}
	progress.Finish()

	printImportSummary(out, inserted, skipped)
	return nil
}

func printImportSummary(out io.Writer, inserted, skipped int) {
	printLine(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", inserted)))
	if skipped > 0 {
		printLine(out, cli.FormatInfo(fmt.Sprintf("Skipped %d already imported", skipped)))
	}
}

// previewImport prints rows as they would be recorded. Categories are shown
// as the raw hint since classification happens inside the import.
func previewImport(ctx context.Context, out io.Writer, a *app, rows []model.ImportedTransaction) error {
	if len(rows) == 0 {
		printLine(out, cli.InfoStyle.Render("No transactions found."))
		return nil
	}
	currency, err := a.settings.Currency(ctx)
	if err != nil {
		return err
	}

	preview := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		preview = append(preview, model.Transaction{
			Date:         r.Date,
			Amount:       r.Amount,
			Description:  r.Description,
			CategoryName: r.CategoryHint,
			ExternalID:   r.ExternalID,
			Type:         r.Type,
		})
	}
	if err := cli.WriteTransactions(out, currency, preview); err != nil {
		return err
	}
	printLine(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported", len(rows))))
	return nil
}

// newPlaidFetcher builds the transaction source used by sync.
var newPlaidFetcher = func(cfg plaid.Config) (plaid.TransactionFetcher, error) {
	client, err := plaid.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func plaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Sync transactions from a bank linked through Plaid",
		Long: `Sync transactions from Plaid. Credentials come from the plaid section of
the config file or FINTRACK_PLAID_* (or PLAID_*) environment variables.

Link a bank once with 'link-token' and 'exchange', then store the access
token as plaid.access_token.`,
	}

	cmd.AddCommand(plaidSyncCmd())
	cmd.AddCommand(plaidLinkTokenCmd())
	cmd.AddCommand(plaidExchangeCmd())
	return cmd
}

func plaidSyncCmd() *cobra.Command {
	var (
		opts     importOptions
		from, to string
		days     int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import transactions for a date window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := appConfig.PlaidClientConfig()
			if err := cfg.Validate(); err != nil {
				return common.NewUserError("plaid is not configured", err)
			}
			if err := opts.prepare(); err != nil {
				return err
			}
			fetcher, err := newPlaidFetcher(cfg)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				start, end, err := syncWindow(a.reports.Today(), from, to, days)
				if err != nil {
					return err
				}
				return syncTransactions(ctx, cmd.OutOrStdout(), a, fetcher, start, end, opts)
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "start date (yyyy-mm-dd)")
	cmd.Flags().StringVar(&to, "to", "", "end date (yyyy-mm-dd), defaults to today")
	cmd.Flags().IntVarP(&days, "days", "d", 30, "days back from the end date when --from is not set")
	return cmd
}

// syncWindow resolves the sync flags into an inclusive date window.
func syncWindow(today time.Time, from, to string, days int) (time.Time, time.Time, error) {
	end := model.Day(today)
	if to != "" {
		parsed, err := ledger.ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}

	if from != "" {
		start, err := ledger.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if start.After(end) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: --from %s is after --to %s", common.ErrInvalidDate, from, model.FormatDate(end))
		}
		return start, end, nil
	}

	if days <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: --days must be positive", common.ErrInvalidField)
	}
	return end.AddDate(0, 0, -days), end, nil
}

func syncTransactions(ctx context.Context, out io.Writer, a *app, fetcher plaid.TransactionFetcher, start, end time.Time, opts importOptions) error {
	rows, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}
	slog.Info("fetched transactions", "count", len(rows), "start", model.FormatDate(start), "end", model.FormatDate(end))
	opts.classify(rows)

	if opts.dryRun {
		return previewImport(ctx, out, a, rows)
	}

	result, err := a.ledger.Import(ctx, rows, opts.defaults())
	if err != nil {
		return err
	}
	printImportSummary(out, result.Inserted, result.Skipped)
	return nil
}

func plaidLinkTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link-token",
		Short: "Create a Plaid Link token for connecting a bank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := plaid.NewClient(appConfig.PlaidClientConfig())
			if err != nil {
				return common.NewUserError("plaid client id and secret are required", err)
			}
			token, err := client.CreateLinkToken(cmd.Context())
			if err != nil {
				return err
			}
			printLine(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func plaidExchangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <public-token>",
		Short: "Exchange a Link public token for an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := plaid.NewClient(appConfig.PlaidClientConfig())
			if err != nil {
				return common.NewUserError("plaid client id and secret are required", err)
			}
			accessToken, itemID, err := client.ExchangePublicToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printLine(out, cli.FormatSuccess("Bank linked (item "+itemID+")"))
			printLine(out, "Save the access token in your config as plaid.access_token:")
			printLine(out, accessToken)
			return nil
		},
	}
}
