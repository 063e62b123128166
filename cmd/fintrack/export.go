package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/sheets"
	"github.com/spf13/cobra"
)

// sheetsWriter is what export needs from the Sheets writer.
type sheetsWriter interface {
	sheets.ReportWriter
	SpreadsheetID() string
}

var newSheetsWriter = func(ctx context.Context, cfg sheets.Config) (sheetsWriter, error) {
	w, err := sheets.NewWriter(ctx, cfg, slog.Default().With("component", "sheets"))
	if err != nil {
		return nil, err
	}
	return w, nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports",
	}

	cmd.AddCommand(exportSheetsCmd())
	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var rng rangeFlags

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write a dashboard and its transactions to Google Sheets",
		Long: `Write the dashboard summary and every transaction in the range to a
Google Sheets spreadsheet, replacing what the report sheet held before.

Authenticate once with 'fintrack export sheets auth', or point
sheets.service_account_path at a service account key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := appConfig.SheetsWriterConfig()
			if err := cfg.Validate(); err != nil {
				return common.NewUserError("google sheets is not configured", err)
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				window, err := rng.resolve(a.reports.Today())
				if err != nil {
					return err
				}
				r, err := buildSheetsReport(ctx, a, window)
				if err != nil {
					return err
				}

				writer, err := newSheetsWriter(ctx, cfg)
				if err != nil {
					return err
				}
				if err := writer.Write(ctx, r); err != nil {
					return fmt.Errorf("failed to export to sheets: %w", err)
				}

				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions for %s", len(r.Transactions), window)))
				if id := writer.SpreadsheetID(); id != "" {
					printLine(cmd.OutOrStdout(), "https://docs.google.com/spreadsheets/d/"+id)
				}
				return nil
			})
		},
	}

	rng.register(cmd)
	cmd.AddCommand(sheetsAuthCmd())
	return cmd
}

func buildSheetsReport(ctx context.Context, a *app, window model.DateRange) (*sheets.Report, error) {
	dash, err := a.reports.Dashboard(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	txns, err := a.ledger.ListInRange(ctx, window.Start, window.End, "")
	if err != nil {
		return nil, err
	}
	return &sheets.Report{Dashboard: dash, Transactions: txns}, nil
}

func sheetsAuthCmd() *cobra.Command {
	var clientID, clientSecret, addr string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Sheets",
		Long: `Run the OAuth consent flow in your browser and save the resulting token
to sheets.token_file, where export picks it up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := appConfig.SheetsWriterConfig()
			if clientID != "" {
				cfg.ClientID = clientID
			}
			if clientSecret != "" {
				cfg.ClientSecret = clientSecret
			}

			out := cmd.OutOrStdout()
			_, err := sheets.Authorize(cmd.Context(), sheets.AuthOptions{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				CallbackAddr: addr,
				TokenFile:    cfg.TokenFile,
				ShowURL: func(url string) {
					printLine(out, cli.FormatInfo("Open this URL in your browser to authorize access:"))
					printLine(out, url)
				},
			})
			if err != nil {
				return err
			}

			printLine(out, cli.FormatSuccess("Authorized. Token saved to "+cfg.TokenFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id (overrides config)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret (overrides config)")
	cmd.Flags().StringVar(&addr, "callback-addr", sheets.DefaultCallbackAddr, "local address for the OAuth callback")
	return cmd
}
