package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/config"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/Veraticus/fintrack/internal/storage"
	"github.com/spf13/cobra"
)

// databasePath returns the configured database path, falling back to the
// default location when configuration has not been loaded.
func databasePath() string {
	if appConfig != nil && appConfig.Database.Path != "" {
		return appConfig.Database.Path
	}
	return config.DefaultDatabasePath()
}

// initStorage opens the database and brings it up to date. Seeding is
// insert-if-absent so it runs every time.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := store.Seed(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return store, nil
}

// app wires every ledger component to one open store.
type app struct {
	store    *storage.SQLiteStorage
	registry *ledger.Registry
	ledger   *ledger.Ledger
	settings *ledger.Settings
	book     *ledger.Book
	reports  *report.Engine
}

func openApp(ctx context.Context) (*app, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}
	return &app{
		store:    store,
		registry: ledger.NewRegistry(store),
		ledger:   ledger.NewLedger(store),
		settings: ledger.NewSettings(store),
		book:     ledger.NewBook(store),
		reports:  report.NewEngine(store),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp opens the database for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(ctx, a)
}

// rangeFlags selects a reporting window on the command line.
type rangeFlags struct {
	selector string
	from     string
	to       string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	names := make([]string, 0, len(report.Selectors))
	for _, s := range report.Selectors[:len(report.Selectors)-1] {
		names = append(names, strings.ToLower(string(s)))
	}
	cmd.Flags().StringVarP(&r.selector, "range", "r", string(report.ThisMonth),
		fmt.Sprintf("reporting window (%s)", strings.Join(names, ", ")))
	cmd.Flags().StringVar(&r.from, "from", "", "custom range start (yyyy-mm-dd)")
	cmd.Flags().StringVar(&r.to, "to", "", "custom range end (yyyy-mm-dd), defaults to today")
}

// selected returns the selector, switching to Custom when dates are given.
func (r *rangeFlags) selected() (report.Selector, error) {
	if r.from != "" || r.to != "" {
		return report.CustomRange, nil
	}
	sel, ok := report.ParseSelector(r.selector)
	if !ok {
		return "", fmt.Errorf("%w: unknown range %q", common.ErrInvalidField, r.selector)
	}
	return sel, nil
}

// resolve turns the flags into concrete dates. Unlike report.ResolveRange,
// unparseable custom dates are an error here.
func (r *rangeFlags) resolve(today time.Time) (model.DateRange, error) {
	sel, err := r.selected()
	if err != nil {
		return model.DateRange{}, err
	}
	if sel != report.CustomRange {
		return report.ResolveRange(string(sel), today, "", ""), nil
	}

	from, to := r.from, r.to
	if to == "" {
		to = model.FormatDate(today)
	}
	if from == "" {
		return model.DateRange{}, fmt.Errorf("%w: --from is required with --to or --range custom", common.ErrInvalidDate)
	}
	if _, err := ledger.ParseDate(from); err != nil {
		return model.DateRange{}, err
	}
	if _, err := ledger.ParseDate(to); err != nil {
		return model.DateRange{}, err
	}
	return report.ResolveRange(string(report.CustomRange), today, from, to), nil
}

// parseOptionalType parses a --type flag where empty means both types.
func parseOptionalType(s string) (model.CategoryType, error) {
	if s == "" {
		return "", nil
	}
	return ledger.ParseType(s)
}

// confirm asks a yes/no question on the command's streams unless skip is set.
func confirm(cmd *cobra.Command, skip bool, question string) (bool, error) {
	if skip {
		return true, nil
	}
	reader := cli.NewLineReader(cmd.InOrStdin())
	return cli.Confirm(cmd.Context(), reader, cmd.OutOrStdout(), question)
}

func printLine(w io.Writer, s string) {
	_, _ = fmt.Fprintln(w, s)
}
