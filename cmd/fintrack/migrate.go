package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the ledger database up to the current schema",
		Long: `Create or upgrade the ledger database and seed the default categories.
Other commands migrate on open, so this is mainly useful after an upgrade
or with --status to inspect a database without touching it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := databasePath()
			if status {
				return printSchemaStatus(cmd, path)
			}

			slog.Info("migrating ledger", "database", path)
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			printLine(cmd.OutOrStdout(), cli.FormatSuccess("Database is up to date: "+path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show the schema version without migrating")
	return cmd
}

func printSchemaStatus(cmd *cobra.Command, path string) error {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	row := func(label, value string) { printLine(out, cli.LabelStyle.Render(label)+value) }
	row("Database", path)
	row("Schema version", fmt.Sprintf("%d of %d", current, storage.ExpectedSchemaVersion))
	return nil
}
