package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and edit transactions",
	}

	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", common.ErrInvalidField, s)
	}
	return id, nil
}

func addTransactionCmd() *cobra.Command {
	var typeFlag, date, description string

	cmd := &cobra.Command{
		Use:   "add <amount> <category>",
		Short: "Record a transaction",
		Example: `  fintrack tx add 1200 Salary --type income
  fintrack tx add 42.50 Food --date 2024-03-02 --desc "weekly groceries"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryType, err := ledger.ParseType(typeFlag)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if date == "" {
					date = model.FormatDate(a.reports.Today())
				}
				id, err := a.ledger.Add(ctx, args[0], args[1], categoryType, date, description)
				if err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s in %s on %s (id %d)",
					strings.ToLower(string(categoryType)), args[0], args[1], date, id)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "Expense", "transaction type (Income or Expense)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "transaction date (yyyy-mm-dd), defaults to today")
	cmd.Flags().StringVar(&description, "desc", "", "optional description")
	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var (
		rng      rangeFlags
		typeFlag string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categoryType, err := parseOptionalType(typeFlag)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				var txns []model.Transaction
				if all {
					txns, err = a.ledger.List(ctx)
					if err == nil && categoryType != "" {
						txns = filterType(txns, categoryType)
					}
				} else {
					var window model.DateRange
					if window, err = rng.resolve(a.reports.Today()); err != nil {
						return err
					}
					txns, err = a.ledger.ListInRange(ctx, window.Start, window.End, categoryType)
				}
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", err)
				}

				if len(txns) == 0 {
					printLine(cmd.OutOrStdout(), cli.InfoStyle.Render("No transactions found."))
					return nil
				}

				currency, err := a.settings.Currency(ctx)
				if err != nil {
					return err
				}
				return cli.WriteTransactions(cmd.OutOrStdout(), currency, txns)
			})
		},
	}

	rng.register(cmd)
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "only list Income or Expense")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every transaction regardless of date")
	return cmd
}

func filterType(txns []model.Transaction, categoryType model.CategoryType) []model.Transaction {
	out := txns[:0]
	for _, t := range txns {
		if t.Type == categoryType {
			out = append(out, t)
		}
	}
	return out
}

func updateTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <field> <value>",
		Short: "Edit one field of a transaction",
		Long: `Edit one field of a transaction. Field is one of type, category, amount,
date or description.

Changing the type moves the transaction to the first category of the new
type; changing the category must name a category of the transaction's type.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			field := model.TransactionField(strings.ToLower(args[1]))

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.ledger.Update(ctx, id, field, args[2]); err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s of transaction %d", field, id)))
				return nil
			})
		},
	}
}

func deleteTransactionCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				txn, err := a.ledger.Get(ctx, id)
				if err != nil {
					return err
				}
				currency, err := a.settings.Currency(ctx)
				if err != nil {
					return err
				}

				ok, err := confirm(cmd, yes, fmt.Sprintf("Delete %s %s on %s?",
					strings.ToLower(string(txn.Type)), cli.FormatMoney(currency, txn.Amount), model.FormatDate(txn.Date)))
				if err != nil {
					return err
				}
				if !ok {
					printLine(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted."))
					return nil
				}

				if err := a.ledger.Delete(ctx, id); err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

