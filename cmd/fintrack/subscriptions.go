package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/spf13/cobra"
)

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Manage recurring transactions",
		Long: `Track recurring income and expenses. Nothing is recorded automatically;
run 'fintrack subscriptions post' to record every occurrence that has come due.`,
	}

	cmd.AddCommand(addSubscriptionCmd())
	cmd.AddCommand(listSubscriptionsCmd())
	cmd.AddCommand(deleteSubscriptionCmd())
	cmd.AddCommand(dueSubscriptionsCmd())
	cmd.AddCommand(postSubscriptionsCmd())

	return cmd
}

func addSubscriptionCmd() *cobra.Command {
	var typeFlag, frequency, nextDue string

	cmd := &cobra.Command{
		Use:     "add <name> <amount> <category>",
		Short:   "Add a subscription",
		Example: `  fintrack subs add Netflix 15.99 Entertainment --frequency monthly --next-due 2024-04-01`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryType, err := ledger.ParseType(typeFlag)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if nextDue == "" {
					nextDue = model.FormatDate(a.reports.Today())
				}
				id, err := a.book.Add(ctx, args[0], args[1], args[2], categoryType, frequency, nextDue)
				if err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added subscription %q, next due %s (id %d)", args[0], nextDue, id)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "Expense", "subscription type (Income or Expense)")
	cmd.Flags().StringVarP(&frequency, "frequency", "f", "Monthly", "Daily, Weekly, Monthly or Yearly")
	cmd.Flags().StringVar(&nextDue, "next-due", "", "first due date (yyyy-mm-dd), defaults to today")
	return cmd
}

func listSubscriptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				subs, err := a.book.List(ctx)
				if err != nil {
					return err
				}
				return writeSubscriptions(ctx, cmd, a, subs, "No subscriptions.")
			})
		},
	}
}

func writeSubscriptions(ctx context.Context, cmd *cobra.Command, a *app, subs []model.Subscription, empty string) error {
	if len(subs) == 0 {
		printLine(cmd.OutOrStdout(), cli.InfoStyle.Render(empty))
		return nil
	}
	currency, err := a.settings.Currency(ctx)
	if err != nil {
		return err
	}
	return cli.WriteSubscriptions(cmd.OutOrStdout(), currency, subs)
}

func deleteSubscriptionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subscription",
		Long:  `Delete a subscription. Transactions it already posted are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.book.Delete(ctx, id); err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted subscription %d", id)))
				return nil
			})
		},
	}
}

// asOfDate parses an --as-of flag, defaulting to today.
func asOfDate(a *app, s string) (time.Time, error) {
	if s == "" {
		return model.Day(a.reports.Today()), nil
	}
	return ledger.ParseDate(s)
}

func dueSubscriptionsCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List subscriptions due on or before a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				day, err := asOfDate(a, asOf)
				if err != nil {
					return err
				}
				subs, err := a.book.Due(ctx, day)
				if err != nil {
					return err
				}
				return writeSubscriptions(ctx, cmd, a, subs, "Nothing due as of "+model.FormatDate(day)+".")
			})
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "cutoff date (yyyy-mm-dd), defaults to today")
	return cmd
}

func postSubscriptionsCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Record every due occurrence as a transaction",
		Long: `Record one transaction per missed period for every subscription due on or
before the cutoff, then advance each next due date past it. All postings
are written together or not at all.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				day, err := asOfDate(a, asOf)
				if err != nil {
					return err
				}
				result, err := a.book.Post(ctx, day)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if result.Transactions == 0 && len(result.Skipped) == 0 {
					printLine(out, cli.FormatInfo("Nothing due as of "+model.FormatDate(day)))
					return nil
				}
				for _, p := range result.Posted {
					printLine(out, fmt.Sprintf("  %s: %d posted, next due %s", p.Subscription.Name, p.Occurrences, model.FormatDate(p.NextDue)))
				}
				for _, s := range result.Skipped {
					printLine(out, cli.FormatWarning(fmt.Sprintf("Skipped %q: its category was deleted", s.Name)))
				}
				printLine(out, cli.FormatSuccess(fmt.Sprintf("Recorded %d transactions", result.Transactions)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "cutoff date (yyyy-mm-dd), defaults to today")
	return cmd
}
