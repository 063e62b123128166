package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/Veraticus/fintrack/internal/tui"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summaries, breakdowns and trends",
	}

	cmd.AddCommand(totalsCmd())
	cmd.AddCommand(overviewCmd())
	cmd.AddCommand(breakdownCmd())
	cmd.AddCommand(monthlyCmd())
	cmd.AddCommand(trendCmd())
	cmd.AddCommand(recentCmd())

	return cmd
}

func totalsCmd() *cobra.Command {
	var rng rangeFlags

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Income, expense and balance for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				window, err := rng.resolve(a.reports.Today())
				if err != nil {
					return err
				}
				totals, err := a.reports.Totals(ctx, window.Start, window.End)
				if err != nil {
					return err
				}
				currency, err := a.settings.Currency(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printLine(out, cli.FormatTitle(window.String()))
				printLine(out, cli.RenderTotals(currency, totals))
				return nil
			})
		},
	}

	rng.register(cmd)
	return cmd
}

func overviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "All-time income, expense and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				totals, err := a.reports.Overview(ctx)
				if err != nil {
					return err
				}
				currency, err := a.settings.Currency(ctx)
				if err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.RenderTotals(currency, totals))
				return nil
			})
		},
	}
}

func breakdownCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "All-time totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categoryType, err := parseOptionalType(typeFlag)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				totals, err := a.reports.CategoryBreakdown(ctx, categoryType)
				if err != nil {
					return err
				}
				if len(totals) == 0 {
					printLine(cmd.OutOrStdout(), cli.InfoStyle.Render("Nothing recorded yet."))
					return nil
				}
				currency, err := a.settings.Currency(ctx)
				if err != nil {
					return err
				}
				return cli.WriteCategoryTotals(cmd.OutOrStdout(), currency, totals)
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "Expense", "Income or Expense")
	return cmd
}

func monthlyCmd() *cobra.Command {
	var (
		typeFlag string
		months   int
	)

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Totals per calendar month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categoryType, err := parseOptionalType(typeFlag)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				series, err := a.reports.MonthlySeries(ctx, categoryType, months)
				if err != nil {
					return err
				}
				currency, err := a.settings.Currency(ctx)
				if err != nil {
					return err
				}
				return cli.WriteMonthTotals(cmd.OutOrStdout(), currency, series)
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "Expense", "Income or Expense")
	cmd.Flags().IntVarP(&months, "months", "m", report.DefaultMonthsBack, "months before the current one to include")
	return cmd
}

func trendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Compare this month's spending with last month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				trend, err := a.reports.Trend(ctx, a.reports.Today())
				if err != nil {
					return err
				}
				currency, err := a.settings.Currency(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printLine(out, cli.LabelStyle.Render("This month")+cli.FormatMoney(currency, trend.ThisMonth))
				printLine(out, cli.LabelStyle.Render("Last month")+cli.FormatMoney(currency, trend.LastMonth))
				printLine(out, cli.LabelStyle.Render("Trend")+cli.FormatTrend(trend))
				return nil
			})
		},
	}
}

func recentCmd() *cobra.Command {
	var (
		rng   rangeFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Latest transactions in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				window, err := rng.resolve(a.reports.Today())
				if err != nil {
					return err
				}
				txns, err := a.reports.RecentActivity(ctx, window.Start, window.End, limit)
				if err != nil {
					return err
				}
				if len(txns) == 0 {
					printLine(cmd.OutOrStdout(), cli.InfoStyle.Render("No transactions in "+window.String()))
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
	cmd.Flags().IntVarP(&limit, "limit", "n", report.DefaultRecentLimit, "maximum number of transactions")
	return cmd
}

func dashboardCmd() *cobra.Command {
	var (
		rng         rangeFlags
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Overview of a date range",
		Long: `Show totals, savings rate, net worth, goal progress, recent activity,
the last months of spending and a category breakdown for one range.

With --interactive the dashboard runs full screen; press tab to cycle
ranges, r to refresh and q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				sel, err := rng.selected()
				if err != nil {
					return err
				}
				window, err := rng.resolve(a.reports.Today())
				if err != nil {
					return err
				}

				if interactive {
					return tui.Run(ctx, tui.Config{
						Reports:      a.reports,
						Transactions: a.ledger,
						Selector:     sel,
						CustomStart:  model.FormatDate(window.Start),
						CustomEnd:    model.FormatDate(window.End),
					})
				}

				dash, err := a.reports.Dashboard(ctx, window)
				if err != nil {
					return fmt.Errorf("failed to build dashboard: %w", err)
				}
				printLine(cmd.OutOrStdout(), cli.RenderDashboard(dash))
				return nil
			})
		},
	}

	rng.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "run the interactive dashboard")
	return cmd
}
