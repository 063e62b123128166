package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the currency and savings goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				currency, err := a.settings.Currency(ctx)
				if err != nil {
					return err
				}
				goal, ok, err := a.settings.SavingsGoal(ctx)
				if err != nil {
					return err
				}

				goalText := cli.SubtleStyle.Render("not set")
				if ok {
					goalText = cli.FormatMoney(currency, goal)
				}
				out := cmd.OutOrStdout()
				printLine(out, cli.LabelStyle.Render("Currency")+currency)
				printLine(out, cli.LabelStyle.Render("Savings goal")+goalText)
				return nil
			})
		},
	}

	cmd.AddCommand(currencyCmd())
	cmd.AddCommand(goalCmd())
	return cmd
}

func currencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currency <code>",
		Short: "Set the display currency",
		Long: fmt.Sprintf(`Set the currency amounts are displayed in. Amounts are not converted.

Supported: %s`, strings.Join(model.SupportedCurrencies, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.settings.SetCurrency(ctx, args[0]); err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess("Currency set to "+strings.ToUpper(strings.TrimSpace(args[0]))))
				return nil
			})
		},
	}
}

func goalCmd() *cobra.Command {
	var clearGoal bool

	cmd := &cobra.Command{
		Use:   "goal [amount]",
		Short: "Set or clear the savings goal",
		Args: func(cmd *cobra.Command, args []string) error {
			if clearGoal {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if clearGoal {
					if err := a.settings.ClearSavingsGoal(ctx); err != nil {
						return err
					}
					printLine(cmd.OutOrStdout(), cli.FormatSuccess("Savings goal cleared"))
					return nil
				}

				if err := a.settings.SetSavingsGoal(ctx, args[0]); err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess("Savings goal set to "+strings.TrimSpace(args[0])))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearGoal, "clear", false, "remove the savings goal")
	return cmd
}
