package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage income and expense categories",
		Long:    `List, add, rename, retype and delete the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(renameCategoryCmd())
	cmd.AddCommand(retypeCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categoryType, err := parseOptionalType(typeFlag)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				cats, err := a.registry.List(ctx, categoryType)
				if err != nil {
					return fmt.Errorf("failed to list categories: %w", err)
				}
				if len(cats) == 0 {
					printLine(cmd.OutOrStdout(), cli.InfoStyle.Render("No categories found. Use 'fintrack categories add' to create one."))
					return nil
				}
				return cli.WriteCategories(cmd.OutOrStdout(), cats)
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "only list Income or Expense categories")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryType, err := ledger.ParseType(typeFlag)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				cat, err := a.registry.Add(ctx, args[0], categoryType)
				if err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s category %q (id %d)", cat.Type, cat.Name, cat.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "Expense", "category type (Income or Expense)")
	return cmd
}

func renameCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a category",
		Long: `Rename a category. Transactions and subscriptions filed under it follow
the new name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				cat, err := a.registry.Lookup(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.registry.Rename(ctx, cat.ID, args[1]); err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Renamed %q to %q", cat.Name, args[1])))
				return nil
			})
		},
	}
}

func retypeCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retype <name> <Income|Expense>",
		Short: "Change a category's type",
		Long: `Change whether a category holds income or expenses. Existing transactions
keep the type they were recorded with.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryType, err := ledger.ParseType(args[1])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				cat, err := a.registry.Lookup(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.registry.Retype(ctx, cat.ID, categoryType); err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%q is now an %s category", cat.Name, categoryType)))
				return nil
			})
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	var (
		policyFlag string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Long: `Delete a category. What happens to transactions filed under it depends
on --policy:

  orphan   keep them; they show as (uncategorized)
  block    refuse while anything references the category
  cascade  delete them and any subscriptions using the category`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := ledger.ParseDeletePolicy(policyFlag)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				cat, err := a.registry.Lookup(ctx, args[0])
				if err != nil {
					return err
				}

				usage, err := a.registry.Usage(ctx, cat.ID)
				if err != nil {
					return err
				}
				if usage.InUse() && policy == ledger.DeleteCascade {
					ok, err := confirm(cmd, yes, fmt.Sprintf("Delete %q with %d transactions and %d subscriptions?",
						cat.Name, usage.Transactions, usage.Subscriptions))
					if err != nil {
						return err
					}
					if !ok {
						printLine(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted."))
						return nil
					}
				}

				result, err := a.registry.Delete(ctx, cat.ID, policy)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printLine(out, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", result.Category.Name)))
				switch {
				case result.CascadedTransactions > 0:
					printLine(out, cli.FormatInfo(fmt.Sprintf("Deleted %d transactions", result.CascadedTransactions)))
				case result.Orphaned() > 0:
					printLine(out, cli.FormatWarning(fmt.Sprintf("%d transactions are now uncategorized", result.Orphaned())))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&policyFlag, "policy", "orphan", "what to do with references (orphan, block, cascade)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
