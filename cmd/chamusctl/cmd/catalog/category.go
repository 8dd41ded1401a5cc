package catalog

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
)

// CategoryCmd is the parent command for category operations
var CategoryCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category"},
	Short:   "Manage museum categories",
}

var categoryDeleteYes bool

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		categories, err := a.Client().ListCategories(ctx)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to list categories", err, nil)
		}
		rows := [][]string{{"ID", "NAME"}}
		for _, c := range categories {
			rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name})
		}
		return cmdutil.Printer(cmd).Print(categories, rows)
	},
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		c, err := a.Client().CreateCategory(ctx, args[0])
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to create category", err, nil)
		}
		pterm.Success.Printf("Category %q created\n", args[0])
		return printResult(cmd, c)
	},
}

var categoryUpdateCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cmdutil.ParseID(args[0])
		if err != nil {
			return err
		}
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		c, err := a.Client().UpdateCategory(ctx, id, args[1])
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to rename category", err, nil)
		}
		pterm.Success.Printf("Category %d renamed to %q\n", id, args[1])
		return printResult(cmd, c)
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cmdutil.ParseID(args[0])
		if err != nil {
			return err
		}
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ok, err := cmdutil.Confirm(cmd, fmt.Sprintf("Delete category %d?", id), categoryDeleteYes)
		if err != nil || !ok {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		if err := a.Client().DeleteCategory(ctx, id); err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to delete category", err, nil)
		}
		pterm.Success.Printf("Category %d deleted\n", id)
		return nil
	},
}

func init() {
	categoryDeleteCmd.Flags().BoolVarP(&categoryDeleteYes, "yes", "y", false, "Skip the confirmation prompt")

	CategoryCmd.AddCommand(categoryListCmd)
	CategoryCmd.AddCommand(categoryCreateCmd)
	CategoryCmd.AddCommand(categoryUpdateCmd)
	CategoryCmd.AddCommand(categoryDeleteCmd)
}
