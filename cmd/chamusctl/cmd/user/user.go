package user

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/config"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// UserCmd is the parent command for administrator account operations
var UserCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage administrator accounts",
}

var (
	userForm struct {
		name     string
		email    string
		password bool
	}
	userDeleteYes bool
)

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List administrator accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		users, err := a.Client().ListUsers(ctx)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to list users", err, nil)
		}
		var self int64
		if u := a.User(); u != nil {
			self = u.ID
		}
		rows := [][]string{{"ID", "NAME", "EMAIL", "CREATED"}}
		for _, u := range users {
			name := u.Name
			if u.ID == self {
				name += " (you)"
			}
			rows = append(rows, []string{strconv.FormatInt(u.ID, 10), name, u.Email, u.CreatedAt})
		}
		return cmdutil.Printer(cmd).Print(users, rows)
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator account",
	Long:  `Creates an account. The password is prompted for twice, or read from CHAMUS_NEW_PASSWORD in non-interactive mode.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		in := sdk.UserInput{Name: userForm.name, Email: userForm.email}
		in.Password, in.PasswordConfirmation, err = readNewPassword(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()
		u, err := a.Client().CreateUser(ctx, in)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to create user", err, nil)
		}
		pterm.Success.Printf("User %s created\n", in.Email)
		return printResult(cmd, u)
	},
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an administrator account",
	Long:  `Updates name and email. Pass --password to also set a new password.`,
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
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		users, err := a.Client().ListUsers(ctx)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to load user", err, nil)
		}
		var in *sdk.UserInput
		for _, u := range users {
			if u.ID == id {
				in = &sdk.UserInput{Name: u.Name, Email: u.Email}
				break
			}
		}
		if in == nil {
			return fmt.Errorf("user %d not found", id)
		}
		if cmd.Flags().Changed("name") {
			in.Name = userForm.name
		}
		if cmd.Flags().Changed("email") {
			in.Email = userForm.email
		}
		if userForm.password {
			in.Password, in.PasswordConfirmation, err = readNewPassword(cmd)
			if err != nil {
				return err
			}
		}

		u, err := a.Client().UpdateUser(ctx, id, *in)
		if err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to update user", err, nil)
		}
		pterm.Success.Printf("User %d updated\n", id)
		return printResult(cmd, u)
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an administrator account",
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
		if u := a.User(); u != nil && u.ID == id {
			return errors.New("refusing to delete the account of the current session")
		}
		ok, err := cmdutil.Confirm(cmd, fmt.Sprintf("Delete user %d?", id), userDeleteYes)
		if err != nil || !ok {
			return err
		}
		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()

		if err := a.Client().DeleteUser(ctx, id); err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "failed to delete user", err, nil)
		}
		pterm.Success.Printf("User %d deleted\n", id)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{userCreateCmd, userUpdateCmd} {
		c.Flags().StringVar(&userForm.name, "name", "", "Full name")
		c.Flags().StringVar(&userForm.email, "email", "", "Email address")
	}
	userUpdateCmd.Flags().BoolVar(&userForm.password, "password", false, "Prompt for a new password")
	userDeleteCmd.Flags().BoolVarP(&userDeleteYes, "yes", "y", false, "Skip the confirmation prompt")

	UserCmd.AddCommand(userListCmd)
	UserCmd.AddCommand(userCreateCmd)
	UserCmd.AddCommand(userUpdateCmd)
	UserCmd.AddCommand(userDeleteCmd)
}

// readNewPassword prompts for a password and its confirmation.
func readNewPassword(cmd *cobra.Command) (string, string, error) {
	if config.MustFromContext(cmd.Context()).NonInteractive {
		pw := os.Getenv("CHAMUS_NEW_PASSWORD")
		if pw == "" {
			return "", "", errors.New("CHAMUS_NEW_PASSWORD is required in non-interactive mode")
		}
		return pw, pw, nil
	}

	input := pterm.DefaultInteractiveTextInput.WithMask("*")
	pw, err := input.Show("New password")
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := input.Show("Confirm password")
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return pw, confirm, nil
}

func printResult[T any](cmd *cobra.Command, v *T) error {
	printer := cmdutil.Printer(cmd)
	if !printer.Structured() || v == nil {
		return nil
	}
	return printer.Print(v, nil)
}
