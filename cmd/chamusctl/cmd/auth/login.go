package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/config"
)

var (
	email         string
	password      string
	passwordStdin bool
	force         bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the catalog API",
	Long: `Exchanges an administrator email and password for a session token and stores
it in ~/.chamus/credentials.json. Every later command sends the token as a
bearer credential until it is rejected or 'chamusctl auth logout' runs.

When a verified session already exists the command does nothing unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		a, already, err := cmdutil.PublicSession(cmd)
		if err != nil {
			return err
		}
		if already && !force {
			who := "the stored session"
			if u := a.User(); u != nil && u.Email != "" {
				who = u.Email
			}
			pterm.Info.Printf("Already logged in as %s. Use --force to sign in again.\n", who)
			return nil
		}

		if passwordStdin {
			pw, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			password = pw
		}
		if err := promptMissing(cfg.NonInteractive); err != nil {
			return err
		}

		ctx, cancel := cmdutil.RequestContext(cmd)
		defer cancel()
		if err := a.Login(ctx, email, password); err != nil {
			return cmdutil.HandleError(cmd.ErrOrStderr(), "login failed", err, nil)
		}

		pterm.Success.Printf("Logged in to %s as %s\n", cfg.ServerURL, email)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&email, "email", "", "Administrator email")
	loginCmd.Flags().StringVar(&password, "password", "", "Administrator password (prefer --password-stdin)")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	loginCmd.Flags().BoolVar(&force, "force", false, "Sign in even when a valid session exists")
}

func promptMissing(nonInteractive bool) error {
	if email != "" && password != "" {
		return nil
	}
	if nonInteractive {
		return errors.New("--email and --password (or --password-stdin) are required in non-interactive mode")
	}

	var err error
	if email == "" {
		email, err = pterm.DefaultInteractiveTextInput.Show("Email")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}
	if password == "" {
		password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password on stdin")
	}
	return line, nil
}
