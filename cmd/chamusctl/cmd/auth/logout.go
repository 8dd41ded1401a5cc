package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Long: `Revokes the session token on the server when possible and always deletes the
local session, even if the server cannot be reached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		a, err := cfg.ClientProvider.Authenticator()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		if err := a.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}

		pterm.Success.Println("Logged out successfully")
		return nil
	},
}
