package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/config"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

type sessionStatus struct {
	Server string    `json:"server" yaml:"server"`
	Status string    `json:"status" yaml:"status"`
	User   *sdk.User `json:"user,omitempty" yaml:"user,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	Long:  `Verifies the stored session against the API and shows the signed-in account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		a, err := cfg.ClientProvider.Session(cmd.Context())
		if err != nil {
			return err
		}

		result := sessionStatus{Server: cfg.ServerURL, Status: a.Status().String(), User: a.User()}
		printer := cmdutil.Printer(cmd)
		if printer.Structured() {
			return printer.Print(result, nil)
		}

		pterm.DefaultSection.Println("Authentication Status")
		pterm.Info.Printf("Server: %s\n", result.Server)
		if a.Status() != sdk.StatusAuthenticated {
			pterm.Warning.Println("Not logged in. Run 'chamusctl auth login'.")
			return nil
		}
		pterm.Success.Println("Logged in")
		if u := result.User; u != nil {
			pterm.Info.Printf("Account: %s <%s> (id %d)\n", u.Name, u.Email, u.ID)
		}
		return nil
	},
}
