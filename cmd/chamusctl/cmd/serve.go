package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/config"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/dashboard"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long: `Starts the administration dashboard on a local address. The dashboard
shares the session stored by 'chamusctl auth login'; signing in or out in the
browser updates that same session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gcfg := config.MustFromContext(cmd.Context())
		settings := gcfg.Settings
		logger := gcfg.Logger

		addr := settings.Dashboard.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		a, err := gcfg.ClientProvider.Authenticator()
		if err != nil {
			return fmt.Errorf("failed to open session: %w", err)
		}

		router, err := dashboard.NewRouter(dashboard.Options{
			Authenticator:  a,
			Routes:         sdk.DefaultRoutes(),
			Logger:         logger,
			CookieKey:      settings.Dashboard.CookieKey,
			AllowedOrigins: settings.Dashboard.AllowedOrigins,
			LoginRate:      settings.Dashboard.LoginRate,
		})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Pages render a loading state until this resolves.
		go func() {
			if _, err := gcfg.ClientProvider.Session(ctx); err != nil {
				logger.Error("session check failed", "error", err)
				return
			}
			logger.Info("session resolved", "status", a.Status().String())
		}()

		if settings.Dashboard.CookieKey == "" {
			logger.Warn("dashboard.cookie_key not set; login redirects will not survive a restart")
		}
		pterm.Info.Printfln("Dashboard for %s on http://%s", gcfg.ServerURL, addr)

		return dashboard.Serve(ctx, addr, router, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides dashboard.addr)")
}
