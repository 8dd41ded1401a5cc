package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/auth"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/catalog"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/museum"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/user"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/client"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/config"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/logging"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/output"
)

var (
	serverURL       string
	configPath      string
	environment     string
	credentialsPath string
	outputFormat    string
	bearerToken     string
	nonInteractive  bool
	debug           bool
)

var rootCmd = &cobra.Command{
	Use:   "chamusctl",
	Short: "Chamus CLI - museum catalog administration",
	Long: `chamusctl is the administration console for the Chamus museum catalog API.
Use it to sign in and manage museums, rooms, discounts, categories, users and
visitor quotes, either from the command line or through the web dashboard
started by 'chamusctl serve'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check for CHAMUS_NON_INTERACTIVE environment variable
		if os.Getenv("CHAMUS_NON_INTERACTIVE") == "1" {
			nonInteractive = true
		}
		if bearerToken == "" {
			bearerToken = os.Getenv("CHAMUS_TOKEN")
		}

		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		logger := logging.New(logging.Options{Level: settings.Log.Level, Format: settings.Log.Format})
		provider := client.NewProvider(settings.BaseURL(),
			client.WithCredentialsPath(settings.CredentialsPath),
			client.WithLogger(logger),
		)
		if bearerToken != "" {
			provider.SetBearerToken(bearerToken)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(config.InjectConfig(ctx, &config.GlobalConfig{
			Settings:       settings,
			ServerURL:      settings.BaseURL(),
			NonInteractive: nonInteractive,
			Output:         string(format),
			Logger:         logger,
			ClientProvider: provider,
		}))
		return nil
	},
}

// loadSettings merges the config file, CHAMUS_* variables and the flags
// set on this invocation.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	overrides := map[string]any{}
	if flags.Changed("server") {
		overrides["api_url"] = serverURL
	}
	if flags.Changed("environment") {
		overrides["environment"] = environment
	}
	if flags.Changed("credentials") {
		overrides["credentials_path"] = credentialsPath
	}
	if debug {
		overrides["log.level"] = "debug"
	}

	path := configPath
	required := flags.Changed("config")
	if path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err == nil {
			path = defaultPath
		}
	}

	settings, err := config.Load(config.LoadOptions{File: path, Required: required, Overrides: overrides})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serverURL, "server", "", "Catalog API base URL (overrides --environment)")
	flags.StringVar(&environment, "environment", "", "API environment: local or production")
	flags.StringVar(&configPath, "config", "", "Config file (default ~/.chamus/config.yaml)")
	flags.StringVar(&credentialsPath, "credentials", "", "Session file (default ~/.chamus/credentials.json)")
	flags.StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json or yaml")
	flags.StringVar(&bearerToken, "token", "", "Use this bearer token for the invocation without storing it (also CHAMUS_TOKEN)")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via CHAMUS_NON_INTERACTIVE=1)")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(museum.MuseumCmd)
	rootCmd.AddCommand(museum.RoomCmd)
	rootCmd.AddCommand(catalog.DiscountCmd)
	rootCmd.AddCommand(catalog.CategoryCmd)
	rootCmd.AddCommand(user.UserCmd)
	rootCmd.AddCommand(user.QuoteCmd)
	rootCmd.AddCommand(serveCmd)
}
