package cmdutil

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/config"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/output"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// RequestTimeout bounds a single command's API calls.
const RequestTimeout = 30 * time.Second

// RequestContext derives a context bounded by RequestTimeout.
func RequestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), RequestTimeout)
}

// Printer returns the printer selected by --output.
func Printer(cmd *cobra.Command) *output.Printer {
	cfg := config.MustFromContext(cmd.Context())
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		format = output.FormatTable
	}
	p := output.NewPrinter(format)
	p.Out = cmd.OutOrStdout()
	return p
}

// resolve verifies the stored session once, showing a spinner while the
// status is unknown on interactive terminals.
func resolve(cmd *cobra.Command) (*sdk.Authenticator, error) {
	cfg := config.MustFromContext(cmd.Context())

	var spinner *pterm.SpinnerPrinter
	if !cfg.NonInteractive && !Printer(cmd).Structured() {
		spinner, _ = pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Checking session...")
	}
	a, err := cfg.ClientProvider.Session(cmd.Context())
	if spinner != nil {
		_ = spinner.Stop()
	}
	return a, err
}

// RequireSession runs the protected guard for cmd. It returns the
// authenticator when the command may run and an error naming the login
// command otherwise.
func RequireSession(cmd *cobra.Command) (*sdk.Authenticator, error) {
	a, err := resolve(cmd)
	if err != nil {
		return nil, err
	}

	decision := sdk.DefaultRoutes().Protected(a.Status(), cmd.CommandPath())
	switch decision.Kind {
	case sdk.Render:
		return a, nil
	case sdk.Redirect:
		return nil, fmt.Errorf("%w: run `chamusctl auth login` first", sdk.ErrNotAuthenticated)
	default:
		return nil, fmt.Errorf("%w: session could not be verified", sdk.ErrNotAuthenticated)
	}
}

// PublicSession runs the public guard for the login command. It reports
// already=true when a verified session exists and login should be skipped.
func PublicSession(cmd *cobra.Command) (a *sdk.Authenticator, already bool, err error) {
	a, err = resolve(cmd)
	if err != nil {
		return nil, false, err
	}
	routes := sdk.DefaultRoutes()
	decision := routes.Public(a.Status(), routes.Login)
	return a, decision.Kind == sdk.Redirect, nil
}

// Confirm asks before a destructive action. yes skips the prompt; in
// non-interactive mode yes is required.
func Confirm(cmd *cobra.Command, prompt string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if config.MustFromContext(cmd.Context()).NonInteractive {
		return false, fmt.Errorf("refusing to continue without --yes in non-interactive mode")
	}
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(prompt)
}
