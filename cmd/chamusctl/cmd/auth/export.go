package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/cmd/cmdutil"
)

var (
	shellFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the session token as an environment variable",
	Long: `Prints shell commands that set CHAMUS_TOKEN to the stored session token.
chamusctl reads CHAMUS_TOKEN like --token, so scripts and CI jobs can reuse a
session without touching ~/.chamus.

Supported shells:
  - posix (bash, zsh, sh) - default
  - fish
  - powershell

Usage:
  # POSIX shells (bash/zsh/sh)
  eval $(chamusctl auth export)

  # Fish shell
  eval (chamusctl auth export --shell fish)

  # PowerShell
  chamusctl auth export --shell powershell | Invoke-Expression`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&shellFormat, "shell", "", "Shell format: posix, fish, powershell (auto-detected if not specified)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := cmdutil.RequireSession(cmd)
	if err != nil {
		return err
	}
	token, ok := a.Client().Store().Token()
	if !ok {
		return fmt.Errorf("no stored session token\n\nPlease run 'chamusctl auth login' first")
	}

	// Auto-detect shell if not specified
	if shellFormat == "" {
		shellFormat = detectShell()
	}

	line, hint, err := exportLine(shellFormat, token)
	if err != nil {
		return err
	}
	printHint(hint)
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

// exportLine renders the assignment of token for shell, quoted so that
// eval never runs anything but the assignment.
func exportLine(shell, token string) (line, hint string, err error) {
	for _, r := range token {
		if r < 0x21 || r > 0x7e {
			return "", "", fmt.Errorf("stored token contains unsupported characters; refusing to export it")
		}
	}

	switch strings.ToLower(shell) {
	case "posix", "bash", "zsh", "sh":
		quoted := "'" + strings.ReplaceAll(token, "'", `'\''`) + "'"
		return "export CHAMUS_TOKEN=" + quoted, "eval $(chamusctl auth export)", nil
	case "fish":
		quoted := "'" + strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(token) + "'"
		return "set -x CHAMUS_TOKEN " + quoted, "eval (chamusctl auth export --shell fish)", nil
	case "powershell", "pwsh", "ps1":
		quoted := "'" + strings.ReplaceAll(token, "'", "''") + "'"
		return "$env:CHAMUS_TOKEN=" + quoted, "chamusctl auth export --shell powershell | Invoke-Expression", nil
	default:
		return "", "", fmt.Errorf("unsupported shell format: %s\n\nSupported formats: posix, fish, powershell", shell)
	}
}

// detectShell attempts to detect the current shell from the SHELL environment variable
func detectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		// Default to POSIX if we can't detect
		return "posix"
	}

	// Extract the shell name from the path
	shellName := filepath.Base(shell)

	switch shellName {
	case "fish":
		return "fish"
	case "pwsh", "powershell":
		return "powershell"
	default:
		// Default to POSIX for bash, zsh, sh, and unknown shells
		return "posix"
	}
}

// printHint explains how to apply the output, but only when stdout is a
// terminal and not being piped into eval.
func printHint(usage string) {
	if isTerminal(os.Stdout) {
		fmt.Fprintln(os.Stderr, "# Run this command to configure your shell:")
		fmt.Fprintln(os.Stderr, "#   "+usage)
		fmt.Fprintln(os.Stderr, "")
	}
}

// isTerminal checks if the given file is a terminal (TTY)
func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	// Check if the file mode indicates it's a character device (terminal)
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
