package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/actionsum/xswallow/internal/config"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Hide a terminal while the program it launched has a window",
	Long: `xswallow watches the EWMH client list. When a program started from a
terminal opens a window, the terminal is hidden and the new window takes
its place; when that window closes the terminal comes back where it was.

Environment Variables:
  TERMINAL                     Primary terminal executable
  XSWALLOW_TERMINALS           Additional terminal names (colon-separated)
  XSWALLOW_IMMUNE              Names that are never swallowed (colon-separated)
  XSWALLOW_PID_FILE            PID file path
  XSWALLOW_LOG_FILE            Log file of the background daemon
  XSWALLOW_HISTORY             Record swallows in the history database (true/false)
  XSWALLOW_DB_PATH             History database file path
  XSWALLOW_HISTORY_RETENTION   Days of history kept`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.AddCommand(runCmd, startCmd, stopCmd, statusCmd, historyCmd, clearCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s version %s\n", appName, version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

// loadConfig reads the environment and validates it when the command
// needs a usable swallow configuration.
func loadConfig(validate bool) (*config.Config, error) {
	cfg := config.New()
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}
