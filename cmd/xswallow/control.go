package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionsum/xswallow/internal/daemon"
	"github.com/actionsum/xswallow/internal/database"
	"github.com/actionsum/xswallow/pkg/utils"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the swallow daemon and restore every hidden terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopDaemon(cmd)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and the last recorded swallow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd)
	},
}

func stopDaemon(cmd *cobra.Command) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	dm := daemon.New(cfg.Daemon.PIDFile)
	out := cmd.OutOrStdout()

	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	fmt.Fprintf(out, "Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	successColor.Fprintln(out, "Daemon stopped successfully")
	return nil
}

func showStatus(cmd *cobra.Command) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	dm := daemon.New(cfg.Daemon.PIDFile)
	out := cmd.OutOrStdout()

	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		errorColor.Fprintln(out, "Status: Not running")
	} else {
		successColor.Fprintf(out, "Status: Running (PID: %d)\n", pid)
		fmt.Fprintf(out, "Log File: %s\n", cfg.Daemon.LogFile)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, cfg.String())

	if !cfg.History.Enabled {
		return nil
	}

	db, err := database.Connect(cfg.History.Path)
	if err != nil {
		fmt.Fprintf(out, "\nCould not open history: %v\n", err)
		return nil
	}
	defer db.Close()

	latest, err := database.NewRepository(db).GetLatest()
	if err != nil || latest == nil {
		return nil
	}

	infoColor.Fprintln(out, "\nLast Swallow:")
	fmt.Fprintf(out, "  App: %s (pid %d)\n", latest.AppName, latest.ChildPID)
	fmt.Fprintf(out, "  Terminal: %s (pid %d)\n", latest.TerminalName, latest.ParentPID)
	fmt.Fprintf(out, "  At: %s\n", latest.Timestamp.Format("2006-01-02 15:04:05"))
	if latest.ReleasedAt != nil {
		fmt.Fprintf(out, "  Held: %s\n", utils.FormatRoundedUnit(latest.Duration))
	} else {
		fmt.Fprintln(out, "  Held: still open")
	}
	return nil
}
