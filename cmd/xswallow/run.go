package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/xswallow/internal/config"
	"github.com/actionsum/xswallow/internal/daemon"
	"github.com/actionsum/xswallow/internal/database"
	"github.com/actionsum/xswallow/internal/swallow"
	"github.com/actionsum/xswallow/internal/tracker"
	"github.com/actionsum/xswallow/pkg/detector"
	"github.com/actionsum/xswallow/pkg/integrations/process"
	"github.com/actionsum/xswallow/pkg/window"
)

const daemonChildEnv = "XSWALLOW_DAEMON_CHILD"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Swallow terminals in the foreground until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		return runSwallow(cmd.Context(), cfg)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the swallow daemon in the background",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		return startDaemon(cmd, cfg)
	},
}

func startDaemon(cmd *cobra.Command, cfg *config.Config) error {
	// Check if already running
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("daemon is already running (PID: %d)", pid)
	}

	if os.Getenv(daemonChildEnv) != "1" {
		// Parent process - fork and exit
		return daemonize(cmd, cfg)
	}

	return runStartDaemon(cmd.Context(), cfg, dm)
}

func runStartDaemon(ctx context.Context, cfg *config.Config, dm *daemon.Daemon) error {
	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	if err := dm.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer dm.RemovePID()

	if err := runSwallow(ctx, cfg); err != nil {
		log.Printf("Daemon stopped: %v", err)
		return err
	}
	log.Println("Daemon stopped successfully")
	return nil
}

// runSwallow connects to the display and runs the event loop until a
// signal, ctx or a lost connection ends it.
func runSwallow(ctx context.Context, cfg *config.Config) error {
	log.Printf("Starting %s %s", appName, version)
	log.Printf("%s", cfg.String())

	gateway, err := detector.New()
	if err != nil {
		return fmt.Errorf("failed to connect to the display: %w", err)
	}
	defer gateway.Close()

	var opts []swallow.Option
	if cfg.History.Enabled {
		db, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		journal := tracker.NewJournal(database.NewRepository(db))
		log.Printf("Recording history, session %s", journal.SessionID())
		opts = append(opts, swallow.WithRecorder(journal))
	}

	engine := swallow.NewEngine(
		gateway,
		process.NewProcfs(),
		swallow.NewNameSet(cfg.TerminalNames()...),
		swallow.NewNameSet(cfg.ImmuneNames()...),
		opts...,
	)

	err = tracker.NewService(gateway, engine).Start(ctx)
	if errors.Is(err, window.ErrConnectionClosed) {
		return fmt.Errorf("lost the display connection: %w", err)
	}
	return err
}

// openHistory opens the journal database and prunes rows past retention.
func openHistory(cfg *config.Config) (*database.DB, error) {
	db, err := database.Connect(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := database.NewRepository(db)
	cutoff := time.Now().AddDate(0, 0, -cfg.History.Retention)
	if n, err := repo.DeleteOldEvents(cutoff); err != nil {
		log.Printf("Failed to prune history: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d history entries older than %d days", n, cfg.History.Retention)
	}

	return db, nil
}

func daemonize(cmd *cobra.Command, cfg *config.Config) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	env := append(os.Environ(), daemonChildEnv+"=1")

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil}, // stdin, stdout, stderr to /dev/null
		Sys: &syscall.SysProcAttr{
			Setsid: true, // Create new session
		},
	}

	proc, err := os.StartProcess(executable, []string{executable, "start"}, procAttr)
	if err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	out := cmd.OutOrStdout()
	successColor.Fprintf(out, "Daemon started successfully (PID: %d)\n", proc.Pid)
	fmt.Fprintf(out, "Logs: %s\n", cfg.Daemon.LogFile)
	return proc.Release()
}
