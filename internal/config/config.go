package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Swallow configuration
	Swallow SwallowConfig

	// Daemon configuration
	Daemon DaemonConfig

	// History journal configuration
	History HistoryConfig
}

// SwallowConfig holds the process names that drive swallowing
type SwallowConfig struct {
	Terminal  string   // Primary terminal executable ($TERMINAL)
	Terminals []string // Additional terminal names
	Immune    []string // Names that never act as a swallow source
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Where a daemonized run writes its log
}

// HistoryConfig holds swallow journal configuration
type HistoryConfig struct {
	Enabled   bool
	Path      string // Empty means ~/.config/xswallow/history.db
	Retention int    // Days of history kept
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/xswallow-%d.pid", os.Getuid()),
			LogFile: fmt.Sprintf("/tmp/xswallow-%d.log", os.Getuid()),
		},
		History: HistoryConfig{
			Enabled:   false,
			Path:      "",
			Retention: 30,
		},
	}
}

// TerminalNames returns every terminal process name. The primary terminal
// may be given as a path; only its base name can match a process.
func (c *Config) TerminalNames() []string {
	var names []string
	if c.Swallow.Terminal != "" {
		names = append(names, filepath.Base(c.Swallow.Terminal))
	}
	return append(names, c.Swallow.Terminals...)
}

// ImmuneNames returns the configured immune names, without the terminals.
func (c *Config) ImmuneNames() []string {
	return append([]string(nil), c.Swallow.Immune...)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.TerminalNames()) == 0 {
		return fmt.Errorf("no terminal configured: set TERMINAL or XSWALLOW_TERMINALS")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.History.Retention <= 0 {
		return fmt.Errorf("history retention must be positive, got %d days", c.History.Retention)
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Swallow:
    Terminals: %s
    Immune: %s
  Daemon:
    PID File: %s
    Log File: %s
  History:
    Enabled: %v
    Path: %s
    Retention: %d days`,
		strings.Join(c.TerminalNames(), ", "),
		strings.Join(c.Swallow.Immune, ", "),
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.History.Enabled,
		c.History.Path,
		c.History.Retention,
	)
}
