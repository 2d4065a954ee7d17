package config

import (
	"os"
	"strconv"
	"strings"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	// Swallow configuration
	if terminal := os.Getenv("TERMINAL"); terminal != "" {
		cfg.Swallow.Terminal = terminal
	}

	if terminals := os.Getenv("XSWALLOW_TERMINALS"); terminals != "" {
		cfg.Swallow.Terminals = append(cfg.Swallow.Terminals, splitList(terminals)...)
	}

	if immune := os.Getenv("XSWALLOW_IMMUNE"); immune != "" {
		cfg.Swallow.Immune = append(cfg.Swallow.Immune, splitList(immune)...)
	}

	// Daemon configuration
	if pidFile := os.Getenv("XSWALLOW_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv("XSWALLOW_LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	// History configuration
	if enabled := os.Getenv("XSWALLOW_HISTORY"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.History.Enabled = val
		}
	}

	if dbPath := os.Getenv("XSWALLOW_DB_PATH"); dbPath != "" {
		cfg.History.Path = dbPath
	}

	if retention := os.Getenv("XSWALLOW_HISTORY_RETENTION"); retention != "" {
		if days, err := strconv.Atoi(retention); err == nil && days > 0 {
			cfg.History.Retention = days
		}
	}
}

// splitList splits a colon-separated name list, skipping empty entries.
func splitList(s string) []string {
	var names []string
	for name := range strings.SplitSeq(s, ":") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
