package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/actionsum/xswallow/internal/database"
	"github.com/actionsum/xswallow/internal/output"
	"github.com/actionsum/xswallow/internal/reporter"
)

const historyOffNotice = "History recording is off; set XSWALLOW_HISTORY=true to enable it."

var historyCmd = &cobra.Command{
	Use:       "history [day|week|month]",
	Short:     "Summarize recorded swallows per application",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"day", "week", "month"},
	RunE: func(cmd *cobra.Command, args []string) error {
		periodType := "day"
		if len(args) > 0 {
			periodType = args[0]
		}
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		if events, _ := cmd.Flags().GetBool("events"); events {
			return listEvents(cmd, periodType, format)
		}
		return generateReport(cmd, periodType, format)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded swallow history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return clearDatabase(cmd, yes)
	},
}

func init() {
	historyCmd.Flags().String("format", string(output.FormatText), "Output format: text, json, yaml")
	historyCmd.Flags().Bool("events", false, "List every recorded swallow instead of the per-application summary")
	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// openReporter opens the history database for reading.
func openReporter() (*reporter.Reporter, *database.DB, bool, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, nil, false, err
	}

	db, err := database.Connect(cfg.History.Path)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, false, fmt.Errorf("failed to initialize database: %w", err)
	}

	return reporter.New(database.NewRepository(db)), db, cfg.History.Enabled, nil
}

func generateReport(cmd *cobra.Command, periodType string, format output.Format) error {
	rep, db, enabled, err := openReporter()
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := rep.GenerateReport(periodType)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == output.FormatText {
		fmt.Fprintln(out, rep.FormatReportText(report))
		if !enabled {
			fmt.Fprintln(out, historyOffNotice)
		}
		return nil
	}
	return output.Print(out, format, report)
}

func listEvents(cmd *cobra.Command, periodType string, format output.Format) error {
	rep, db, enabled, err := openReporter()
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := rep.ListEvents(periodType)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == output.FormatText {
		fmt.Fprint(out, rep.FormatEventsText(list))
		if !enabled {
			fmt.Fprintln(out, historyOffNotice)
		}
		return nil
	}
	return output.Print(out, format, list)
}

func clearDatabase(cmd *cobra.Command, yes bool) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !yes {
		fmt.Fprint(out, "This will delete all swallow history. Are you sure? (yes/no): ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "yes" && response != "y" {
			fmt.Fprintln(out, "Operation cancelled")
			return nil
		}
	}

	db, err := database.Connect(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.NewRepository(db).Clear(); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}

	successColor.Fprintln(out, "History cleared successfully")
	return nil
}
