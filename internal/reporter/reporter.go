package reporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/actionsum/xswallow/internal/models"
	"github.com/actionsum/xswallow/pkg/utils"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	appColor   = color.New(color.FgYellow)
)

// Source supplies swallow history.
type Source interface {
	GetAppSummarySince(since time.Time) ([]models.AppSummary, error)
	GetEventsSince(since time.Time) ([]*models.SwallowEvent, error)
}

// Reporter handles report generation
type Reporter struct {
	repo Source
	now  func() time.Time
}

// New creates a new reporter
func New(repo Source) *Reporter {
	return &Reporter{
		repo: repo,
		now:  time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	summaries, err := r.repo.GetAppSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get app summary: %w", err)
	}

	var totalSeconds int64
	var totalSwallows int
	for i := range summaries {
		summaries[i].TotalMinutes = float64(summaries[i].TotalSeconds) / 60.0
		summaries[i].TotalHours = float64(summaries[i].TotalSeconds) / 3600.0
		totalSeconds += summaries[i].TotalSeconds
		totalSwallows += summaries[i].Swallows
	}

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].TotalSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	report := &models.Report{
		Period:        *period,
		Apps:          summaries,
		TotalSwallows: totalSwallows,
		TotalSeconds:  totalSeconds,
		TotalMinutes:  float64(totalSeconds) / 60.0,
		TotalHours:    float64(totalSeconds) / 3600.0,
		GeneratedAt:   r.now(),
	}

	return report, nil
}

// ListEvents returns the raw journal rows of the specified period
func (r *Reporter) ListEvents(periodType string) (*models.EventList, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	events, err := r.repo.GetEventsSince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	return &models.EventList{Period: *period, Events: events}, nil
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder
	b.WriteString(titleColor.Sprintf("Swallow History - %s", report.Period.Type))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Swallows: %d, Total Time: %s\n\n", report.TotalSwallows, utils.FormatRoundedUnit(report.TotalSeconds))

	if len(report.Apps) == 0 {
		b.WriteString("No swallows recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-30s %10s %10s %10s\n", "Application", "Swallows", "Time", "Percent")
	b.WriteString(strings.Repeat("-", 63) + "\n")

	for _, app := range report.Apps {
		// pad before coloring, escape codes would break the alignment
		name := fmt.Sprintf("%-30s", truncate(app.AppName, 30))
		fmt.Fprintf(&b, "%s %10d %10s %9.1f%%\n",
			appColor.Sprint(name),
			app.Swallows,
			utils.FormatRoundedUnit(app.TotalSeconds),
			app.Percentage)
	}

	return b.String()
}

// FormatEventsText lists journal rows one per line, oldest first
func (r *Reporter) FormatEventsText(list *models.EventList) string {
	var b strings.Builder
	b.WriteString(titleColor.Sprintf("Swallow Events - %s", list.Period.Type))
	b.WriteString("\n")

	if len(list.Events) == 0 {
		b.WriteString("No swallows recorded for this period.\n")
		return b.String()
	}

	for _, ev := range list.Events {
		held := "open"
		if ev.ReleasedAt != nil {
			held = utils.FormatRoundedUnit(ev.Duration)
		}
		name := fmt.Sprintf("%-20s", truncate(ev.AppName, 20))
		fmt.Fprintf(&b, "%s %s in %-15s %-6s %s\n",
			ev.Timestamp.Format("2006-01-02 15:04:05"),
			appColor.Sprint(name),
			truncate(ev.TerminalName, 15),
			held,
			ev.Geometry)
	}

	return b.String()
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
