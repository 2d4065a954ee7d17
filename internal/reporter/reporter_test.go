package reporter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/actionsum/xswallow/internal/models"
)

type fakeSource struct {
	since     time.Time
	summaries []models.AppSummary
	events    []*models.SwallowEvent
	err       error
}

func (f *fakeSource) GetAppSummarySince(since time.Time) ([]models.AppSummary, error) {
	f.since = since
	return f.summaries, f.err
}

func (f *fakeSource) GetEventsSince(since time.Time) ([]*models.SwallowEvent, error) {
	f.since = since
	return f.events, f.err
}

// Wednesday
var now = time.Date(2025, 3, 5, 15, 30, 0, 0, time.UTC)

func newTestReporter(src Source) *Reporter {
	r := New(src)
	r.now = func() time.Time { return now }
	return r
}

func TestGetPeriod(t *testing.T) {
	r := newTestReporter(&fakeSource{})
	tests := []struct {
		period    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"day", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)},
		{"today", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)},
		{"week", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"month", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			p, err := r.getPeriod(tt.period)
			if err != nil {
				t.Fatalf("getPeriod() error: %v", err)
			}
			if !p.Start.Equal(tt.wantStart) || !p.End.Equal(tt.wantEnd) {
				t.Errorf("period = %s..%s, want %s..%s", p.Start, p.End, tt.wantStart, tt.wantEnd)
			}
		})
	}

	if _, err := r.getPeriod("year"); err == nil {
		t.Error("getPeriod(year) succeeded")
	}
}

func TestGenerateReport(t *testing.T) {
	src := &fakeSource{summaries: []models.AppSummary{
		{AppName: "mpv", Swallows: 3, TotalSeconds: 5400},
		{AppName: "zathura", Swallows: 1, TotalSeconds: 1800},
	}}
	r := newTestReporter(src)

	report, err := r.GenerateReport("day")
	if err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}
	if !src.since.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("queried since %s", src.since)
	}
	if report.TotalSwallows != 4 || report.TotalSeconds != 7200 || report.TotalHours != 2 {
		t.Errorf("totals = %+v", report)
	}
	if report.Apps[0].Percentage != 75 || report.Apps[1].Percentage != 25 {
		t.Errorf("percentages = %v, %v", report.Apps[0].Percentage, report.Apps[1].Percentage)
	}
	if report.Apps[0].TotalMinutes != 90 {
		t.Errorf("minutes = %v", report.Apps[0].TotalMinutes)
	}
}

func TestGenerateReportErrors(t *testing.T) {
	r := newTestReporter(&fakeSource{err: errors.New("locked")})
	if _, err := r.GenerateReport("week"); err == nil {
		t.Error("GenerateReport() hid the source error")
	}
	if _, err := r.GenerateReport("fortnight"); err == nil {
		t.Error("GenerateReport() accepted an invalid period")
	}
}

func TestFormatReportText(t *testing.T) {
	color.NoColor = true
	r := newTestReporter(&fakeSource{summaries: []models.AppSummary{
		{AppName: "mpv", Swallows: 3, TotalSeconds: 5400},
		{AppName: strings.Repeat("x", 40), Swallows: 1, TotalSeconds: 1800},
	}})
	report, err := r.GenerateReport("day")
	if err != nil {
		t.Fatal(err)
	}

	text := r.FormatReportText(report)
	for _, want := range []string{
		"Swallow History - day",
		"Swallows: 4, Total Time: 2h",
		"mpv",
		strings.Repeat("x", 27) + "...",
		"75.0%",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestFormatReportTextEmpty(t *testing.T) {
	color.NoColor = true
	r := newTestReporter(&fakeSource{})
	report, err := r.GenerateReport("month")
	if err != nil {
		t.Fatal(err)
	}
	if text := r.FormatReportText(report); !strings.Contains(text, "No swallows recorded") {
		t.Errorf("report = %s", text)
	}
}

func TestListEvents(t *testing.T) {
	color.NoColor = true
	released := now.Add(-time.Hour)
	src := &fakeSource{events: []*models.SwallowEvent{
		{
			Timestamp:    now.Add(-2 * time.Hour),
			AppName:      "mpv",
			TerminalName: "xterm",
			Geometry:     "800x600+0,0@1",
			ReleasedAt:   &released,
			Duration:     3601,
		},
		{Timestamp: now.Add(-time.Minute), AppName: "zathura", TerminalName: "kitty", Geometry: "640x480+5,5@0"},
	}}
	r := newTestReporter(src)

	list, err := r.ListEvents("week")
	if err != nil {
		t.Fatalf("ListEvents() error: %v", err)
	}
	if !src.since.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("queried since %s", src.since)
	}
	if list.Period.Type != "week" || len(list.Events) != 2 {
		t.Fatalf("list = %+v", list)
	}

	text := r.FormatEventsText(list)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Fatalf("text has %d lines:\n%s", len(lines), text)
	}
	for i, want := range [][]string{
		{"Swallow Events - week"},
		{"2025-03-05 13:30:00", "mpv", "xterm", "1h", "800x600+0,0@1"},
		{"zathura", "kitty", "open", "640x480+5,5@0"},
	} {
		for _, w := range want {
			if !strings.Contains(lines[i], w) {
				t.Errorf("line %d = %q, missing %q", i, lines[i], w)
			}
		}
	}
}

func TestListEventsErrors(t *testing.T) {
	r := newTestReporter(&fakeSource{err: errors.New("locked")})
	if _, err := r.ListEvents("day"); err == nil {
		t.Error("ListEvents() hid the source error")
	}
	if _, err := r.ListEvents("year"); err == nil {
		t.Error("ListEvents() accepted an invalid period")
	}
}

func TestFormatEventsTextEmpty(t *testing.T) {
	color.NoColor = true
	r := newTestReporter(&fakeSource{})
	list, err := r.ListEvents("day")
	if err != nil {
		t.Fatal(err)
	}
	if text := r.FormatEventsText(list); !strings.Contains(text, "No swallows recorded") {
		t.Errorf("events = %s", text)
	}
}
