package models

import (
	"time"

	"gorm.io/gorm"
)

// SwallowEvent is one terminal hidden behind one child window. The row is
// written when the swallow happens and completed when the child goes away.
type SwallowEvent struct {
	ID           uint           `gorm:"primaryKey" json:"id" yaml:"id"`
	SessionID    string         `gorm:"not null;index" json:"session_id" yaml:"session_id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp" yaml:"timestamp"`
	ChildWindow  uint32         `gorm:"not null" json:"child_window" yaml:"child_window"`
	ParentWindow uint32         `gorm:"not null" json:"parent_window" yaml:"parent_window"`
	ChildPID     uint32         `gorm:"not null" json:"child_pid" yaml:"child_pid"`
	ParentPID    uint32         `gorm:"not null" json:"parent_pid" yaml:"parent_pid"`
	AppName      string         `gorm:"not null;index" json:"app_name" yaml:"app_name"`
	TerminalName string         `gorm:"not null" json:"terminal_name" yaml:"terminal_name"`
	Geometry     string         `gorm:"not null" json:"geometry" yaml:"geometry"`
	Shared       bool           `gorm:"not null;default:false" json:"shared" yaml:"shared"`
	Restored     bool           `gorm:"not null;default:false" json:"restored" yaml:"restored"`
	ReleasedAt   *time.Time     `json:"released_at,omitempty" yaml:"released_at,omitempty"`
	Duration     int64          `gorm:"not null;default:0" json:"duration" yaml:"duration"` // Duration in seconds
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at" yaml:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-" yaml:"-"`
}

type AppSummary struct {
	AppName      string  `json:"app_name" yaml:"app_name"`
	Swallows     int     `json:"swallows" yaml:"swallows"`
	TotalSeconds int64   `json:"total_seconds" yaml:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes" yaml:"total_minutes"`
	TotalHours   float64 `json:"total_hours" yaml:"total_hours"`
	Percentage   float64 `json:"percentage,omitempty" yaml:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
	Type  string    `json:"type" yaml:"type"` // "day", "week", "month"
}

type Report struct {
	Period        ReportPeriod `json:"period" yaml:"period"`
	Apps          []AppSummary `json:"apps" yaml:"apps"`
	TotalSwallows int          `json:"total_swallows" yaml:"total_swallows"`
	TotalSeconds  int64        `json:"total_seconds" yaml:"total_seconds"`
	TotalMinutes  float64      `json:"total_minutes" yaml:"total_minutes"`
	TotalHours    float64      `json:"total_hours" yaml:"total_hours"`
	GeneratedAt   time.Time    `json:"generated_at" yaml:"generated_at"`
}

// EventList is the raw journal for a report period.
type EventList struct {
	Period ReportPeriod    `json:"period" yaml:"period"`
	Events []*SwallowEvent `json:"events" yaml:"events"`
}
