package database

import (
	"strings"
	"time"

	"github.com/actionsum/xswallow/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for swallow events
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new swallow event into the database
func (r *Repository) Create(event *models.SwallowEvent) error {
	event.AppName = strings.ToLower(event.AppName)
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert swallow event")
	}
	return nil
}

// GetEventsSince retrieves all swallow events since a given time
func (r *Repository) GetEventsSince(since time.Time) ([]*models.SwallowEvent, error) {
	var events []*models.SwallowEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query swallow events")
	}

	return events, nil
}

// GetAppSummarySince returns how often and how long each program held a
// terminal since a given time. Open swallows count with a zero duration.
func (r *Repository) GetAppSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary

	result := r.db.Model(&models.SwallowEvent{}).
		Select("app_name, COUNT(*) as swallows, SUM(duration) as total_seconds").
		Where("timestamp >= ?", since).
		Group("app_name").
		Order("total_seconds DESC, app_name ASC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query app summary")
	}

	return summaries, nil
}

// DeleteOldEvents deletes events older than a specified date (soft delete)
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.SwallowEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// GetLatest retrieves the most recent swallow event
func (r *Repository) GetLatest() (*models.SwallowEvent, error) {
	var event models.SwallowEvent
	result := r.db.Order("timestamp DESC").First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// Release completes an open swallow event
func (r *Repository) Release(id uint, releasedAt time.Time, duration int64, restored bool) error {
	result := r.db.Model(&models.SwallowEvent{}).Where("id = ?", id).Updates(map[string]any{
		"released_at": releasedAt,
		"duration":    duration,
		"restored":    restored,
	})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to release swallow event")
	}
	if result.RowsAffected == 0 {
		return errors.Errorf("swallow event %d not found", id)
	}
	return nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all swallow events from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM swallow_events")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear swallow events")
	}
	return nil
}
