package tracker

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/actionsum/xswallow/internal/models"
	"github.com/actionsum/xswallow/internal/swallow"
	"github.com/actionsum/xswallow/pkg/window"
)

// Store is the part of the repository the journal writes to.
type Store interface {
	Create(event *models.SwallowEvent) error
	Release(id uint, releasedAt time.Time, duration int64, restored bool) error
	CreateErrorLog(errorLog *models.ErrorLog) error
}

type openEvent struct {
	id    uint
	start time.Time
}

// Journal records swallows in the history database. Failures are logged
// and never reach the engine.
type Journal struct {
	store     Store
	sessionID string
	open      map[window.Window]openEvent
	now       func() time.Time
}

func NewJournal(store Store) *Journal {
	return &Journal{
		store:     store,
		sessionID: uuid.NewString(),
		open:      make(map[window.Window]openEvent),
		now:       time.Now,
	}
}

// SessionID identifies the rows written by this run.
func (j *Journal) SessionID() string {
	return j.sessionID
}

func (j *Journal) Swallowed(s swallow.Swallowed) {
	start := j.now()
	event := &models.SwallowEvent{
		SessionID:    j.sessionID,
		Timestamp:    start,
		ChildWindow:  uint32(s.Child),
		ParentWindow: uint32(s.Parent),
		ChildPID:     s.ChildPID,
		ParentPID:    s.ParentPID,
		AppName:      s.ChildName,
		TerminalName: s.ParentName,
		Geometry:     s.Geometry.String(),
		Shared:       s.Shared,
	}
	if err := j.store.Create(event); err != nil {
		j.storeError(err)
		return
	}
	j.open[s.Child] = openEvent{id: event.ID, start: start}
}

func (j *Journal) Released(child window.Window, restored bool) {
	ev, ok := j.open[child]
	if !ok {
		return
	}
	delete(j.open, child)
	end := j.now()
	duration := int64(end.Sub(ev.start).Seconds())
	if err := j.store.Release(ev.id, end, duration, restored); err != nil {
		j.storeError(err)
	}
}

func (j *Journal) storeError(err error) {
	errorLog := &models.ErrorLog{
		Timestamp: j.now(),
		ErrorMsg:  err.Error(),
	}

	if dbErr := j.store.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	} else {
		log.Printf("Error logged to database: %v", err)
	}
}
