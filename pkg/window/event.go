package window

import "fmt"

// EventKind classifies protocol events into what the swallow loop reacts to.
type EventKind int

const (
	// EventNone is an event nobody cares about
	EventNone EventKind = iota
	// EventQuit ends the main loop
	EventQuit
	// EventError carries a protocol error reported while waiting
	EventError
	// EventWindowList means the root client list changed
	EventWindowList
	// EventUpdate means a window moved or changed desktop/state
	EventUpdate
	// EventClose means a window was destroyed
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventQuit:
		return "quit"
	case EventError:
		return "error"
	case EventWindowList:
		return "window-list"
	case EventUpdate:
		return "update"
	case EventClose:
		return "close"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is what the background pump hands to the consumer.
type Event struct {
	Kind   EventKind
	Window Window
	Err    error
}
