package window

import "errors"

// Window is the identifier the window system assigns to a top-level window.
type Window uint32

// Atom is an interned protocol name.
type Atom uint32

// AtomNone pads unused slots in state-change messages.
const AtomNone Atom = 0

// ErrConnectionClosed is returned by NextEvent once the event stream can no
// longer be read. It is the only event error that ends the main loop.
var ErrConnectionClosed = errors.New("window system connection closed")

// PIDRequest is an in-flight _NET_WM_PID query.
type PIDRequest interface {
	Reply() (uint32, error)
}

// TreeRequest is an in-flight query for the children of a window.
type TreeRequest interface {
	Reply() ([]Window, error)
}

// Gateway is the window system surface the swallow engine drives.
// Request* methods only send; the reply is awaited through the returned
// handle so several queries can be in flight at once.
type Gateway interface {
	// Root returns the root window of the default screen
	Root() Window

	// WindowList returns the window manager's current client list
	WindowList() ([]Window, error)

	RequestPID(w Window) PIDRequest
	RequestChildren(w Window) TreeRequest

	// Geometry returns the root-relative placement, desktop and state of w
	Geometry(w Window) (Geometry, error)

	// SetGeometry moves w to g, including its desktop and state flags
	SetGeometry(w Window, g Geometry)

	Show(w Window)
	Hide(w Window)

	// ActivateIf gives the input focus to w only when check is the active window
	ActivateIf(check, w Window) error

	// Subscribe selects structure and property change events on w
	Subscribe(w Window)

	// Flush pushes pending requests to the server
	Flush()

	// FlushHard waits until every pending request has been processed
	FlushHard()

	// NextEvent blocks until the next classified protocol event
	NextEvent() (Event, error)

	Close() error
}

// WindowPID is a convenience wrapper around a single PID query.
func WindowPID(gw Gateway, w Window) (uint32, error) {
	return gw.RequestPID(w).Reply()
}
