package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/actionsum/xswallow/pkg/window"
)

// NextEvent blocks until the X server sends something and classifies it.
// A protocol error comes back as a plain error; a closed connection as
// window.ErrConnectionClosed.
func (c *Client) NextEvent() (window.Event, error) {
	ev, xerr := c.conn.WaitForEvent()
	if ev == nil && xerr == nil {
		return window.Event{Kind: window.EventQuit}, window.ErrConnectionClosed
	}
	if xerr != nil {
		return window.Event{Kind: window.EventError}, xerr
	}
	return c.classify(ev), nil
}

func (c *Client) classify(ev xgb.Event) window.Event {
	switch e := ev.(type) {
	case xproto.PropertyNotifyEvent:
		switch {
		case e.Atom == c.atoms[atomClientList] && e.Window == c.root:
			return window.Event{Kind: window.EventWindowList}
		case e.Atom == c.atoms[atomDesktop] || e.Atom == c.atoms[atomState]:
			return window.Event{Kind: window.EventUpdate, Window: window.Window(e.Window)}
		}
	case xproto.ConfigureNotifyEvent:
		return window.Event{Kind: window.EventUpdate, Window: window.Window(e.Window)}
	case xproto.DestroyNotifyEvent:
		return window.Event{Kind: window.EventClose, Window: window.Window(e.Window)}
	}
	return window.Event{Kind: window.EventNone}
}
