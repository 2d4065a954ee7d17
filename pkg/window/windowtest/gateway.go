// Package windowtest provides an in-memory window.Gateway for tests.
package windowtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/actionsum/xswallow/pkg/window"
)

// Call is one recorded mutation.
type Call struct {
	Op       string
	Window   window.Window
	Geometry window.Geometry
}

func (c Call) String() string {
	if c.Op == "move" {
		return fmt.Sprintf("%s %s %s", c.Op, window.FormatWindow(c.Window), c.Geometry)
	}
	return fmt.Sprintf("%s %s", c.Op, window.FormatWindow(c.Window))
}

type eventResult struct {
	event window.Event
	err   error
}

// Gateway is a fake window system. Queries are answered from its maps and
// mutations are recorded in Calls.
type Gateway struct {
	mu sync.Mutex

	RootWindow window.Window
	List       []window.Window
	ListErr    error
	PIDs       map[window.Window]uint32
	Tree       map[window.Window][]window.Window
	Geometries map[window.Window]window.Geometry
	Hidden     map[window.Window]bool
	Active     window.Window

	Calls       []Call
	PIDQueries  []window.Window
	MaxInFlight int
	inFlight    int

	events chan eventResult
	closed bool
}

// New returns an empty fake with root window 1.
func New() *Gateway {
	return &Gateway{
		RootWindow: 1,
		PIDs:       make(map[window.Window]uint32),
		Tree:       make(map[window.Window][]window.Window),
		Geometries: make(map[window.Window]window.Geometry),
		Hidden:     make(map[window.Window]bool),
		events:     make(chan eventResult),
	}
}

// AddWindow registers a top-level window owned by pid.
func (g *Gateway) AddWindow(w window.Window, pid uint32, geom window.Geometry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.PIDs[w] = pid
	g.Geometries[w] = geom
	g.Tree[g.RootWindow] = append(g.Tree[g.RootWindow], w)
}

// SetList replaces the client list while the gateway is in use.
func (g *Gateway) SetList(list ...window.Window) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.List = list
}

func (g *Gateway) record(op string, w window.Window, geom window.Geometry) {
	g.Calls = append(g.Calls, Call{Op: op, Window: w, Geometry: geom})
}

// Ops returns the recorded calls as strings.
func (g *Gateway) Ops() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ops := make([]string, len(g.Calls))
	for i, c := range g.Calls {
		ops[i] = c.String()
	}
	return ops
}

func (g *Gateway) Root() window.Window {
	return g.RootWindow
}

func (g *Gateway) WindowList() ([]window.Window, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	return append([]window.Window(nil), g.List...), nil
}

func (g *Gateway) begin() {
	g.inFlight++
	if g.inFlight > g.MaxInFlight {
		g.MaxInFlight = g.inFlight
	}
}

func (g *Gateway) end() {
	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
}

type pidRequest struct {
	g   *Gateway
	pid uint32
	err error
}

func (r pidRequest) Reply() (uint32, error) {
	r.g.end()
	return r.pid, r.err
}

func (g *Gateway) RequestPID(w window.Window) window.PIDRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.PIDQueries = append(g.PIDQueries, w)
	g.begin()
	pid, ok := g.PIDs[w]
	if !ok {
		return pidRequest{g: g, err: fmt.Errorf("window %s has no pid", window.FormatWindow(w))}
	}
	return pidRequest{g: g, pid: pid}
}

type treeRequest struct {
	g        *Gateway
	children []window.Window
}

func (r treeRequest) Reply() ([]window.Window, error) {
	r.g.end()
	return r.children, nil
}

func (g *Gateway) RequestChildren(w window.Window) window.TreeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.begin()
	return treeRequest{g: g, children: append([]window.Window(nil), g.Tree[w]...)}
}

func (g *Gateway) Geometry(w window.Window) (window.Geometry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	geom, ok := g.Geometries[w]
	if !ok {
		return window.Geometry{}, fmt.Errorf("no such window %s", window.FormatWindow(w))
	}
	return geom, nil
}

func (g *Gateway) SetGeometry(w window.Window, geom window.Geometry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("move", w, geom)
	g.Geometries[w] = geom
}

func (g *Gateway) Show(w window.Window) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("show", w, window.Geometry{})
	delete(g.Hidden, w)
}

func (g *Gateway) Hide(w window.Window) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("hide", w, window.Geometry{})
	g.Hidden[w] = true
}

func (g *Gateway) ActivateIf(check, w window.Window) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Active == check {
		g.record("focus", w, window.Geometry{})
		g.Active = w
	}
	return nil
}

func (g *Gateway) Subscribe(w window.Window) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("subscribe", w, window.Geometry{})
}

func (g *Gateway) Flush() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("flush", 0, window.Geometry{})
}

func (g *Gateway) FlushHard() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("flush-hard", 0, window.Geometry{})
}

// Send delivers an event to the next NextEvent call, blocking until it is
// taken.
func (g *Gateway) Send(ev window.Event) {
	g.events <- eventResult{event: ev}
}

// SendError delivers a protocol error.
func (g *Gateway) SendError(err error) {
	g.events <- eventResult{event: window.Event{Kind: window.EventError}, err: err}
}

// Disconnect makes the pending and all later NextEvent calls fail with
// window.ErrConnectionClosed.
func (g *Gateway) Disconnect() {
	close(g.events)
}

func (g *Gateway) NextEvent() (window.Event, error) {
	res, ok := <-g.events
	if !ok {
		return window.Event{Kind: window.EventQuit}, window.ErrConnectionClosed
	}
	return res.event, res.err
}

func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return errors.New("already closed")
	}
	g.closed = true
	return nil
}
