package swallow

import (
	"fmt"
	"log"
	"sort"

	"github.com/actionsum/xswallow/pkg/window"
)

// Swallowed describes a window that just replaced its terminal.
type Swallowed struct {
	Child      window.Window
	Parent     window.Window
	ChildPID   uint32
	ParentPID  uint32
	ChildName  string
	ParentName string
	Geometry   window.Geometry
	// Shared is set when the terminal was already hidden by another child
	Shared bool
}

// Recorder observes swallow lifecycle transitions.
type Recorder interface {
	Swallowed(s Swallowed)
	// Released is called when a child goes away; restored reports whether
	// its terminal was shown again.
	Released(child window.Window, restored bool)
}

type Option func(*Engine)

// WithRecorder attaches a lifecycle observer.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// Engine owns the swallow relationships. It is not safe for concurrent
// use: every method must be called from the same goroutine.
type Engine struct {
	gateway   window.Gateway
	procs     ProcessTable
	immune    NameSet
	terminals NameSet
	windows   []window.Window
	rel       *relations
	recorder  Recorder
}

// NewEngine builds an engine. Terminal names are always immune.
func NewEngine(gw window.Gateway, procs ProcessTable, terminals, immune NameSet, opts ...Option) *Engine {
	allImmune := NewNameSet(immune.Sorted()...)
	allImmune.Add(terminals.Sorted()...)

	e := &Engine{
		gateway:   gw,
		procs:     procs,
		immune:    allImmune,
		terminals: terminals,
		rel:       newRelations(),
	}
	for _, opt := range opts {
		opt(e)
	}

	log.Printf("Terminal processes: %q", e.terminals.Sorted())
	log.Printf("Immune processes: %q", e.immune.Sorted())
	return e
}

// Initialize seeds the tracked window list. Windows that already exist are
// never swallowed.
func (e *Engine) Initialize(list []window.Window) {
	e.windows = append(e.windows[:0], list...)
}

// Refresh reads the client list and reconciles against it.
func (e *Engine) Refresh() error {
	list, err := e.gateway.WindowList()
	if err != nil {
		return fmt.Errorf("failed to get window list: %w", err)
	}
	e.Reconcile(list)
	return nil
}

// Reconcile tracks the new client list and tries to swallow every window
// that was not there before. A failure only skips that window.
func (e *Engine) Reconcile(list []window.Window) {
	diffList(&e.windows, list, func(w window.Window) {
		if err := e.swallow(list, w); err != nil {
			log.Printf("  Skipping %s: %v", window.FormatWindow(w), err)
		}
	})
}

func (e *Engine) swallow(list []window.Window, child window.Window) error {
	childPID, err := window.WindowPID(e.gateway, child)
	if err != nil {
		return err
	}
	status, err := e.procs.Status(childPID)
	if err != nil {
		return err
	}
	log.Printf("New window: %s %d %q", window.FormatWindow(child), childPID, status.Name)

	if !e.immune.Contains(status.Name) {
		return nil
	}

	terminal, ok := findTerminal(e.procs, status.PPID, e.immune, e.terminals)
	if !ok {
		return nil
	}

	parentWindow, ok := findWindowWithPID(e.gateway, terminal.PID, list)
	if !ok {
		return fmt.Errorf("no window owned by terminal %d %q", terminal.PID, terminal.Name)
	}
	log.Printf("  Parent: %s %d %q", window.FormatWindow(parentWindow), terminal.PID, terminal.Name)

	var position window.Geometry
	parent, shared := e.rel.parent(terminal.PID)
	if shared {
		position, err = e.gateway.Geometry(child)
		if err != nil {
			return err
		}
	} else {
		position, err = e.gateway.Geometry(parentWindow)
		if err != nil {
			return err
		}
		parent = &parentRecord{
			pid:      terminal.PID,
			name:     terminal.Name,
			window:   parentWindow,
			position: position,
		}
		e.gateway.Hide(parentWindow)
		e.gateway.SetGeometry(child, position)
	}

	e.gateway.Subscribe(child)
	e.gateway.Flush()
	e.rel.attach(child, &childRecord{
		pid:      childPID,
		name:     status.Name,
		parent:   parent,
		position: position,
	})

	if e.recorder != nil {
		e.recorder.Swallowed(Swallowed{
			Child:      child,
			Parent:     parent.window,
			ChildPID:   childPID,
			ParentPID:  parent.pid,
			ChildName:  status.Name,
			ParentName: parent.name,
			Geometry:   position,
			Shared:     shared,
		})
	}
	return nil
}

// Update refreshes the stored geometry of a swallowed window. Anything
// else is a plain top-level window and is ignored.
func (e *Engine) Update(w window.Window) {
	c, ok := e.rel.child(w)
	if !ok {
		return
	}
	position, err := e.gateway.Geometry(w)
	if err != nil {
		log.Printf("Failed to update %s: %v", window.FormatWindow(w), err)
		return
	}
	c.position = position
}

// Close forgets a destroyed window. When it was the last child of its
// terminal, the terminal is shown where the child was.
func (e *Engine) Close(w window.Window) {
	c, remaining, ok := e.rel.detach(w)
	if !ok {
		return
	}
	log.Printf("Close window %s %d", window.FormatWindow(w), c.pid)
	log.Printf("  Remaining: %d", remaining)

	if remaining == 0 {
		parent := c.parent.window
		// order matters: some window managers reset the placement on map
		e.gateway.SetGeometry(parent, c.position)
		e.gateway.Show(parent)
		if err := e.gateway.ActivateIf(w, parent); err != nil {
			log.Printf("Failed to restore focus to %s: %v", window.FormatWindow(parent), err)
		}
		e.gateway.SetGeometry(parent, c.position)
		e.gateway.Flush()
	}

	if e.recorder != nil {
		e.recorder.Released(w, remaining == 0)
	}
}

// Quit shows every hidden terminal at the place it was swallowed from and
// waits until the server has processed it.
func (e *Engine) Quit() {
	for _, p := range e.rel.liveParents() {
		e.gateway.SetGeometry(p.window, p.position)
		e.gateway.Show(p.window)
		e.gateway.SetGeometry(p.window, p.position)
	}
	e.gateway.FlushHard()

	if e.recorder != nil {
		children := make([]window.Window, 0, e.rel.len())
		for w := range e.rel.children {
			children = append(children, w)
		}
		sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
		for _, w := range children {
			e.recorder.Released(w, true)
		}
	}
}

// Swallowing reports how many windows are currently swallowed.
func (e *Engine) Swallowing() int {
	return e.rel.len()
}
