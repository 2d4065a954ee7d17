package swallow

import (
	"sort"

	"github.com/actionsum/xswallow/pkg/window"
)

// parentRecord is a hidden terminal window. Every child swallowed into it
// holds a reference; the last release restores it.
type parentRecord struct {
	pid    uint32
	name   string
	window window.Window
	// placement when swallowed, used at quit
	position window.Geometry
	refs     int
}

func (p *parentRecord) live() bool {
	return p.refs > 0
}

type childRecord struct {
	pid      uint32
	name     string
	parent   *parentRecord
	position window.Geometry
}

// relations owns the child records. The parent index does not own
// anything: a parent is only reachable through it while a child holds it.
type relations struct {
	parents  map[uint32]*parentRecord
	children map[window.Window]*childRecord
}

func newRelations() *relations {
	return &relations{
		parents:  make(map[uint32]*parentRecord),
		children: make(map[window.Window]*childRecord),
	}
}

// parent returns the live parent record of the terminal process pid.
func (r *relations) parent(pid uint32) (*parentRecord, bool) {
	p, ok := r.parents[pid]
	if !ok {
		return nil, false
	}
	if !p.live() {
		delete(r.parents, pid)
		return nil, false
	}
	return p, true
}

func (r *relations) child(w window.Window) (*childRecord, bool) {
	c, ok := r.children[w]
	return c, ok
}

// attach records w as swallowed into c.parent and takes a reference on it.
func (r *relations) attach(w window.Window, c *childRecord) {
	if old, ok := r.children[w]; ok {
		r.release(old)
	}
	c.parent.refs++
	r.children[w] = c
	r.parents[c.parent.pid] = c.parent
}

// detach removes the child record of w. The returned count is how many
// children still hold the parent.
func (r *relations) detach(w window.Window) (*childRecord, int, bool) {
	c, ok := r.children[w]
	if !ok {
		return nil, 0, false
	}
	delete(r.children, w)
	r.release(c)
	return c, c.parent.refs, true
}

func (r *relations) release(c *childRecord) {
	c.parent.refs--
	if c.parent.refs == 0 && r.parents[c.parent.pid] == c.parent {
		delete(r.parents, c.parent.pid)
	}
}

// liveParents returns every parent still held by a child, ordered by pid.
func (r *relations) liveParents() []*parentRecord {
	parents := make([]*parentRecord, 0, len(r.parents))
	for pid := range r.parents {
		if p, ok := r.parent(pid); ok {
			parents = append(parents, p)
		}
	}
	sort.Slice(parents, func(i, j int) bool {
		return parents[i].pid < parents[j].pid
	})
	return parents
}

func (r *relations) len() int {
	return len(r.children)
}
