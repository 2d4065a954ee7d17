package window

import "iter"

// State is _NET_WM_STATE packed into a bitfield.
type State uint8

const (
	StateMaxVert State = 1 << iota
	StateMaxHorz
	StateSticky
	StateShaded
	// StateHidden is applied through WM_CHANGE_STATE, never through a
	// _NET_WM_STATE message.
	StateHidden
	StateFullscreen
	StateAbove
	StateBelow
)

// stateFlags is the emission order of the flags, lowest bit first.
var stateFlags = [...]State{
	StateMaxVert,
	StateMaxHorz,
	StateSticky,
	StateShaded,
	StateHidden,
	StateFullscreen,
	StateAbove,
	StateBelow,
}

var stateNames = [...]string{"+V", "+H", "+S", "-S", "-M", "+M", "+O", "-O"}

// StateAtomNames are the protocol names of the flags, in stateFlags order.
var StateAtomNames = [...]string{
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_STATE_MAXIMIZED_HORZ",
	"_NET_WM_STATE_STICKY",
	"_NET_WM_STATE_SHADED",
	"_NET_WM_STATE_HIDDEN",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_STATE_ABOVE",
	"_NET_WM_STATE_BELOW",
}

// _NET_WM_STATE actions.
const (
	StateRemove uint32 = 0
	StateAdd    uint32 = 1
)

// SourcePager is the EWMH source indication sent with every client message.
const SourcePager uint32 = 2

// WM_CHANGE_STATE opcodes.
const (
	NormalState uint32 = 1
	IconicState uint32 = 3
)

// StateAtoms maps each flag (in stateFlags order) to its interned atom.
type StateAtoms [len(stateFlags)]Atom

// Encode folds a _NET_WM_STATE atom list into a State.
// Atoms that are not state flags are ignored.
func (t StateAtoms) Encode(list []Atom) State {
	var s State
	for _, a := range list {
		if a == AtomNone {
			continue
		}
		for i, known := range t {
			if a == known {
				s |= stateFlags[i]
			}
		}
	}
	return s
}

// StateMessage is one _NET_WM_STATE client message changing up to two flags.
type StateMessage struct {
	Action uint32
	First  Atom
	Second Atom
}

// Data returns the 32-bit payload of the client message.
func (m StateMessage) Data() [5]uint32 {
	return [5]uint32{m.Action, uint32(m.First), uint32(m.Second), SourcePager, 0}
}

type stateCursor struct {
	pending State
}

func (c *stateCursor) next(t StateAtoms) Atom {
	for i, flag := range stateFlags {
		if c.pending&flag != 0 {
			c.pending &^= flag
			return t[i]
		}
	}
	return AtomNone
}

// Messages returns the state messages that put a window into s.
// Flags to set are added two at a time, then every other flag is removed
// the same way. With seven flags in play that is always four messages.
// The hidden flag is left out; see ChangeState.
func (s State) Messages(t StateAtoms) [4]StateMessage {
	var out [4]StateMessage
	cur := stateCursor{pending: s &^ StateHidden}
	action := StateAdd
	for i := range out {
		if cur.pending == 0 && action == StateAdd {
			cur.pending = ^s &^ StateHidden
			action = StateRemove
		}
		out[i] = StateMessage{Action: action, First: cur.next(t), Second: cur.next(t)}
	}
	return out
}

// ChangeState returns the WM_CHANGE_STATE opcode for s.
func (s State) ChangeState() uint32 {
	if s.IsHidden() {
		return IconicState
	}
	return NormalState
}

func (s State) IsHidden() bool {
	return s&StateHidden != 0
}

// Names yields a short code for every set flag, lowest bit first.
func (s State) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i, flag := range stateFlags {
			if s&flag == 0 {
				continue
			}
			if !yield(stateNames[i]) {
				return
			}
		}
	}
}
