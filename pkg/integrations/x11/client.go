package x11

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/actionsum/xswallow/pkg/window"
)

const (
	atomActiveWindow = "_NET_ACTIVE_WINDOW"
	atomClientList   = "_NET_CLIENT_LIST"
	atomPID          = "_NET_WM_PID"
	atomDesktop      = "_NET_WM_DESKTOP"
	atomState        = "_NET_WM_STATE"
	// ICCCM, not EWMH
	atomChangeState = "WM_CHANGE_STATE"
)

// maxStateAtoms bounds the _NET_WM_STATE read.
const maxStateAtoms = 32

// Client implements window.Gateway on top of an xgb connection
type Client struct {
	conn       *xgb.Conn
	root       xproto.Window
	atoms      map[string]xproto.Atom
	stateAtoms window.StateAtoms
}

// NewClient connects to $DISPLAY, interns every atom the swallow engine
// needs and subscribes to property changes on the root window.
func NewClient() (*Client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	client := &Client{
		conn:  conn,
		root:  screen.Root,
		atoms: make(map[string]xproto.Atom),
	}

	if err := client.internAtoms(); err != nil {
		conn.Close()
		return nil, err
	}

	xproto.ChangeWindowAttributes(conn, client.root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange})

	log.Printf("Root: %s", window.FormatWindow(window.Window(client.root)))
	return client, nil
}

func atomNames() []string {
	names := []string{
		atomActiveWindow,
		atomClientList,
		atomPID,
		atomDesktop,
		atomChangeState,
		atomState,
	}
	return append(names, window.StateAtomNames[:]...)
}

// internAtoms sends every InternAtom request before waiting on any reply.
func (c *Client) internAtoms() error {
	names := atomNames()
	cookies := make([]xproto.InternAtomCookie, len(names))
	for i, name := range names {
		cookies[i] = xproto.InternAtom(c.conn, false, uint16(len(name)), name)
	}

	for i, cookie := range cookies {
		reply, err := cookie.Reply()
		if err != nil {
			return errors.Wrapf(err, "failed to intern atom %s", names[i])
		}
		c.atoms[names[i]] = reply.Atom
	}

	for i, name := range window.StateAtomNames {
		c.stateAtoms[i] = window.Atom(c.atoms[name])
	}

	log.Printf("Atoms: %v", c.atoms)
	return nil
}

func (c *Client) Root() window.Window {
	return window.Window(c.root)
}

func (c *Client) getProperty(w xproto.Window, atom, atomType xproto.Atom, length uint32) xproto.GetPropertyCookie {
	return xproto.GetProperty(c.conn, false, w, atom, atomType, 0, length)
}

// WindowList reads _NET_CLIENT_LIST from the root window.
func (c *Client) WindowList() ([]window.Window, error) {
	reply, err := c.getProperty(c.root, c.atoms[atomClientList], xproto.AtomWindow, math.MaxUint32).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read client list")
	}
	values := decodeValues(reply.Value)
	windows := make([]window.Window, len(values))
	for i, v := range values {
		windows[i] = window.Window(v)
	}
	return windows, nil
}

type pidRequest struct {
	window xproto.Window
	cookie xproto.GetPropertyCookie
}

func (r pidRequest) Reply() (uint32, error) {
	reply, err := r.cookie.Reply()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read pid of %s", window.FormatWindow(window.Window(r.window)))
	}
	if len(reply.Value) < 4 {
		return 0, errors.Errorf("window %s has no %s", window.FormatWindow(window.Window(r.window)), atomPID)
	}
	return binary.LittleEndian.Uint32(reply.Value), nil
}

func (c *Client) RequestPID(w window.Window) window.PIDRequest {
	xw := xproto.Window(w)
	return pidRequest{window: xw, cookie: c.getProperty(xw, c.atoms[atomPID], xproto.AtomCardinal, 1)}
}

type treeRequest struct {
	cookie xproto.QueryTreeCookie
}

func (r treeRequest) Reply() ([]window.Window, error) {
	reply, err := r.cookie.Reply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query window tree")
	}
	children := make([]window.Window, len(reply.Children))
	for i, child := range reply.Children {
		children[i] = window.Window(child)
	}
	return children, nil
}

func (c *Client) RequestChildren(w window.Window) window.TreeRequest {
	return treeRequest{cookie: xproto.QueryTree(c.conn, xproto.Window(w))}
}

// Geometry sends all four queries before awaiting any of them.
func (c *Client) Geometry(w window.Window) (window.Geometry, error) {
	xw := xproto.Window(w)
	// GetGeometry is relative to the frame, so the root position comes
	// from translating the origin.
	position := xproto.TranslateCoordinates(c.conn, xw, c.root, 0, 0)
	size := xproto.GetGeometry(c.conn, xproto.Drawable(xw))
	desktop := c.getProperty(xw, c.atoms[atomDesktop], xproto.AtomCardinal, 1)
	state := c.getProperty(xw, c.atoms[atomState], xproto.AtomAtom, maxStateAtoms)

	pos, err := position.Reply()
	if err != nil {
		return window.Geometry{}, errors.Wrap(err, "failed to translate coordinates")
	}
	sz, err := size.Reply()
	if err != nil {
		return window.Geometry{}, errors.Wrap(err, "failed to get geometry")
	}
	desk, err := desktop.Reply()
	if err != nil {
		return window.Geometry{}, errors.Wrap(err, "failed to read desktop")
	}
	st, err := state.Reply()
	if err != nil {
		return window.Geometry{}, errors.Wrap(err, "failed to read state")
	}

	geom := window.Geometry{
		X: pos.DstX - sz.X,
		Y: pos.DstY - sz.Y,
		W: sz.Width,
		H: sz.Height,
	}
	if values := decodeValues(desk.Value); len(values) > 0 {
		geom.Desktop = values[0]
	}
	stateList := decodeValues(st.Value)
	atoms := make([]window.Atom, len(stateList))
	for i, v := range stateList {
		atoms[i] = window.Atom(v)
	}
	geom.State = c.stateAtoms.Encode(atoms)
	return geom, nil
}

// SetGeometry configures the window and asks the window manager to restore
// its desktop, state flags and iconified status.
func (c *Client) SetGeometry(w window.Window, geom window.Geometry) {
	log.Printf("- Moving %s to %s", window.FormatWindow(w), geom)
	xw := xproto.Window(w)
	xproto.ConfigureWindow(c.conn, xw,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{
			uint32(int32(geom.X)),
			uint32(int32(geom.Y)),
			uint32(geom.W),
			uint32(geom.H),
		})
	c.clientMessage(xw, c.atoms[atomDesktop], [5]uint32{geom.Desktop, window.SourcePager, 0, 0, 0})
	for _, msg := range geom.State.Messages(c.stateAtoms) {
		c.clientMessage(xw, c.atoms[atomState], msg.Data())
	}
	c.clientMessage(xw, c.atoms[atomChangeState], [5]uint32{geom.State.ChangeState(), 0, 0, 0, 0})
}

// clientMessage goes to the root window: compliant window managers ignore
// state requests sent to the client itself.
func (c *Client) clientMessage(w xproto.Window, atom xproto.Atom, data [5]uint32) {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	xproto.SendEvent(c.conn, false, c.root,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
		string(ev.Bytes()))
}

func (c *Client) Show(w window.Window) {
	log.Printf("- Showing %s", window.FormatWindow(w))
	xproto.MapWindow(c.conn, xproto.Window(w))
}

// Hide unmaps the window. Most window managers forget its placement.
func (c *Client) Hide(w window.Window) {
	log.Printf("- Hiding %s", window.FormatWindow(w))
	xproto.UnmapWindow(c.conn, xproto.Window(w))
}

func (c *Client) ActivateIf(check, w window.Window) error {
	reply, err := c.getProperty(c.root, c.atoms[atomActiveWindow], xproto.AtomWindow, 1).Reply()
	if err != nil {
		return errors.Wrap(err, "failed to read active window")
	}
	values := decodeValues(reply.Value)
	if len(values) == 0 || window.Window(values[0]) != check {
		return nil
	}
	log.Printf("- Moving focus from %s to %s", window.FormatWindow(check), window.FormatWindow(w))
	c.clientMessage(xproto.Window(w), c.atoms[atomActiveWindow], [5]uint32{window.SourcePager, 0, 0, 0, 0})
	return nil
}

func (c *Client) Subscribe(w window.Window) {
	xproto.ChangeWindowAttributes(c.conn, xproto.Window(w), xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify})
}

// Flush is a no-op: xgb writes each request as it is issued.
func (c *Client) Flush() {}

// FlushHard waits on a round trip, which the server only answers after
// every earlier request.
func (c *Client) FlushHard() {
	log.Println("- Hard event flush")
	if _, err := xproto.GetInputFocus(c.conn).Reply(); err != nil {
		log.Printf("Hard flush failed: %v", err)
	}
}

// Close cleans up resources
func (c *Client) Close() error {
	c.conn.Close()
	return nil
}

// decodeValues splits a format-32 property value.
func decodeValues(data []byte) []uint32 {
	values := make([]uint32, 0, len(data)/4)
	for len(data) >= 4 {
		values = append(values, binary.LittleEndian.Uint32(data))
		data = data[4:]
	}
	return values
}
