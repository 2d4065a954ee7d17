package window

import (
	"fmt"
	"strings"
)

// Geometry is everything needed to put a window back where it was.
type Geometry struct {
	X       int16
	Y       int16
	W       uint16
	H       uint16
	Desktop uint32
	State   State
}

// String formats the geometry as WxH+X,Y@D followed by the state codes.
func (g Geometry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d+%d,%d@%d", g.W, g.H, g.X, g.Y, g.Desktop)
	for name := range g.State.Names() {
		b.WriteString(name)
	}
	return b.String()
}

// FormatWindow renders a window id the way xprop and xwininfo do.
func FormatWindow(w Window) string {
	return fmt.Sprintf("0x%x", uint32(w))
}
