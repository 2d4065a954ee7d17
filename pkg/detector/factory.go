package detector

import (
	"errors"
	"fmt"
	"os"

	"github.com/actionsum/xswallow/pkg/integrations/x11"
	"github.com/actionsum/xswallow/pkg/window"
)

// ErrNoDisplay is returned when there is no X display to connect to.
var ErrNoDisplay = errors.New("no X11 display: DISPLAY is not set")

// New opens the window system gateway. Swallowing needs an X11 window
// manager that publishes the EWMH client list, so a pure Wayland session
// is refused.
func New() (window.Gateway, error) {
	switch server := DetectDisplayServer(); server {
	case "x11":
	case "wayland":
		if os.Getenv("DISPLAY") == "" {
			return nil, fmt.Errorf("unsupported display server: %s", server)
		}
		return nil, fmt.Errorf("unsupported display server: %s (only Xwayland clients would be visible)", server)
	default:
		return nil, ErrNoDisplay
	}

	return x11.NewClient()
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
