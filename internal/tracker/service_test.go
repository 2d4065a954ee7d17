package tracker

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/actionsum/xswallow/internal/swallow"
	"github.com/actionsum/xswallow/pkg/integrations/process"
	"github.com/actionsum/xswallow/pkg/window"
	"github.com/actionsum/xswallow/pkg/window/windowtest"
)

const (
	termWindow  window.Window = 0x100
	childWindow window.Window = 0x200
)

var termGeom = window.Geometry{X: 10, Y: 20, W: 800, H: 600}

type procTable map[uint32]process.Status

func (p procTable) Status(pid uint32) (process.Status, error) {
	s, ok := p[pid]
	if !ok {
		return process.Status{}, errors.New("no such process")
	}
	return s, nil
}

func newTestService(t *testing.T) (*Service, *windowtest.Gateway) {
	t.Helper()
	gw := windowtest.New()
	gw.AddWindow(termWindow, 50, termGeom)
	gw.AddWindow(childWindow, 100, window.Geometry{W: 320, H: 240})
	gw.List = []window.Window{termWindow}

	procs := procTable{
		50:  {PID: 50, PPID: 1, Name: "xterm"},
		60:  {PID: 60, PPID: 50, Name: "bash"},
		100: {PID: 100, PPID: 60, Name: "mpv"},
	}
	engine := swallow.NewEngine(gw, procs, swallow.NewNameSet("xterm"), swallow.NewNameSet("mpv"))
	return NewService(gw, engine), gw
}

// start runs the service and returns once the initial client list has been
// read, so later list changes are seen as new windows.
func start(t *testing.T, ctx context.Context, s *Service) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("tracker did not start")
		}
		time.Sleep(time.Millisecond)
	}
	return errCh
}

func wait(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("tracker did not stop")
		return nil
	}
}

// settle returns once the loop has taken every event sent before it.
func settle(gw *windowtest.Gateway) {
	gw.Send(window.Event{Kind: window.EventNone})
	gw.Send(window.Event{Kind: window.EventNone})
}

func TestServiceSwallowsAndRestoresOnStop(t *testing.T) {
	s, gw := newTestService(t)
	defer gw.Disconnect()
	errCh := start(t, context.Background(), s)

	gw.SetList(termWindow, childWindow)
	gw.Send(window.Event{Kind: window.EventWindowList})
	settle(gw)
	s.Stop()

	if err := wait(t, errCh); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if gw.Hidden[termWindow] {
		t.Error("terminal still hidden after stop")
	}
	want := []string{
		"hide 0x100",
		"move 0x200 " + termGeom.String(),
		"subscribe 0x200",
		"flush 0x0",
		"move 0x100 " + termGeom.String(),
		"show 0x100",
		"move 0x100 " + termGeom.String(),
		"flush-hard 0x0",
	}
	if got := gw.Ops(); !slices.Equal(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after Start returned")
	}
}

func TestServiceCloseEvent(t *testing.T) {
	s, gw := newTestService(t)
	defer gw.Disconnect()
	errCh := start(t, context.Background(), s)

	gw.SetList(termWindow, childWindow)
	gw.Send(window.Event{Kind: window.EventWindowList})
	gw.Send(window.Event{Kind: window.EventUpdate, Window: childWindow})
	gw.Send(window.Event{Kind: window.EventClose, Window: childWindow})
	settle(gw)
	s.Stop()

	if err := wait(t, errCh); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	ops := gw.Ops()
	if !slices.Contains(ops, "show 0x100") {
		t.Fatalf("terminal never shown: %v", ops)
	}
	// nothing is left to restore on quit
	if len(ops) < 2 {
		t.Fatalf("ops = %v", ops)
	}
	if got := ops[len(ops)-2:]; got[0] != "flush 0x0" || got[1] != "flush-hard 0x0" {
		t.Errorf("ops tail = %v", got)
	}
}

func TestServiceSurvivesProtocolErrors(t *testing.T) {
	s, gw := newTestService(t)
	defer gw.Disconnect()
	errCh := start(t, context.Background(), s)

	gw.SendError(errors.New("BadWindow"))
	gw.SetList(termWindow, childWindow)
	gw.Send(window.Event{Kind: window.EventWindowList})
	settle(gw)
	s.Stop()

	if err := wait(t, errCh); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !slices.Contains(gw.Ops(), "hide 0x100") {
		t.Errorf("loop stopped after an error: %v", gw.Ops())
	}
}

func TestServiceConnectionClosed(t *testing.T) {
	s, gw := newTestService(t)
	errCh := start(t, context.Background(), s)

	gw.Disconnect()

	err := wait(t, errCh)
	if !errors.Is(err, window.ErrConnectionClosed) {
		t.Fatalf("Start() error = %v, want ErrConnectionClosed", err)
	}
	if got := gw.Ops(); !slices.Equal(got, []string{"flush-hard 0x0"}) {
		t.Errorf("ops = %v", got)
	}
}

func TestServiceContextCancel(t *testing.T) {
	s, gw := newTestService(t)
	defer gw.Disconnect()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := start(t, ctx, s)

	cancel()

	if err := wait(t, errCh); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	// Stop after the loop ended must not block
	s.Stop()
}

func TestServiceStartsOnce(t *testing.T) {
	s, gw := newTestService(t)
	errCh := start(t, context.Background(), s)
	gw.Disconnect()
	wait(t, errCh)

	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded")
	}
}

func TestServiceInitialListError(t *testing.T) {
	s, gw := newTestService(t)
	gw.ListErr = errors.New("no client list")

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() succeeded without a client list")
	}
	s.Stop()
	if len(gw.Calls) != 0 {
		t.Errorf("unexpected calls: %v", gw.Ops())
	}
}
