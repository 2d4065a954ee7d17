package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestDaemon(t *testing.T) (*Daemon, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xswallow.pid")
	return New(path), path
}

func TestPIDFileRoundTrip(t *testing.T) {
	d, path := newTestDaemon(t)

	if pid, err := d.ReadPID(); err != nil || pid != 0 {
		t.Fatalf("ReadPID() without file = %d, %v", pid, err)
	}

	if err := d.WritePID(); err != nil {
		t.Fatalf("WritePID() error: %v", err)
	}
	pid, err := d.ReadPID()
	if err != nil || pid != os.Getpid() {
		t.Errorf("ReadPID() = %d, %v, want %d", pid, err, os.Getpid())
	}

	if err := d.RemovePID(); err != nil {
		t.Fatalf("RemovePID() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("PID file still present: %v", err)
	}
	if err := d.RemovePID(); err != nil {
		t.Errorf("second RemovePID() error: %v", err)
	}
}

func TestReadPIDTrimsNewline(t *testing.T) {
	d, path := newTestDaemon(t)
	if err := os.WriteFile(path, []byte("1234\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if pid, err := d.ReadPID(); err != nil || pid != 1234 {
		t.Errorf("ReadPID() = %d, %v", pid, err)
	}
}

func TestReadPIDInvalid(t *testing.T) {
	d, path := newTestDaemon(t)
	if err := os.WriteFile(path, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ReadPID(); err == nil {
		t.Error("ReadPID() accepted garbage")
	}
}

func TestIsRunningSelf(t *testing.T) {
	d, _ := newTestDaemon(t)
	if err := d.WritePID(); err != nil {
		t.Fatal(err)
	}

	running, pid, err := d.IsRunning()
	if err != nil || !running || pid != os.Getpid() {
		t.Errorf("IsRunning() = %v, %d, %v", running, pid, err)
	}
}

func TestIsRunningRemovesStaleFile(t *testing.T) {
	d, path := newTestDaemon(t)
	// above the default pid_max, so never a live process
	if err := os.WriteFile(path, []byte("4194305"), 0644); err != nil {
		t.Fatal(err)
	}

	running, _, err := d.IsRunning()
	if err != nil || running {
		t.Errorf("IsRunning() = %v, %v", running, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale PID file was not removed")
	}
}

func TestStopNotRunning(t *testing.T) {
	d, _ := newTestDaemon(t)
	if err := d.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() = %v, want ErrNotRunning", err)
	}
}
