package process

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultProcRoot = "/proc"

// Status is the part of /proc/<pid>/status the swallow engine needs.
type Status struct {
	PID  uint32
	PPID uint32
	Name string
}

// Procfs reads process status files below Root.
type Procfs struct {
	Root string
}

// NewProcfs returns a reader for the system /proc.
func NewProcfs() *Procfs {
	return &Procfs{Root: defaultProcRoot}
}

// Status returns the parent pid and executable name of pid.
func (p *Procfs) Status(pid uint32) (Status, error) {
	root := p.Root
	if root == "" {
		root = defaultProcRoot
	}

	file, err := os.Open(filepath.Join(root, strconv.FormatUint(uint64(pid), 10), "status"))
	if err != nil {
		return Status{}, fmt.Errorf("failed to open status of pid %d: %w", pid, err)
	}
	defer file.Close()

	status, err := parseStatus(file)
	if err != nil {
		return Status{}, fmt.Errorf("pid %d: %w", pid, err)
	}
	status.PID = pid
	return status, nil
}

func parseStatus(file *os.File) (Status, error) {
	var status Status
	var haveName, havePPID bool

	scanner := bufio.NewScanner(file)
	for !(haveName && havePPID) && scanner.Scan() {
		line := scanner.Text()
		if value, ok := strings.CutPrefix(line, "Name:\t"); ok {
			status.Name = unescapeName(value)
			haveName = true
		} else if value, ok := strings.CutPrefix(line, "PPid:\t"); ok {
			ppid, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
			if err != nil {
				return Status{}, fmt.Errorf("invalid PPid %q: %w", value, err)
			}
			status.PPID = uint32(ppid)
			havePPID = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Status{}, fmt.Errorf("failed to read status: %w", err)
	}
	if !haveName || !havePPID {
		return Status{}, fmt.Errorf("status is missing Name or PPid")
	}
	return status, nil
}

// unescapeName undoes the kernel's escaping of newlines and backslashes
// in the Name field.
func unescapeName(name string) string {
	if !strings.Contains(name, `\`) {
		return name
	}
	var b strings.Builder
	escaped := false
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case escaped && ch == 'n':
			b.WriteByte('\n')
			escaped = false
		case escaped:
			b.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
