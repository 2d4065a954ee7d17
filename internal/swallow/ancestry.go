package swallow

import (
	"log"

	"github.com/actionsum/xswallow/pkg/integrations/process"
)

// ProcessTable looks up the parent and executable name of a process.
type ProcessTable interface {
	Status(pid uint32) (process.Status, error)
}

// findTerminal walks up from pid until it meets a terminal.
// The terminal check must come before the immune check: every terminal
// name is also an immune name.
func findTerminal(procs ProcessTable, pid uint32, immune, terminals NameSet) (process.Status, bool) {
	for pid > 0 {
		status, err := procs.Status(pid)
		if err != nil {
			log.Printf("  Lookup of pid %d failed: %v", pid, err)
			return process.Status{}, false
		}
		log.Printf("  → %d %q", pid, status.Name)
		if terminals.Contains(status.Name) {
			return status, true
		}
		if immune.Contains(status.Name) {
			return process.Status{}, false
		}
		pid = status.PPID
	}
	return process.Status{}, false
}
