package swallow

import "github.com/actionsum/xswallow/pkg/window"

// maxInFlight bounds the requests outstanding during the tree walk. Every
// visited window costs two: its pid and its children.
const (
	maxInFlight      = 10
	requestsPerQuery = 2
)

// findWindowWithPID returns the window owned by pid. Only terminals are
// looked up, so one top-level window per process is assumed.
func findWindowWithPID(gw window.Gateway, pid uint32, list []window.Window) (window.Window, bool) {
	requests := make([]window.PIDRequest, len(list))
	for i, w := range list {
		requests[i] = gw.RequestPID(w)
	}
	for i, req := range requests {
		if owner, err := req.Reply(); err == nil && owner == pid {
			return list[i], true
		}
	}
	// The terminal's own window can be newer than the client list we were
	// handed.
	return searchTree(gw, pid)
}

type treeQuery struct {
	window   window.Window
	pid      window.PIDRequest
	children window.TreeRequest
}

// searchTree walks the whole window tree breadth first from the root.
func searchTree(gw window.Gateway, pid uint32) (window.Window, bool) {
	queue := []window.Window{gw.Root()}
	inFlight := make([]treeQuery, 0, maxInFlight/requestsPerQuery)

	for len(queue) > 0 || len(inFlight) > 0 {
		for len(queue) > 0 && (len(inFlight)+1)*requestsPerQuery <= maxInFlight {
			w := queue[0]
			queue = queue[1:]
			inFlight = append(inFlight, treeQuery{
				window:   w,
				pid:      gw.RequestPID(w),
				children: gw.RequestChildren(w),
			})
		}

		q := inFlight[0]
		inFlight = inFlight[1:]
		if owner, err := q.pid.Reply(); err == nil && owner == pid {
			return q.window, true
		}
		if children, err := q.children.Reply(); err == nil {
			queue = append(queue, children...)
		}
	}
	return 0, false
}
