// Package session holds process-wide coordination state shared by the UI
// screens: the session-expired flag and the in-flight chat request registry.
// Both are plain observable containers, constructed and injected rather than
// hidden globals, so tests can run against isolated instances.
package session

import (
	"sort"
	"sync"
)

// notifier is a minimal synchronous publish/subscribe list. Listeners are
// invoked in subscription order after every state mutation; a panicking
// listener is isolated so the remaining listeners still run.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

func (n *notifier) subscribe(fn func()) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

func (n *notifier) emit() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.listeners))
	ids := make([]int, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	// Map iteration order is random; keep notification order stable.
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, n.listeners[id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		safeCall(fn)
	}
}

func safeCall(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
