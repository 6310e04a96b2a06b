package session

import "sync"

// State tracks whether the current credential has been invalidated.
// Single writer (the transport's unauthorized hook), many readers.
type State struct {
	mu      sync.Mutex
	expired bool
	n       notifier
}

func NewState() *State {
	return &State{}
}

// MarkExpired transitions to expired. Idempotent: a second call is a no-op
// and emits no notification.
func (s *State) MarkExpired() {
	s.mu.Lock()
	if s.expired {
		s.mu.Unlock()
		return
	}
	s.expired = true
	s.mu.Unlock()
	s.n.emit()
}

// ClearExpiredFlag resets the flag after a successful re-login. Idempotent.
func (s *State) ClearExpiredFlag() {
	s.mu.Lock()
	if !s.expired {
		s.mu.Unlock()
		return
	}
	s.expired = false
	s.mu.Unlock()
	s.n.emit()
}

func (s *State) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// Subscribe registers a callback invoked after every transition.
func (s *State) Subscribe(fn func()) (unsubscribe func()) {
	return s.n.subscribe(fn)
}
