package session

import "sync"

// Registry counts outstanding chat sends and remembers which conversation
// they belong to, so the chat and upload screens can agree on whether a send
// is in flight and refuse double-submission. Pure in-memory coordination
// state: nothing here is persisted or touches the network.
type Registry struct {
	mu            sync.Mutex
	count         int
	currentChatID *int
	n             notifier
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Begin registers a new in-flight request without touching the current
// chat id.
func (r *Registry) Begin() {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	r.n.emit()
}

// BeginFor registers a new in-flight request and overwrites the current chat
// id, including overwriting it with nil for a not-yet-assigned conversation.
func (r *Registry) BeginFor(chatID *int) {
	r.mu.Lock()
	r.count++
	r.currentChatID = copyID(chatID)
	r.mu.Unlock()
	r.n.emit()
}

// End resolves one in-flight request. The count floors at zero, and when it
// drains to zero the current chat id is reset.
func (r *Registry) End() {
	r.mu.Lock()
	if r.count > 0 {
		r.count--
	}
	if r.count == 0 {
		r.currentChatID = nil
	}
	r.mu.Unlock()
	r.n.emit()
}

// SetCurrentChatID overwrites the current chat id without touching the count.
// This can leave a non-nil id behind while the count is zero until the next
// Begin/End cycle; that asymmetry is intentional and relied upon by the chat
// screen when the server assigns an id mid-request.
func (r *Registry) SetCurrentChatID(chatID *int) {
	r.mu.Lock()
	r.currentChatID = copyID(chatID)
	r.mu.Unlock()
	r.n.emit()
}

func (r *Registry) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count > 0
}

func (r *Registry) CurrentChatID() *int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyID(r.currentChatID)
}

// Subscribe registers a callback invoked after every mutation.
func (r *Registry) Subscribe(fn func()) (unsubscribe func()) {
	return r.n.subscribe(fn)
}

func copyID(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
