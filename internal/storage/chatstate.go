package storage

import (
	"context"
	"encoding/json"
)

const activeChatKey = "active_chat_state"

// PersistedMessage is a single transcript entry. Immutable once created;
// conversation order is the order of the Messages slice.
type PersistedMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsUser    bool   `json:"isUser"`
	Timestamp string `json:"timestamp"` // RFC 3339
}

// ChatPersistedState is the single active conversation cached on device.
// IDChat is nil until the server assigns a conversation id (first message of
// a new chat). There is at most one of these in storage at a time: a
// singleton slot, not a collection keyed by chat id.
type ChatPersistedState struct {
	IDChat         *int               `json:"idChat"`
	Messages       []PersistedMessage `json:"messages"`
	Title          string             `json:"title,omitempty"`
	QuickQuestions []string           `json:"quickQuestions,omitempty"`
}

// ActiveChatStore is a durable single-slot cache of the open conversation.
// It has no concurrency control; callers sequence reads and writes.
type ActiveChatStore struct {
	kv  KV
	log Logger
}

func NewActiveChatStore(kv KV, log Logger) *ActiveChatStore {
	return &ActiveChatStore{kv: kv, log: log}
}

// Load reads the stored conversation. Returns nil when the slot is absent,
// unreadable, or malformed: a corrupted cache is treated as empty, never an
// error the caller has to handle.
func (s *ActiveChatStore) Load(ctx context.Context) *ChatPersistedState {
	raw, err := s.kv.Get(ctx, activeChatKey)
	if err != nil {
		if err != ErrNotFound {
			s.warn("failed to load active chat state", err)
		}
		return nil
	}
	var state ChatPersistedState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.warn("discarding malformed active chat state", err)
		return nil
	}
	if state.Messages == nil {
		// A blob without a message list is not a usable transcript.
		return nil
	}
	return &state
}

// Save overwrites the slot unconditionally (last-writer-wins, no merge).
// Failures are logged and returned; callers treat them as non-fatal.
func (s *ActiveChatStore) Save(ctx context.Context, state *ChatPersistedState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		s.warn("failed to serialize active chat state", err)
		return err
	}
	if err := s.kv.Set(ctx, activeChatKey, string(raw)); err != nil {
		s.warn("failed to save active chat state", err)
		return err
	}
	return nil
}

// Clear removes the slot entirely.
func (s *ActiveChatStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, activeChatKey); err != nil {
		s.warn("failed to clear active chat state", err)
		return err
	}
	return nil
}

func (s *ActiveChatStore) warn(msg string, err error) {
	if s.log != nil {
		s.log.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}
