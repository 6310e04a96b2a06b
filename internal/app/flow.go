package app

import (
	"context"
	"fmt"
	"time"

	"aichat/internal/api"
	"aichat/internal/storage"
)

// Transport is the slice of the backend client the coordinator needs.
type Transport interface {
	SendMessage(ctx context.Context, req api.MessageRequest) (*api.MessageResponse, error)
}

// Coordinator is the single orchestration path for sending a chat message:
// append the user's message locally, call the transport, merge the reply,
// persist. Persistence brackets the network call so a crash mid-request does
// not lose the outbound message.
//
// Storage failures are swallowed here (the local cache is best-effort, never
// a source of truth); transport failures propagate to the caller untouched.
type Coordinator struct {
	transport Transport
	chats     *storage.ActiveChatStore
	now       func() time.Time
}

func NewCoordinator(transport Transport, chats *storage.ActiveChatStore) *Coordinator {
	return &Coordinator{
		transport: transport,
		chats:     chats,
		now:       time.Now,
	}
}

func (c *Coordinator) makeMessage(prefix, text string, isUser bool) storage.PersistedMessage {
	now := c.now()
	return storage.PersistedMessage{
		ID:        fmt.Sprintf("%s-%d", prefix, now.UnixMilli()),
		Text:      text,
		IsUser:    isUser,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// sameConversation reports whether a cached state can absorb a message aimed
// at idChat. A cached state whose id is still nil has not been assigned a
// server id yet and could still be this conversation.
func sameConversation(existing *storage.ChatPersistedState, idChat *int) bool {
	if existing == nil {
		return false
	}
	if existing.IDChat == nil {
		return true
	}
	return idChat != nil && *existing.IDChat == *idChat
}

func copyID(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// SendMessagePersisting sends text to conversation idChat (nil for a new
// conversation) and returns the transport response.
//
// The store is re-read before each merge instead of reusing a captured value:
// another flow (the upload screen, a second send) may have written the slot
// while the request was in flight. This is a best-effort optimistic merge,
// not a transaction; concurrent writers can still race, and callers gate
// concurrent sends through the in-flight registry.
func (c *Coordinator) SendMessagePersisting(ctx context.Context, idChat *int, text string) (*api.MessageResponse, error) {
	userMsg := c.makeMessage("user", text, true)
	existing := c.chats.Load(ctx)
	var next storage.ChatPersistedState
	if sameConversation(existing, idChat) {
		next = *existing
		next.Messages = append(append([]storage.PersistedMessage{}, existing.Messages...), userMsg)
	} else {
		next = storage.ChatPersistedState{
			IDChat:   copyID(idChat),
			Messages: []storage.PersistedMessage{userMsg},
		}
	}
	_ = c.chats.Save(ctx, &next)

	resp, err := c.transport.SendMessage(ctx, api.MessageRequest{IDChat: copyID(idChat), Conteudo: text})
	if err != nil {
		return nil, err
	}

	c.mergeResponse(ctx, idChat, resp)
	return resp, nil
}

// mergeResponse folds a successful reply into the stored conversation.
func (c *Coordinator) mergeResponse(ctx context.Context, idChat *int, resp *api.MessageResponse) {
	// A reply the backend explicitly types as user-authored stays a user
	// message even though it arrived on the assistant channel.
	aiMsg := c.makeMessage("ai", resp.Conteudo, resp.Tipo == api.TipoUser)

	quick := make([]string, 0, len(resp.PerguntasRapidas))
	for _, q := range resp.PerguntasRapidas {
		if q.Pergunta != "" {
			quick = append(quick, q.Pergunta)
		}
	}
	if len(quick) == 0 {
		quick = nil
	}

	newID := copyID(resp.IDChat)
	if newID == nil {
		newID = copyID(idChat)
	}

	existing := c.chats.Load(ctx)
	var next storage.ChatPersistedState
	if sameConversation(existing, idChat) {
		next = *existing
		if newID != nil {
			// Most-recent-response wins, even over an already assigned id.
			next.IDChat = newID
		}
		if next.Title == "" {
			next.Title = resp.Titulo
		}
		next.QuickQuestions = quick
		next.Messages = append(append([]storage.PersistedMessage{}, existing.Messages...), aiMsg)
	} else {
		next = storage.ChatPersistedState{
			IDChat:         newID,
			Title:          resp.Titulo,
			QuickQuestions: quick,
			Messages:       []storage.PersistedMessage{aiMsg},
		}
	}
	_ = c.chats.Save(ctx, &next)
}
