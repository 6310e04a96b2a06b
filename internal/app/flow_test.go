package app

import (
	"context"
	"errors"
	"testing"

	"aichat/internal/api"
	"aichat/internal/storage"
)

type fakeTransport struct {
	requests []api.MessageRequest
	respond  func(req api.MessageRequest) (*api.MessageResponse, error)
}

func (f *fakeTransport) SendMessage(ctx context.Context, req api.MessageRequest) (*api.MessageResponse, error) {
	f.requests = append(f.requests, req)
	return f.respond(req)
}

func newTestCoordinator(t *testing.T, respond func(req api.MessageRequest) (*api.MessageResponse, error)) (*Coordinator, *storage.ActiveChatStore, *fakeTransport) {
	t.Helper()
	kv, err := storage.New(storage.DriverMemory)
	if err != nil {
		t.Fatalf("memory kv: %v", err)
	}
	chats := storage.NewActiveChatStore(kv, nil)
	transport := &fakeTransport{respond: respond}
	return NewCoordinator(transport, chats), chats, transport
}

func intPtr(v int) *int { return &v }

func reply(id int, text, tipo string) *api.MessageResponse {
	return &api.MessageResponse{IDChat: intPtr(id), Conteudo: text, Tipo: tipo}
}

func TestSendNewConversationPersistsBothMessages(t *testing.T) {
	coord, chats, transport := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		return reply(7, "olá!", api.TipoAssistant), nil
	})
	ctx := context.Background()

	resp, err := coord.SendMessagePersisting(ctx, nil, "oi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.IDChat == nil || *resp.IDChat != 7 {
		t.Fatalf("response id = %v", resp.IDChat)
	}
	if transport.requests[0].IDChat != nil {
		t.Fatalf("new conversation must not carry an id, got %d", *transport.requests[0].IDChat)
	}

	state := chats.Load(ctx)
	if state == nil {
		t.Fatalf("expected persisted state")
	}
	if state.IDChat == nil || *state.IDChat != 7 {
		t.Fatalf("persisted id = %v, want 7", state.IDChat)
	}
	if len(state.Messages) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(state.Messages))
	}
	if !state.Messages[0].IsUser || state.Messages[0].Text != "oi" {
		t.Fatalf("first message should be the user's: %+v", state.Messages[0])
	}
	if state.Messages[1].IsUser || state.Messages[1].Text != "olá!" {
		t.Fatalf("second message should be the assistant's: %+v", state.Messages[1])
	}
}

func TestAssignedIDIsNotSticky(t *testing.T) {
	coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		return reply(9, "resposta", api.TipoAssistant), nil
	})
	ctx := context.Background()

	seed := &storage.ChatPersistedState{
		IDChat:   intPtr(5),
		Messages: []storage.PersistedMessage{{ID: "user-1", Text: "antiga", IsUser: true, Timestamp: "2025-01-01T00:00:00Z"}},
	}
	if err := chats.Save(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := coord.SendMessagePersisting(ctx, intPtr(5), "continua"); err != nil {
		t.Fatalf("send: %v", err)
	}

	state := chats.Load(ctx)
	if state.IDChat == nil || *state.IDChat != 9 {
		t.Fatalf("most recent response wins: id = %v, want 9", state.IDChat)
	}
}

func TestTitleFirstNonEmptyWins(t *testing.T) {
	coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		r := reply(5, "resposta", api.TipoAssistant)
		r.Titulo = "B"
		return r, nil
	})
	ctx := context.Background()

	seed := &storage.ChatPersistedState{
		IDChat:   intPtr(5),
		Title:    "A",
		Messages: []storage.PersistedMessage{},
	}
	if err := chats.Save(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := coord.SendMessagePersisting(ctx, intPtr(5), "oi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if state := chats.Load(ctx); state.Title != "A" {
		t.Fatalf("title must not be overwritten, got %q", state.Title)
	}
}

func TestTitleAssignedWhenEmpty(t *testing.T) {
	coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		r := reply(5, "resposta", api.TipoAssistant)
		r.Titulo = "Novo título"
		return r, nil
	})
	ctx := context.Background()

	if _, err := coord.SendMessagePersisting(ctx, nil, "oi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if state := chats.Load(ctx); state.Title != "Novo título" {
		t.Fatalf("title = %q", state.Title)
	}
}

func TestUserTypedResponseStoredAsUser(t *testing.T) {
	for _, tc := range []struct {
		tipo   string
		isUser bool
	}{
		{api.TipoUser, true},
		{api.TipoAssistant, false},
		{"", false},
	} {
		coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
			return reply(1, "eco", tc.tipo), nil
		})
		ctx := context.Background()

		if _, err := coord.SendMessagePersisting(ctx, nil, "oi"); err != nil {
			t.Fatalf("tipo %q: send: %v", tc.tipo, err)
		}
		state := chats.Load(ctx)
		got := state.Messages[len(state.Messages)-1]
		if got.IsUser != tc.isUser {
			t.Fatalf("tipo %q stored isUser=%v, want %v", tc.tipo, got.IsUser, tc.isUser)
		}
	}
}

func TestFailedSendKeepsUserMessage(t *testing.T) {
	sendErr := errors.New("connection reset")
	coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		return nil, sendErr
	})
	ctx := context.Background()

	_, err := coord.SendMessagePersisting(ctx, nil, "mensagem importante")
	if !errors.Is(err, sendErr) {
		t.Fatalf("transport errors must propagate unmodified, got %v", err)
	}

	state := chats.Load(ctx)
	if state == nil || len(state.Messages) != 1 {
		t.Fatalf("the outbound message must survive a failed send: %+v", state)
	}
	if !state.Messages[0].IsUser || state.Messages[0].Text != "mensagem importante" {
		t.Fatalf("unexpected persisted message: %+v", state.Messages[0])
	}
}

func TestDifferentConversationStartsFreshTranscript(t *testing.T) {
	coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		return reply(20, "resposta", api.TipoAssistant), nil
	})
	ctx := context.Background()

	seed := &storage.ChatPersistedState{
		IDChat:   intPtr(3),
		Title:    "Outro assunto",
		Messages: []storage.PersistedMessage{{ID: "old", Text: "antiga", IsUser: true, Timestamp: "2025-01-01T00:00:00Z"}},
	}
	if err := chats.Save(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := coord.SendMessagePersisting(ctx, intPtr(20), "novo papo"); err != nil {
		t.Fatalf("send: %v", err)
	}

	state := chats.Load(ctx)
	if state.IDChat == nil || *state.IDChat != 20 {
		t.Fatalf("id = %v, want 20", state.IDChat)
	}
	if len(state.Messages) != 2 {
		t.Fatalf("expected a fresh 2-message transcript, got %d", len(state.Messages))
	}
	if state.Title != "" {
		t.Fatalf("fresh transcript must not inherit the old title, got %q", state.Title)
	}
}

func TestNullCachedStateAbsorbsAnyConversation(t *testing.T) {
	coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		return reply(4, "resposta", api.TipoAssistant), nil
	})
	ctx := context.Background()

	seed := &storage.ChatPersistedState{
		IDChat:   nil,
		Messages: []storage.PersistedMessage{{ID: "m1", Text: "primeira", IsUser: true, Timestamp: "2025-01-01T00:00:00Z"}},
	}
	if err := chats.Save(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := coord.SendMessagePersisting(ctx, intPtr(4), "segunda"); err != nil {
		t.Fatalf("send: %v", err)
	}

	state := chats.Load(ctx)
	if len(state.Messages) != 3 {
		t.Fatalf("a not-yet-assigned cache absorbs the send, got %d messages", len(state.Messages))
	}
	if state.IDChat == nil || *state.IDChat != 4 {
		t.Fatalf("id = %v, want 4", state.IDChat)
	}
}

func TestQuickQuestionsReplacedWholesale(t *testing.T) {
	coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		r := reply(5, "resposta", api.TipoAssistant)
		r.PerguntasRapidas = []api.QuickQuestion{{Pergunta: "Nova A"}, {Pergunta: ""}, {Pergunta: "Nova B"}}
		return r, nil
	})
	ctx := context.Background()

	seed := &storage.ChatPersistedState{
		IDChat:         intPtr(5),
		Messages:       []storage.PersistedMessage{},
		QuickQuestions: []string{"Velha"},
	}
	if err := chats.Save(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := coord.SendMessagePersisting(ctx, intPtr(5), "oi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	state := chats.Load(ctx)
	if len(state.QuickQuestions) != 2 || state.QuickQuestions[0] != "Nova A" || state.QuickQuestions[1] != "Nova B" {
		t.Fatalf("quick questions = %v", state.QuickQuestions)
	}
}

// The store is re-read after the transport call, so a write that lands while
// the request is in flight is merged rather than clobbered.
func TestMergeSeesWritesLandedDuringRequest(t *testing.T) {
	var chats *storage.ActiveChatStore
	coord, chatStore, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		state := chats.Load(context.Background())
		state.Messages = append(state.Messages, storage.PersistedMessage{
			ID: "concurrent", Text: "escrita paralela", IsUser: true, Timestamp: "2025-01-01T00:00:00Z",
		})
		if err := chats.Save(context.Background(), state); err != nil {
			return nil, err
		}
		return reply(1, "resposta", api.TipoAssistant), nil
	})
	chats = chatStore
	ctx := context.Background()

	if _, err := coord.SendMessagePersisting(ctx, nil, "oi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	state := chatStore.Load(ctx)
	if len(state.Messages) != 3 {
		t.Fatalf("expected user + concurrent + assistant, got %d", len(state.Messages))
	}
	if state.Messages[1].ID != "concurrent" {
		t.Fatalf("concurrent write lost: %+v", state.Messages)
	}
}

func TestResponseWithoutIDKeepsRequestedID(t *testing.T) {
	coord, chats, _ := newTestCoordinator(t, func(req api.MessageRequest) (*api.MessageResponse, error) {
		return &api.MessageResponse{Conteudo: "resposta", Tipo: api.TipoAssistant}, nil
	})
	ctx := context.Background()

	if _, err := coord.SendMessagePersisting(ctx, intPtr(11), "oi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	state := chats.Load(ctx)
	if state.IDChat == nil || *state.IDChat != 11 {
		t.Fatalf("id = %v, want the requested 11", state.IDChat)
	}
}
