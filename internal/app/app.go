// Package app wires the transport, device storage, and coordination state
// into the operations the screens call.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"aichat/internal/api"
	"aichat/internal/session"
	"aichat/internal/storage"
)

type Application struct {
	cfg    Config
	log    *Logger
	kv     storage.KV
	chats  *storage.ActiveChatStore
	creds  *storage.CredentialStore
	client *api.Client
	flow   *Coordinator

	Session  *session.State
	InFlight *session.Registry
}

// NewApplication builds the full dependency graph from config. The returned
// application owns the KV store; call Close when done.
func NewApplication(cfg Config, log *Logger) (*Application, error) {
	kv, err := openKV(cfg)
	if err != nil {
		return nil, err
	}

	sess := session.NewState()
	client := api.NewClient(cfg.BaseURL,
		api.WithSessionState(sess),
		api.WithLogger(log),
		api.WithDebug(cfg.Debug),
	)

	a := &Application{
		cfg:      cfg,
		log:      log,
		kv:       kv,
		chats:    storage.NewActiveChatStore(kv, log),
		creds:    storage.NewCredentialStore(kv),
		client:   client,
		Session:  sess,
		InFlight: session.NewRegistry(),
	}
	a.flow = NewCoordinator(client, a.chats)

	// Restore the persisted credential so a restart resumes the session.
	if tok, err := a.creds.Token(context.Background()); err == nil && tok != "" {
		client.SetToken(tok)
	}
	return a, nil
}

func openKV(cfg Config) (storage.KV, error) {
	switch cfg.StorageDriver {
	case "memory":
		return storage.New(storage.DriverMemory)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return storage.New(storage.DriverRedis, storage.WithRedisClient(client))
	default:
		return storage.New(storage.DriverFile, storage.WithRoot(cfg.StorageRoot))
	}
}

func (a *Application) Close() error {
	return a.kv.Close()
}

func (a *Application) Client() *api.Client { return a.client }

// ActiveChat returns the conversation cached on device, nil when there is none.
func (a *Application) ActiveChat(ctx context.Context) *storage.ChatPersistedState {
	return a.chats.Load(ctx)
}

// Authenticated reports whether a credential is stored on device.
func (a *Application) Authenticated(ctx context.Context) bool {
	tok, err := a.creds.Token(ctx)
	return err == nil && tok != ""
}

// DisplayName returns the stored account name, empty when logged out.
func (a *Application) DisplayName(ctx context.Context) string {
	name, _ := a.creds.DisplayName(ctx)
	return name
}

// Login authenticates, persists the credential, and resets the expired flag.
func (a *Application) Login(ctx context.Context, usuario, senha string) error {
	token, err := a.client.Login(ctx, usuario, senha)
	if err != nil {
		return err
	}
	a.client.SetToken(token)
	if err := a.creds.SetToken(ctx, token); err != nil {
		a.log.Warn("failed to persist token", map[string]interface{}{"error": err.Error()})
	}
	if err := a.creds.SetDisplayName(ctx, usuario); err != nil {
		a.log.Warn("failed to persist display name", map[string]interface{}{"error": err.Error()})
	}
	a.Session.ClearExpiredFlag()
	return nil
}

// Logout drops the credential and the display name. The active chat slot is
// left alone so logging back in resumes the conversation.
func (a *Application) Logout(ctx context.Context) error {
	a.client.ClearToken()
	if err := a.creds.ClearToken(ctx); err != nil {
		return err
	}
	return a.creds.ClearDisplayName(ctx)
}

// Send dispatches text to the active conversation, registering the request
// in-flight so other screens refuse concurrent submissions.
func (a *Application) Send(ctx context.Context, text string) (*api.MessageResponse, error) {
	state := a.chats.Load(ctx)
	var idChat *int
	if state != nil {
		idChat = state.IDChat
	}
	return a.SendTo(ctx, idChat, text)
}

// SendTo dispatches text to a specific conversation (nil = new).
func (a *Application) SendTo(ctx context.Context, idChat *int, text string) (*api.MessageResponse, error) {
	a.InFlight.BeginFor(idChat)
	defer a.InFlight.End()

	resp, err := a.flow.SendMessagePersisting(ctx, idChat, text)
	if err != nil {
		return nil, err
	}
	if resp.IDChat != nil {
		// Publish the assigned id while the request drains, so a screen
		// that mounted mid-send learns which conversation is busy.
		a.InFlight.SetCurrentChatID(resp.IDChat)
	}
	return resp, nil
}

// OpenChat replaces the active slot with a historical conversation.
func (a *Application) OpenChat(ctx context.Context, idChat int) (*storage.ChatPersistedState, error) {
	detail, err := a.client.ChatDetails(ctx, idChat)
	if err != nil {
		return nil, err
	}

	msgs := make([]storage.PersistedMessage, 0, len(detail.Messages))
	now := time.Now().UTC().Format(time.RFC3339)
	for i, m := range detail.Messages {
		msgs = append(msgs, storage.PersistedMessage{
			ID:        fmt.Sprintf("m-%d-%d", idChat, i),
			Text:      m.Conteudo,
			IsUser:    m.Tipo == api.TipoUser,
			Timestamp: now,
		})
	}

	quick := make([]string, 0, len(detail.PerguntasRapidas))
	for _, q := range detail.PerguntasRapidas {
		if q.Pergunta != "" {
			quick = append(quick, q.Pergunta)
		}
	}
	if len(quick) == 0 {
		quick = nil
	}

	id := detail.IDChat
	if id == nil {
		v := idChat
		id = &v
	}
	state := &storage.ChatPersistedState{
		IDChat:         id,
		Messages:       msgs,
		Title:          detail.Titulo,
		QuickQuestions: quick,
	}
	if err := a.chats.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// StartNewChat deactivates the current conversation (best-effort; the server
// not acknowledging is fine) and clears the device slot.
func (a *Application) StartNewChat(ctx context.Context) error {
	if state := a.chats.Load(ctx); state != nil && state.IDChat != nil {
		if err := a.client.EndChat(ctx, *state.IDChat); err != nil {
			a.log.Warn("failed to deactivate chat", map[string]interface{}{
				"id_chat": *state.IDChat,
				"error":   err.Error(),
			})
		}
	}
	return a.chats.Clear(ctx)
}

// Upload sends a document for analysis. When the backend opens a
// conversation around it, the overview seeds the active chat slot so the
// chat screen picks it up.
func (a *Application) Upload(ctx context.Context, path, observation string) (*api.UploadResponse, error) {
	resp, err := a.client.UploadFile(ctx, path, observation)
	if err != nil {
		return nil, err
	}

	if resp.AIOverview != "" {
		overview := storage.PersistedMessage{
			ID:        fmt.Sprintf("overview-%d", time.Now().UnixMilli()),
			Text:      resp.AIOverview,
			IsUser:    false,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		state := &storage.ChatPersistedState{
			IDChat:   resp.IDChat,
			Title:    resp.Titulo,
			Messages: []storage.PersistedMessage{overview},
		}
		_ = a.chats.Save(ctx, state)
	}
	return resp, nil
}
