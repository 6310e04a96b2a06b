package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"aichat/internal/api"
	"aichat/internal/app"
	"aichat/internal/storage"
)

// chatsModel is the history selector.
type chatsModel struct {
	items   []api.ChatListItem
	cursor  int
	loading bool
	opening bool
	errText string
}

type chatsLoadedMsg struct {
	items []api.ChatListItem
	err   error
}

type chatOpenedMsg struct {
	state *storage.ChatPersistedState
	err   error
}

func newChatsModel() chatsModel {
	return chatsModel{}
}

func (cm *chatsModel) load(a *app.Application, ctx context.Context, force bool) tea.Cmd {
	cm.loading = true
	cm.errText = ""
	return func() tea.Msg {
		items, err := a.ChatList(ctx, force)
		return chatsLoadedMsg{items: items, err: err}
	}
}

func (m *Model) updateChats(msg tea.Msg) tea.Cmd {
	cm := &m.chats
	switch msg := msg.(type) {
	case chatsLoadedMsg:
		cm.loading = false
		if msg.err != nil {
			cm.errText = "Não foi possível carregar seus chats."
			return nil
		}
		cm.items = msg.items
		if cm.cursor >= len(cm.items) {
			cm.cursor = 0
		}
		return nil

	case chatOpenedMsg:
		cm.opening = false
		if msg.err != nil {
			cm.errText = "Falha ao abrir o chat selecionado."
			return nil
		}
		return m.enterChat()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.screen = screenMenu
			return nil
		case "up", "k":
			if cm.cursor > 0 {
				cm.cursor--
			}
		case "down", "j":
			if cm.cursor < len(cm.items)-1 {
				cm.cursor++
			}
		case "r":
			return cm.load(m.app, m.ctx, true)
		case "enter":
			if cm.opening || len(cm.items) == 0 {
				return nil
			}
			cm.opening = true
			cm.errText = ""
			id := cm.items[cm.cursor].IDChat
			return func() tea.Msg {
				state, err := m.app.OpenChat(m.ctx, id)
				return chatOpenedMsg{state: state, err: err}
			}
		}
	}
	return nil
}

func (cm *chatsModel) view() string {
	out := "\n" + subtitleStyle.Render("Meus Chats") + "\n\n"
	switch {
	case cm.loading:
		out += hintStyle.Render("carregando…") + "\n"
	case len(cm.items) == 0:
		out += "Você ainda não tem chats.\n" + hintStyle.Render("Crie um novo chat para começar uma conversa.") + "\n"
	default:
		for i, item := range cm.items {
			emoji := item.Emoji
			if emoji == "" {
				emoji = "💬"
			}
			title := item.Titulo
			if title == "" {
				title = fmt.Sprintf("Chat #%d", item.IDChat)
			}
			line := fmt.Sprintf("  %s %s", emoji, title)
			if i == cm.cursor {
				line = selectedStyle.Render(fmt.Sprintf("▸ %s %s", emoji, title))
			}
			out += line + "\n"
		}
	}
	if cm.opening {
		out += hintStyle.Render("abrindo…") + "\n"
	}
	if cm.errText != "" {
		out += errorStyle.Render(cm.errText) + "\n"
	}
	out += "\n" + hintStyle.Render("enter abre · r atualiza · esc menu") + "\n"
	return out
}
