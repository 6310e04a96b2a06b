package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// menuModel is the sidebar equivalent: pick a destination.
type menuModel struct {
	cursor int
}

var menuItems = []string{
	"Chat IA",
	"Meus Chats",
	"Enviar Arquivo",
	"Novo Chat",
	"Sair",
}

func newMenuModel() menuModel {
	return menuModel{}
}

func (m *Model) updateMenu(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "up", "k":
		if m.menu.cursor > 0 {
			m.menu.cursor--
		}
	case "down", "j":
		if m.menu.cursor < len(menuItems)-1 {
			m.menu.cursor++
		}
	case "enter":
		switch m.menu.cursor {
		case 0:
			return m.enterChat()
		case 1:
			m.screen = screenChats
			return m.chats.load(m.app, m.ctx, false)
		case 2:
			m.screen = screenUpload
			return m.upload.focus()
		case 3:
			_ = m.app.StartNewChat(m.ctx)
			return m.enterChat()
		case 4:
			_ = m.app.Logout(m.ctx)
			m.login.notice = ""
			m.screen = screenLogin
			return m.login.focus()
		}
	}
	return nil
}

func (mm *menuModel) view() string {
	out := "\n"
	for i, item := range menuItems {
		line := fmt.Sprintf("  %s", item)
		if i == mm.cursor {
			line = selectedStyle.Render(fmt.Sprintf("▸ %s", item))
		}
		out += line + "\n"
	}
	out += "\n" + hintStyle.Render("↑↓ navega · enter seleciona · ctrl+c sai") + "\n"
	return out
}
