// Package tui is the terminal front-end: login, chat, history, and upload
// screens over the application layer. Screens never talk to the transport
// directly; everything goes through app.Application so the coordination
// state (in-flight registry, session flag) stays consistent.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aichat/internal/app"
)

type screen int

const (
	screenLogin screen = iota
	screenMenu
	screenChat
	screenChats
	screenUpload
)

// sessionExpiredMsg arrives when the transport observes an unauthorized
// response; the UI reacts by forcing the login screen.
type sessionExpiredMsg struct{}

// busyChangedMsg arrives on every in-flight registry mutation.
type busyChangedMsg struct{}

type Model struct {
	app    *app.Application
	ctx    context.Context
	screen screen
	width  int
	height int

	signals chan tea.Msg

	login  loginModel
	menu   menuModel
	chat   chatModel
	chats  chatsModel
	upload uploadModel
}

func NewModel(a *app.Application) *Model {
	m := &Model{
		app:     a,
		ctx:     context.Background(),
		signals: make(chan tea.Msg, 32),
		login:   newLoginModel(),
		menu:    newMenuModel(),
		chat:    newChatModel(a),
		chats:   newChatsModel(),
		upload:  newUploadModel(),
	}

	a.Session.Subscribe(func() {
		if a.Session.IsExpired() {
			m.push(sessionExpiredMsg{})
		}
	})
	a.InFlight.Subscribe(func() {
		m.push(busyChangedMsg{})
	})

	if a.Authenticated(m.ctx) {
		m.screen = screenMenu
	}
	return m
}

// push delivers a coordination-state notification without ever blocking the
// notifier; a full channel drops the event, the next one catches up.
func (m *Model) push(msg tea.Msg) {
	select {
	case m.signals <- msg:
	default:
	}
}

func (m *Model) waitSignal() tea.Cmd {
	return func() tea.Msg {
		return <-m.signals
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitSignal(), m.login.Init())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chat.resize(msg.Width, msg.Height)
		return m, nil

	case sessionExpiredMsg:
		_ = m.app.Logout(m.ctx)
		m.login.notice = "Sessão expirada. Entre novamente."
		m.screen = screenLogin
		return m, tea.Batch(m.waitSignal(), m.login.focus())

	case busyChangedMsg:
		// Re-render so busy indicators and submit gates update.
		return m, m.waitSignal()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		cmd = m.updateLogin(msg)
	case screenMenu:
		cmd = m.updateMenu(msg)
	case screenChat:
		cmd = m.updateChat(msg)
	case screenChats:
		cmd = m.updateChats(msg)
	case screenUpload:
		cmd = m.updateUpload(msg)
	}
	return m, cmd
}

func (m *Model) View() string {
	header := m.header()
	var body string
	switch m.screen {
	case screenLogin:
		body = m.login.view()
	case screenMenu:
		body = m.menu.view()
	case screenChat:
		body = m.chat.view()
	case screenChats:
		body = m.chats.view()
	case screenUpload:
		body = m.upload.view(m.app.InFlight.Busy())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m *Model) header() string {
	title := titleStyle.Render(" aichat ")
	var status string
	if name := m.app.DisplayName(m.ctx); name != "" {
		status = subtitleStyle.Render(" " + name)
	}
	if m.app.InFlight.Busy() {
		status += quickStyle.Render("  · enviando…")
	}
	return title + status
}

// enterChat switches to the chat screen, hydrating it from the device slot.
func (m *Model) enterChat() tea.Cmd {
	m.screen = screenChat
	m.chat.hydrate(m.ctx)
	return m.chat.focus()
}
