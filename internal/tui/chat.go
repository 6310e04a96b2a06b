package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"aichat/internal/api"
	"aichat/internal/app"
	"aichat/internal/storage"
)

const welcomeText = "Olá! Como posso ajudá-lo hoje?"

type chatModel struct {
	app   *app.Application
	vp    viewport.Model
	input textinput.Model
	spin  spinner.Model

	messages       []storage.PersistedMessage
	quickQuestions []string
	title          string
	idChat         *int
	errText        string
	sending        bool
	nextQuick      int
	ready          bool
}

type sendResultMsg struct {
	resp *api.MessageResponse
	err  error
}

func newChatModel(a *app.Application) chatModel {
	input := textinput.New()
	input.Placeholder = "Digite sua mensagem…"
	input.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{app: a, input: input, spin: sp}
}

func (c *chatModel) focus() tea.Cmd {
	return c.input.Focus()
}

func (c *chatModel) resize(width, height int) {
	c.vp = viewport.New(width, maxInt(5, height-7))
	c.ready = true
	c.refreshViewport()
}

// hydrate pulls the transcript from the device slot so closing and reopening
// the screen (or the whole program) resumes the conversation.
func (c *chatModel) hydrate(ctx context.Context) {
	state := c.app.ActiveChat(ctx)
	if state == nil {
		c.messages = nil
		c.quickQuestions = nil
		c.title = ""
		c.idChat = nil
	} else {
		c.messages = state.Messages
		c.quickQuestions = state.QuickQuestions
		c.title = state.Title
		c.idChat = state.IDChat
	}
	c.errText = ""
	c.refreshViewport()
}

func (m *Model) updateChat(msg tea.Msg) tea.Cmd {
	c := &m.chat
	switch msg := msg.(type) {
	case sendResultMsg:
		c.sending = false
		if msg.err != nil {
			c.errText = "Ocorreu um erro ao processar sua mensagem. Tente novamente."
			// The optimistic user message is already on device; re-read so
			// the transcript shows exactly what is persisted.
			c.hydrate(m.ctx)
			return nil
		}
		c.hydrate(m.ctx)
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		c.spin, cmd = c.spin.Update(msg)
		if c.sending {
			return cmd
		}
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.screen = screenMenu
			return nil
		case "ctrl+n":
			_ = m.app.StartNewChat(m.ctx)
			c.hydrate(m.ctx)
			return nil
		case "ctrl+j":
			// Cycle a suggested follow-up into the input.
			if len(c.quickQuestions) > 0 {
				c.input.SetValue(c.quickQuestions[c.nextQuick%len(c.quickQuestions)])
				c.nextQuick++
			}
			return nil
		case "enter":
			text := strings.TrimSpace(c.input.Value())
			if text == "" || c.sending || m.app.InFlight.Busy() {
				return nil
			}
			c.sending = true
			c.errText = ""
			c.input.SetValue("")
			idChat := c.idChat
			// Show the outbound message immediately; the coordinator
			// persists it before the request leaves.
			c.messages = append(c.messages, storage.PersistedMessage{
				ID: "local", Text: text, IsUser: true,
			})
			c.refreshViewport()
			return tea.Batch(
				c.spin.Tick,
				func() tea.Msg {
					resp, err := m.app.SendTo(m.ctx, idChat, text)
					return sendResultMsg{resp: resp, err: err}
				},
			)
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *chatModel) refreshViewport() {
	if !c.ready {
		return
	}
	c.vp.SetContent(c.transcript())
	c.vp.GotoBottom()
}

func (c *chatModel) transcript() string {
	if len(c.messages) == 0 {
		return assistantMsgStyle.Render("assistente: " + welcomeText)
	}
	var b strings.Builder
	for _, msg := range c.messages {
		if msg.IsUser {
			b.WriteString(userMsgStyle.Render("você: " + msg.Text))
		} else {
			b.WriteString(assistantMsgStyle.Render("assistente: " + msg.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (c *chatModel) view() string {
	var b strings.Builder
	if c.title != "" {
		b.WriteString(subtitleStyle.Render(c.title) + "\n")
	}
	if c.ready {
		b.WriteString(c.vp.View() + "\n")
	} else {
		b.WriteString(c.transcript() + "\n")
	}
	if len(c.quickQuestions) > 0 {
		b.WriteString(quickStyle.Render("sugestões: "+strings.Join(c.quickQuestions, " · ")) + "\n")
	}
	if c.errText != "" {
		b.WriteString(errorStyle.Render(c.errText) + "\n")
	}
	if c.sending {
		b.WriteString(c.spin.View() + hintStyle.Render(" aguardando resposta…") + "\n")
	}
	b.WriteString(c.input.View() + "\n")
	b.WriteString(hintStyle.Render("enter envia · ctrl+j sugestão · ctrl+n novo chat · esc menu") + "\n")
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
