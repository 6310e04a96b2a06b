package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginModel struct {
	user    textinput.Model
	pass    textinput.Model
	focused int
	busy    bool
	notice  string
	errText string
}

type loginResultMsg struct {
	err error
}

func newLoginModel() loginModel {
	user := textinput.New()
	user.Placeholder = "usuário"
	user.CharLimit = 64
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "senha"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	return loginModel{user: user, pass: pass}
}

func (l *loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (l *loginModel) focus() tea.Cmd {
	l.focused = 0
	l.pass.Blur()
	return l.user.Focus()
}

func (m *Model) updateLogin(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.errText = "Falha no login. Verifique usuário e senha."
			return nil
		}
		m.login.errText = ""
		m.login.notice = ""
		m.login.pass.SetValue("")
		m.screen = screenMenu
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if m.login.focused == 0 {
				m.login.focused = 1
				m.login.user.Blur()
				return m.login.pass.Focus()
			}
			m.login.focused = 0
			m.login.pass.Blur()
			return m.login.user.Focus()

		case "enter":
			if m.login.busy {
				return nil
			}
			if m.login.focused == 0 {
				m.login.focused = 1
				m.login.user.Blur()
				return m.login.pass.Focus()
			}
			user := m.login.user.Value()
			pass := m.login.pass.Value()
			if user == "" || pass == "" {
				m.login.errText = "Preencha usuário e senha."
				return nil
			}
			m.login.busy = true
			m.login.errText = ""
			return func() tea.Msg {
				return loginResultMsg{err: m.app.Login(m.ctx, user, pass)}
			}
		}
	}

	var cmd tea.Cmd
	if m.login.focused == 0 {
		m.login.user, cmd = m.login.user.Update(msg)
	} else {
		m.login.pass, cmd = m.login.pass.Update(msg)
	}
	return cmd
}

func (l *loginModel) view() string {
	out := "\n" + boxStyle.Render(
		"Entrar\n\n"+l.user.View()+"\n"+l.pass.View(),
	) + "\n"
	if l.notice != "" {
		out += quickStyle.Render(l.notice) + "\n"
	}
	if l.errText != "" {
		out += errorStyle.Render(l.errText) + "\n"
	}
	if l.busy {
		out += hintStyle.Render("autenticando…") + "\n"
	} else {
		out += hintStyle.Render("enter envia · tab alterna campos · ctrl+c sai") + "\n"
	}
	return out
}
