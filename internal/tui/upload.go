package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"aichat/internal/api"
)

// uploadModel sends a local file for analysis. Submission is gated on the
// in-flight registry so a chat send and an upload never run concurrently
// against the same conversation slot.
type uploadModel struct {
	path        textinput.Model
	observation textinput.Model
	focused     int
	busy        bool
	errText     string
	result      *api.UploadResponse
}

type uploadResultMsg struct {
	resp *api.UploadResponse
	err  error
}

func newUploadModel() uploadModel {
	path := textinput.New()
	path.Placeholder = "/caminho/do/arquivo.pdf"
	path.CharLimit = 512

	obs := textinput.New()
	obs.Placeholder = "observação (opcional)"
	obs.CharLimit = 500

	return uploadModel{path: path, observation: obs}
}

func (u *uploadModel) focus() tea.Cmd {
	u.focused = 0
	u.observation.Blur()
	u.result = nil
	u.errText = ""
	return u.path.Focus()
}

func (m *Model) updateUpload(msg tea.Msg) tea.Cmd {
	u := &m.upload
	switch msg := msg.(type) {
	case uploadResultMsg:
		u.busy = false
		if msg.err != nil {
			u.errText = "Falha no envio do arquivo."
			return nil
		}
		u.result = msg.resp
		u.path.SetValue("")
		u.observation.SetValue("")
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.screen = screenMenu
			return nil
		case "tab", "shift+tab":
			if u.focused == 0 {
				u.focused = 1
				u.path.Blur()
				return u.observation.Focus()
			}
			u.focused = 0
			u.observation.Blur()
			return u.path.Focus()
		case "ctrl+g":
			// Jump into the conversation the upload opened.
			if u.result != nil {
				return m.enterChat()
			}
			return nil
		case "enter":
			if u.busy || m.app.InFlight.Busy() {
				return nil
			}
			path := strings.TrimSpace(u.path.Value())
			if path == "" {
				u.errText = "Informe o caminho do arquivo."
				return nil
			}
			u.busy = true
			u.errText = ""
			obs := u.observation.Value()
			return func() tea.Msg {
				resp, err := m.app.Upload(m.ctx, path, obs)
				return uploadResultMsg{resp: resp, err: err}
			}
		}
	}

	var cmd tea.Cmd
	if u.focused == 0 {
		u.path, cmd = u.path.Update(msg)
	} else {
		u.observation, cmd = u.observation.Update(msg)
	}
	return cmd
}

func (u *uploadModel) view(chatBusy bool) string {
	var b strings.Builder
	b.WriteString("\n" + subtitleStyle.Render("Enviar Arquivo") + "\n\n")
	b.WriteString(u.path.View() + "\n")
	b.WriteString(u.observation.View() + "\n")

	if chatBusy && !u.busy {
		b.WriteString(quickStyle.Render("aguarde: há uma mensagem em andamento") + "\n")
	}
	if u.busy {
		b.WriteString(hintStyle.Render("enviando…") + "\n")
	}
	if u.errText != "" {
		b.WriteString(errorStyle.Render(u.errText) + "\n")
	}
	if r := u.result; r != nil {
		b.WriteString("\n" + boxStyle.Render(u.summary(r)) + "\n")
		if r.IDChat != nil || r.AIOverview != "" {
			b.WriteString(hintStyle.Render("ctrl+g abre o chat sobre este arquivo") + "\n")
		}
	}
	b.WriteString("\n" + hintStyle.Render("enter envia · tab alterna campos · esc menu") + "\n")
	return b.String()
}

func (u *uploadModel) summary(r *api.UploadResponse) string {
	var parts []string
	if r.FileName != "" {
		parts = append(parts, "arquivo: "+r.FileName)
	}
	if r.SizeBytes > 0 {
		parts = append(parts, fmt.Sprintf("tamanho: %d bytes", r.SizeBytes))
	}
	if r.Titulo != "" {
		parts = append(parts, "título: "+r.Titulo)
	}
	if r.AIOverview != "" {
		parts = append(parts, "", r.AIOverview)
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("arquivo #%d enviado", r.IDFile))
	}
	return strings.Join(parts, "\n")
}
