package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// pathPrompt asks for the paths of image files to insert.
type pathPrompt struct {
	input textinput.Model
	style *Style
}

func newPathPrompt(st *Style) *pathPrompt {
	p := &pathPrompt{input: newInput("Path ", ""), style: st}
	p.input.Placeholder = "~/Pictures/photo.png"
	p.input.Focus()
	return p
}

func (p *pathPrompt) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = nil
	case "enter":
		paths := splitPaths(strings.TrimSpace(m.prompt.input.Value()))
		m.prompt = nil
		if len(paths) == 0 {
			return m, nil
		}
		return m, m.readFiles(paths)
	default:
		return m, m.prompt.update(msg)
	}
	return m, nil
}

func (m Model) renderPrompt() string {
	st := m.prompt.style
	lines := []string{
		st.DialogTitle.Render("Insert image"),
		"",
		m.prompt.input.View(),
		"",
		st.DialogHelp.Render("enter insert · esc cancel"),
	}
	return st.Dialog.Width(dialogWidth).Render(strings.Join(lines, "\n"))
}
