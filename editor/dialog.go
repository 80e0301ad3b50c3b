package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/inkwell/engine"
)

const dialogWidth = 44

// linkDialog edits the fields of an open engine.LinkDialog.
type linkDialog struct {
	link    *engine.LinkDialog
	url     textinput.Model
	text    textinput.Model
	focus   int
	invalid bool
	style   *Style
}

func newInput(prompt, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.CharLimit = 2048
	ti.Width = dialogWidth - lipgloss.Width(prompt) - 1
	ti.SetValue(value)
	return ti
}

func newLinkDialog(d *engine.LinkDialog, st *Style) *linkDialog {
	ld := &linkDialog{
		link:  d,
		url:   newInput("URL  ", d.URL),
		text:  newInput("Text ", d.Text),
		style: st,
	}
	ld.url.Placeholder = "https://"
	ld.url.Focus()
	return ld
}

func (d *linkDialog) switchFocus() {
	d.focus = 1 - d.focus
	if d.focus == 0 {
		d.text.Blur()
		d.url.Focus()
	} else {
		d.url.Blur()
		d.text.Focus()
	}
}

func (d *linkDialog) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if d.focus == 0 {
		before := d.url.Value()
		d.url, cmd = d.url.Update(msg)
		if d.url.Value() != before {
			d.invalid = false
		}
	} else {
		d.text, cmd = d.text.Update(msg)
	}
	return cmd
}

func (m Model) updateDialog(msg tea.KeyMsg) (Model, tea.Cmd) {
	d := m.dialog
	switch msg.String() {
	case "esc":
		m.eng.CancelLink()
		m.dialog = nil
	case "tab", "shift+tab", "up", "down":
		d.switchFocus()
	case "ctrl+r":
		if d.link.Mode() == engine.LinkUpdate && m.eng.RemoveLink() {
			m.dialog = nil
			m.err = nil
			m.status = "link " + engine.LinkRemoved.String()
			m.syncCaret()
		}
	case "enter":
		out, err := m.eng.SubmitLink(d.url.Value(), d.text.Value())
		if err != nil {
			d.invalid = true
			m.err = err
			return m, nil
		}
		m.dialog = nil
		m.err = nil
		m.status = "link " + out.String()
		m.syncCaret()
		m.followCursor()
	default:
		return m, d.update(msg)
	}
	return m, nil
}

func (m Model) renderDialog() string {
	d := m.dialog
	st := d.style
	title := "Insert link"
	help := "enter apply · tab switch · esc cancel"
	if d.link.Mode() == engine.LinkUpdate {
		title = "Edit link"
		help += " · ctrl+r remove"
	}
	lines := []string{
		st.DialogTitle.Render(title),
		"",
		d.url.View(),
		d.text.View(),
	}
	if d.invalid {
		lines = append(lines, st.DialogInvalid.Render(errorText(engine.ErrInvalidURL)))
	}
	lines = append(lines, "", st.DialogHelp.Render(help))
	return st.Dialog.Width(dialogWidth).Render(strings.Join(lines, "\n"))
}
