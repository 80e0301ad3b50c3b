package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/inkwell/doc"
	"github.com/iw2rmb/inkwell/engine"
)

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	if m.eng.Resizing() {
		if msg.Type == tea.KeyEsc {
			m.eng.CancelResize()
			m.dragging = false
		}
		return m, nil
	}

	// Paste events insert literal text and never trigger shortcuts. Files
	// dropped onto a terminal arrive as pasted paths.
	if msg.Type == tea.KeyRunes && msg.Paste && len(msg.Runes) > 0 {
		s := string(msg.Runes)
		if paths := imagePaths(s); len(paths) > 0 {
			return m, m.readFiles(paths)
		}
		m.run(engine.CmdInsertText, normalizeNewlines(s))
		return m, nil
	}

	km := m.cfg.KeyMap
	switch {
	case key.Matches(msg, km.Left):
		if m.anchor != m.head {
			m.moveTo(min(m.anchor, m.head), false)
		} else {
			m.moveTo(m.eng.StepLeft(m.head), false)
		}
	case key.Matches(msg, km.Right):
		if m.anchor != m.head {
			m.moveTo(max(m.anchor, m.head), false)
		} else {
			m.moveTo(m.eng.StepRight(m.head), false)
		}
	case key.Matches(msg, km.ShiftLeft):
		m.moveTo(m.eng.StepLeft(m.head), true)
	case key.Matches(msg, km.ShiftRight):
		m.moveTo(m.eng.StepRight(m.head), true)
	case key.Matches(msg, km.WordLeft):
		m.moveTo(m.eng.WordLeft(m.head), false)
	case key.Matches(msg, km.WordRight):
		m.moveTo(m.eng.WordRight(m.head), false)
	case key.Matches(msg, km.ShiftWordLeft):
		m.moveTo(m.eng.WordLeft(m.head), true)
	case key.Matches(msg, km.ShiftWordRight):
		m.moveTo(m.eng.WordRight(m.head), true)
	case key.Matches(msg, km.Up):
		m.moveRows(-1)
	case key.Matches(msg, km.Down):
		m.moveRows(1)
	case key.Matches(msg, km.Home):
		if r, ok := m.caretRow(); ok {
			m.moveTo(r.start, false)
		}
	case key.Matches(msg, km.End):
		if r, ok := m.caretRow(); ok {
			m.moveTo(rowEnd(r), false)
		}
	case key.Matches(msg, km.SelectAll):
		m.anchor, m.head = 0, m.eng.Tree().Len()
		m.eng.SelectOffsets(m.anchor, m.head)

	case key.Matches(msg, km.Backspace):
		m.run(engine.CmdDelete, "")
	case key.Matches(msg, km.Delete):
		m.run(engine.CmdForwardDelete, "")
	case key.Matches(msg, km.DeleteWordBackward):
		if m.anchor == m.head {
			m.moveTo(m.eng.WordLeft(m.head), true)
		}
		m.run(engine.CmdDelete, "")
	case key.Matches(msg, km.LineBreak):
		m.run(engine.CmdInsertLineBreak, "")
	case key.Matches(msg, km.Enter):
		m.run(engine.CmdInsertParagraph, "")

	case key.Matches(msg, km.Bold):
		m.run(engine.CmdBold, "")
	case key.Matches(msg, km.Italic):
		m.run(engine.CmdItalic, "")
	case key.Matches(msg, km.Underline):
		m.run(engine.CmdUnderline, "")
	case key.Matches(msg, km.RemoveFormat):
		m.run(engine.CmdRemoveFormat, "")

	case key.Matches(msg, km.Heading1):
		m.toggleHeading("h1")
	case key.Matches(msg, km.Heading2):
		m.toggleHeading("h2")
	case key.Matches(msg, km.Heading3):
		m.toggleHeading("h3")
	case key.Matches(msg, km.Paragraph):
		m.run(engine.CmdFormatBlock, "p")
	case key.Matches(msg, km.Quote):
		m.run(engine.CmdFormatBlock, "blockquote")
	case key.Matches(msg, km.BulletList):
		m.run(engine.CmdUnorderedList, "")
	case key.Matches(msg, km.OrderedList):
		m.run(engine.CmdOrderedList, "")

	case key.Matches(msg, km.AlignLeft):
		m.run(engine.CmdJustifyLeft, "")
	case key.Matches(msg, km.AlignCenter):
		m.run(engine.CmdJustifyCenter, "")
	case key.Matches(msg, km.AlignRight):
		m.run(engine.CmdJustifyRight, "")
	case key.Matches(msg, km.AlignJustify):
		m.run(engine.CmdJustifyFull, "")

	case key.Matches(msg, km.Link):
		m.openLinkDialog()
	case key.Matches(msg, km.Image):
		m.prompt = newPathPrompt(m.cfg.Style)

	case key.Matches(msg, km.Undo):
		m.run(engine.CmdUndo, "")
	case key.Matches(msg, km.Redo):
		m.run(engine.CmdRedo, "")

	case key.Matches(msg, km.Copy):
		m.copySelection()
	case key.Matches(msg, km.Cut):
		if m.copySelection() {
			m.run(engine.CmdDelete, "")
		}
	case key.Matches(msg, km.Paste):
		cmd := m.pasteClipboard()
		m.followCursor()
		return m, cmd

	case key.Matches(msg, km.Blur):
		return m.Blur(), nil

	default:
		if msg.Type == tea.KeyTab {
			m.run(engine.CmdInsertText, "\t")
			break
		}
		if msg.Type == tea.KeySpace {
			m.run(engine.CmdInsertText, " ")
			break
		}
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt {
			m.run(engine.CmdInsertText, string(msg.Runes))
		}
	}

	m.followCursor()
	return m, nil
}

// run executes a command and reads the resulting selection back.
func (m *Model) run(name engine.Command, arg string) bool {
	if !m.eng.Selection().Active {
		m.eng.Focus()
	}
	ok := m.eng.Execute(name, arg)
	if ok {
		m.err = nil
	}
	m.syncCaret()
	return ok
}

// toggleHeading formats the caret block as tag, or back to a paragraph when
// it already is one.
func (m *Model) toggleHeading(tag string) {
	if m.eng.FormatState().Heading == tag {
		tag = "p"
	}
	m.run(engine.CmdFormatBlock, tag)
}

// moveTo puts the head at off, keeping the anchor when extend is set.
func (m *Model) moveTo(off int, extend bool) {
	off = clampInt(off, 0, m.eng.Tree().Len())
	m.head = off
	if !extend {
		m.anchor = off
	}
	m.eng.SelectOffsets(m.anchor, m.head)
}

func (m *Model) moveRows(delta int) {
	ly := m.ensureLayout()
	y, x, ok := ly.caretCell(m.head)
	if !ok {
		return
	}
	ty := y + delta
	switch {
	case ty < 0:
		m.moveTo(0, false)
	case ty >= len(ly.rows):
		m.moveTo(m.eng.Tree().Len(), false)
	default:
		m.moveTo(ly.hitTest(x, ty).off, false)
	}
}

func (m *Model) caretRow() (row, bool) {
	ly := m.ensureLayout()
	y, _, ok := ly.caretCell(m.head)
	if !ok {
		return row{}, false
	}
	return ly.rows[y], true
}

// rowEnd is the last caret position on r. Wrapped rows end before the
// first offset of the next row.
func rowEnd(r row) int {
	if r.last {
		return r.end
	}
	return max(r.start, r.end-1)
}

func (m *Model) openLinkDialog() {
	if !m.eng.Selection().Active {
		m.eng.Focus()
	}
	m.dialog = newLinkDialog(m.eng.OpenLink(), m.cfg.Style)
}

// selectedText returns the plain text of the selection.
func (m Model) selectedText() string {
	sel := m.eng.Selection()
	if !sel.Active || sel.IsCollapsed() {
		return ""
	}
	t := m.eng.Tree()
	return strings.ReplaceAll(t.TextIn(t.Normalize(sel.Range)), string(doc.ObjectReplacement), "")
}

func (m Model) copySelection() bool {
	s := m.selectedText()
	if s == "" || m.cfg.Clipboard == nil {
		return false
	}
	if err := m.cfg.Clipboard.WriteText(s); err != nil {
		m.log.Debug("clipboard write failed", zap.Error(err))
		return false
	}
	return true
}

func (m *Model) pasteClipboard() tea.Cmd {
	if m.cfg.Clipboard == nil {
		return nil
	}
	s, err := m.cfg.Clipboard.ReadText()
	if err != nil || s == "" {
		return nil
	}
	if paths := imagePaths(s); len(paths) > 0 {
		return m.readFiles(paths)
	}
	m.run(engine.CmdInsertText, normalizeNewlines(s))
	return nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// updateInputs forwards other messages, such as cursor blinks, to the open
// dialog.
func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.dialog != nil:
		cmd = m.dialog.update(msg)
	case m.prompt != nil:
		cmd = m.prompt.update(msg)
	}
	return m, cmd
}
