package editor

import (
	"strings"

	"github.com/iw2rmb/inkwell/engine"
)

type tool struct {
	label  string
	active func(engine.FormatState) bool
	apply  func(m *Model)
}

func command(name engine.Command, arg string) func(*Model) {
	return func(m *Model) { m.run(name, arg) }
}

func heading(tag string) tool {
	return tool{
		label:  strings.ToUpper(tag),
		active: func(s engine.FormatState) bool { return s.Heading == tag },
		apply:  func(m *Model) { m.toggleHeading(tag) },
	}
}

func aligned(label, align string, name engine.Command) tool {
	return tool{
		label:  label,
		active: func(s engine.FormatState) bool { return s.Align == align },
		apply:  command(name, ""),
	}
}

var tools = []tool{
	{label: "B", active: func(s engine.FormatState) bool { return s.Bold }, apply: command(engine.CmdBold, "")},
	{label: "I", active: func(s engine.FormatState) bool { return s.Italic }, apply: command(engine.CmdItalic, "")},
	{label: "U", active: func(s engine.FormatState) bool { return s.Underline }, apply: command(engine.CmdUnderline, "")},
	heading("h1"),
	heading("h2"),
	heading("h3"),
	{label: "P", apply: command(engine.CmdFormatBlock, "p")},
	{label: "Q", apply: command(engine.CmdFormatBlock, "blockquote")},
	{label: "UL", active: func(s engine.FormatState) bool { return s.List == engine.ListUnordered }, apply: command(engine.CmdUnorderedList, "")},
	{label: "OL", active: func(s engine.FormatState) bool { return s.List == engine.ListOrdered }, apply: command(engine.CmdOrderedList, "")},
	aligned("L", "left", engine.CmdJustifyLeft),
	aligned("C", "center", engine.CmdJustifyCenter),
	aligned("R", "right", engine.CmdJustifyRight),
	aligned("J", "justify", engine.CmdJustifyFull),
	{label: "Link", active: func(s engine.FormatState) bool { return s.Link }, apply: (*Model).openLinkDialog},
	{label: "Img", apply: func(m *Model) { m.prompt = newPathPrompt(m.cfg.Style) }},
	{label: "Undo", apply: command(engine.CmdUndo, "")},
	{label: "Redo", apply: command(engine.CmdRedo, "")},
}

// zone is the cell span [x0, x1) of one toolbar button.
type zone struct {
	x0, x1 int
	tool   int
}

func toolbarZones() []zone {
	out := make([]zone, 0, len(tools))
	x := 0
	for i, t := range tools {
		w := cellWidth(t.label) + 2
		out = append(out, zone{x0: x, x1: x + w, tool: i})
		x += w
	}
	return out
}

func (m Model) renderToolbar() string {
	st := m.cfg.Style
	state := m.eng.FormatState()
	var sb strings.Builder
	for _, t := range tools {
		s := st.Button
		if m.focused && t.active != nil && t.active(state) {
			s = st.ButtonActive
		}
		sb.WriteString(s.Render(" " + t.label + " "))
	}
	return st.Toolbar.Render(sb.String())
}

// clickToolbar runs the button under column x.
func (m *Model) clickToolbar(x int) bool {
	for _, z := range toolbarZones() {
		if x >= z.x0 && x < z.x1 {
			if !m.focused {
				m.focused = true
				m.eng.Focus()
			}
			tools[z.tool].apply(m)
			return true
		}
	}
	return false
}
