package editor

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	graphemeutil "github.com/iw2rmb/inkwell/internal/grapheme"
)

// runKey groups adjacent glyphs that render with the same style.
type runKey struct {
	bold, italic, underline, link bool
	heading                       bool
	img, handle, broken           bool
	selected, cursor              bool
}

func (m *Model) renderContent() string {
	ly := m.ensureLayout()
	st := m.cfg.Style

	lo, hi := min(m.anchor, m.head), max(m.anchor, m.head)
	caret := m.focused && lo == hi && !m.eng.Resizing()
	cy, _, caretOK := ly.caretCell(m.head)

	out := make([]string, 0, len(ly.rows))
	for i, r := range ly.rows {
		var sb strings.Builder
		if r.prefix != "" {
			sb.WriteString(st.Gutter.Render(r.prefix))
		}
		if r.pad > 0 {
			sb.WriteString(strings.Repeat(" ", r.pad))
		}

		var (
			run  strings.Builder
			key  runKey
			open bool
		)
		onEOL := caret && caretOK && cy == i
		flush := func() {
			if open && run.Len() > 0 {
				sb.WriteString(m.runStyle(key).Render(run.String()))
			}
			run.Reset()
			open = false
		}
		for _, g := range r.glyphs {
			k := runKey{
				bold:      g.bold,
				italic:    g.italic,
				underline: g.underline,
				link:      g.link,
				heading:   g.heading > 0,
				img:       g.img != nil && !g.handle,
				handle:    g.handle,
				broken:    g.broken,
			}
			if g.runes > 0 {
				k.selected = g.off >= lo && g.off < hi
				k.cursor = caret && g.off == m.head
				if k.cursor {
					onEOL = false
				}
			}
			if !open || k != key {
				flush()
				key, open = k, true
			}
			run.WriteString(g.text)
		}
		flush()
		if onEOL {
			sb.WriteString(st.Cursor.Render(" "))
		}
		out = append(out, sb.String())
	}
	return strings.Join(out, "\n")
}

func (m *Model) runStyle(k runKey) lipgloss.Style {
	st := m.cfg.Style
	s := st.Text
	switch {
	case k.handle:
		s = st.Handle
	case k.broken:
		s = st.BrokenImage
	case k.img:
		s = st.Image
	case k.heading:
		s = st.Heading
	}
	if k.link {
		s = st.Link.Inherit(s)
	}
	if k.bold {
		s = s.Bold(true)
	}
	if k.italic {
		s = s.Italic(true)
	}
	if k.underline {
		s = s.Underline(true)
	}
	switch {
	case k.cursor:
		s = st.Cursor.Inherit(s)
	case k.selected:
		s = st.Selection.Inherit(s)
	}
	return s
}

// renderStatus shows upload progress, the last error or a status note.
func (m Model) renderStatus() string {
	st := m.cfg.Style
	var s string
	switch {
	case m.err != nil:
		return st.Error.Render(truncate(errorText(m.err), m.width))
	case m.uploads > 0 || len(m.queue) > 0:
		s = m.status
		if n := len(m.queue); n > 0 {
			s += " (" + strconv.Itoa(n) + " queued)"
		}
	case m.eng.Resizing():
		w, h := m.eng.ResizeSize()
		s = "resizing " + strconv.Itoa(w) + "x" + strconv.Itoa(h)
	default:
		s = m.status
	}
	return st.Status.Render(truncate(s, m.width))
}

func truncate(s string, width int) string {
	if width <= 0 || cellWidth(s) <= width {
		return s
	}
	var sb strings.Builder
	w := 0
	for _, c := range graphemeutil.Split(s) {
		cw := graphemeCellWidth(c)
		if w+cw > width-1 {
			break
		}
		sb.WriteString(c)
		w += cw
	}
	sb.WriteString("…")
	return sb.String()
}
