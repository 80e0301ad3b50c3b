package editor

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if isWheel(msg) {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if m.dialog != nil || m.prompt != nil {
		return m, nil
	}

	// Resize drags scale cell motion to image pixels.
	px, py := msg.X*m.cfg.CellWidthPx, msg.Y*m.cfg.CellHeightPx

	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if msg.Y < m.toolbarRows() {
			m.clickToolbar(msg.X)
			return m, nil
		}
		y, ok := m.documentRow(msg.Y)
		if !ok {
			return m, nil
		}
		if !m.focused {
			m = m.Focus()
		}
		h := m.ensureLayout().hitTest(msg.X, y)
		if h.handle && m.eng.BeginResizeImage(h.img, px, py) {
			return m, nil
		}
		m.moveTo(h.off, msg.Shift)
		m.dragging = true

	case tea.MouseActionMotion:
		if m.eng.Resizing() {
			m.eng.UpdateResize(px, py)
			return m, nil
		}
		if !m.dragging {
			return m, nil
		}
		top := m.toolbarRows()
		y, _ := m.documentRow(clampInt(msg.Y, top, top+m.viewport.Height-1))
		m.moveTo(m.ensureLayout().hitTest(max(msg.X, 0), y).off, true)
		m.followCursor()

	case tea.MouseActionRelease:
		if m.eng.Resizing() {
			m.eng.EndResize()
		}
		m.dragging = false
	}
	return m, nil
}

// documentRow maps a screen row to a layout row.
func (m Model) documentRow(screenY int) (int, bool) {
	y := screenY - m.toolbarRows()
	if y < 0 || y >= m.viewport.Height {
		return 0, false
	}
	return y + m.viewport.YOffset, true
}

func isWheel(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress &&
		(msg.Button == tea.MouseButtonWheelUp ||
			msg.Button == tea.MouseButtonWheelDown ||
			msg.Button == tea.MouseButtonWheelLeft ||
			msg.Button == tea.MouseButtonWheelRight)
}
