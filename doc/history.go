package doc

type historyEntry struct {
	markup  string
	start   int
	end     int
	active  bool
	version uint64
}

// History is a bounded undo/redo stack of document snapshots.
type History struct {
	limit int
	undo  []historyEntry
	redo  []historyEntry
}

// NewHistory returns a history keeping at most limit undo steps
// (default 1000).
func NewHistory(limit int) *History {
	if limit == 0 {
		limit = 1000
	}
	return &History{limit: limit}
}

func (h *History) entry(t *Tree, sel Selection) historyEntry {
	e := historyEntry{markup: t.Markup(), active: sel.Active, version: t.Version()}
	if sel.Active {
		r := t.Normalize(sel.Range)
		e.start, e.end = t.OffsetOf(r.Start), t.OffsetOf(r.End)
	}
	return e
}

// Record stores the state before a mutation and clears the redo stack.
func (h *History) Record(t *Tree, sel Selection) {
	if h.limit <= 0 {
		return
	}
	e := h.entry(t, sel)
	if n := len(h.undo); n > 0 && h.undo[n-1].version == e.version {
		return
	}
	h.undo = append(h.undo, e)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

// Undo restores the previous state into t and sel.
func (h *History) Undo(t *Tree, sel *Selection) bool {
	if len(h.undo) == 0 {
		return false
	}
	cur := h.entry(t, *sel)
	i := len(h.undo) - 1
	prev := h.undo[i]
	h.undo = h.undo[:i]
	h.redo = append(h.redo, cur)
	h.restore(t, sel, prev)
	return true
}

// Redo reapplies the most recently undone state.
func (h *History) Redo(t *Tree, sel *Selection) bool {
	if len(h.redo) == 0 {
		return false
	}
	cur := h.entry(t, *sel)
	i := len(h.redo) - 1
	next := h.redo[i]
	h.redo = h.redo[:i]
	if h.limit > 0 {
		h.undo = append(h.undo, cur)
		if len(h.undo) > h.limit {
			h.undo = h.undo[len(h.undo)-h.limit:]
		}
	}
	h.restore(t, sel, next)
	return true
}

func (h *History) restore(t *Tree, sel *Selection, e historyEntry) {
	_ = t.SetMarkup(e.markup)
	if !e.active {
		*sel = Caret(t.End())
		return
	}
	if e.start == e.end {
		*sel = Caret(t.PointAt(e.start, Backward))
		return
	}
	*sel = Span(Range{Start: t.PointAt(e.start, Forward), End: t.PointAt(e.end, Backward)})
}
