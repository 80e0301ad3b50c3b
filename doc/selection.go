package doc

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrSelectionRestore marks a snapshot whose containers left the document.
// It is logged and never returned to callers.
var ErrSelectionRestore = errors.New("doc: selection container detached")

// Selection is the caret or highlighted span of one editing surface.
type Selection struct {
	Range  Range
	Active bool
}

// Caret returns an active collapsed selection at p.
func Caret(p Point) Selection { return Selection{Range: Collapsed(p), Active: true} }

// Span returns an active selection over r.
func Span(r Range) Selection { return Selection{Range: r, Active: true} }

func (s Selection) IsCollapsed() bool { return s.Range.IsCollapsed() }

// Snapshot records a selection so it can be reinstated after a mutation.
type Snapshot struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int

	startAt, endAt int
	version        uint64
}

// Tracker captures and restores selections across mutations of one tree.
type Tracker struct {
	tree *Tree
	log  *zap.Logger
}

func NewTracker(t *Tree, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{tree: t, log: log}
}

// Snapshot captures sel. ok is false when sel is not active.
func (tr *Tracker) Snapshot(sel Selection) (Snapshot, bool) {
	if !sel.Active || sel.Range.Start.Node == nil {
		return Snapshot{}, false
	}
	r := tr.tree.Normalize(sel.Range)
	return Snapshot{
		StartContainer: r.Start.Node,
		StartOffset:    r.Start.Offset,
		EndContainer:   r.End.Node,
		EndOffset:      r.End.Offset,
		startAt:        tr.tree.OffsetOf(r.Start),
		endAt:          tr.tree.OffsetOf(r.End),
		version:        tr.tree.Version(),
	}, true
}

// Restore reinstates s into sel.
//
// An untouched tree gets the recorded containers back. After a mutation the
// recorded content offsets are mapped onto the current tree. When a
// container is gone the caret moves to the end of the document.
func (tr *Tracker) Restore(sel *Selection, s Snapshot) {
	t := tr.tree
	if s.StartContainer == nil || !t.Contains(s.StartContainer) || !t.Contains(s.EndContainer) {
		tr.log.Debug("selection restore fell back to document end", zap.Error(ErrSelectionRestore))
		*sel = Caret(t.End())
		return
	}

	start := Point{Node: s.StartContainer, Offset: s.StartOffset}
	end := Point{Node: s.EndContainer, Offset: s.EndOffset}
	if s.version == t.Version() && t.ValidPoint(start) && t.ValidPoint(end) {
		*sel = Span(Range{Start: start, End: end})
		return
	}

	if s.startAt == s.endAt {
		*sel = Caret(t.PointAt(s.startAt, Backward))
		return
	}
	*sel = Span(Range{
		Start: t.PointAt(s.startAt, Forward),
		End:   t.PointAt(s.endAt, Backward),
	})
}

// CommonAncestor returns the deepest element containing both ends of r.
func (t *Tree) CommonAncestor(r Range) *html.Node {
	a := r.Start.Node
	if a == nil {
		return t.root
	}
	if a.Type != html.ElementNode {
		a = a.Parent
	}
	for c := a; c != nil; c = c.Parent {
		if isDescendant(r.End.Node, c) {
			return c
		}
	}
	return t.root
}
