package doc

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// boundary turns p into an element position, splitting a text node when p
// falls inside it.
func boundary(p Point) (*html.Node, int) {
	if p.Node.Type != html.TextNode {
		return p.Node, p.Offset
	}
	parent, idx := p.Node.Parent, indexOf(p.Node)
	switch k := runeLen(p.Node.Data); {
	case p.Offset <= 0:
		return parent, idx
	case p.Offset >= k:
		return parent, idx + 1
	default:
		splitText(p.Node, p.Offset)
		return parent, idx + 1
	}
}

// holderFor returns the block that must wrap inline content inserted
// directly into parent, or nil when parent accepts inline content.
func (t *Tree) holderFor(parent *html.Node) *html.Node {
	switch {
	case parent == t.root:
		return NewElement(atom.P)
	case IsList(parent):
		return NewElement(atom.Li)
	}
	return nil
}

// InsertText inserts s at p and returns the point after it.
func (t *Tree) InsertText(p Point, s string) Point {
	if s == "" {
		return p
	}
	defer t.touch()

	if p.Node.Type == html.TextNode {
		head, tail := splitRunes(p.Node.Data, p.Offset)
		p.Node.Data = head + s + tail
		return Point{Node: p.Node, Offset: runeLen(head) + runeLen(s)}
	}

	parent, idx := p.Node, p.Offset
	if prev := childAt(parent, idx-1); prev != nil && prev.Type == html.TextNode {
		k := runeLen(prev.Data)
		prev.Data += s
		return Point{Node: prev, Offset: k + runeLen(s)}
	}
	if next := childAt(parent, idx); next != nil && next.Type == html.TextNode {
		next.Data = s + next.Data
		return Point{Node: next, Offset: runeLen(s)}
	}

	n := NewText(s)
	if holder := t.holderFor(parent); holder != nil {
		holder.AppendChild(n)
		insertAt(parent, holder, idx)
	} else {
		insertAt(parent, n, idx)
	}
	return Point{Node: n, Offset: runeLen(s)}
}

// InsertNode inserts n at p and returns the point right after it.
func (t *Tree) InsertNode(p Point, n *html.Node) Point {
	defer t.touch()

	parent, idx := boundary(p)
	if !IsBlock(n) {
		if holder := t.holderFor(parent); holder != nil {
			holder.AppendChild(n)
			insertAt(parent, holder, idx)
			return Point{Node: holder, Offset: 1}
		}
	}
	insertAt(parent, n, idx)
	return Point{Node: parent, Offset: idx + 1}
}

// InsertLineBreak inserts a <br> at p.
func (t *Tree) InsertLineBreak(p Point) Point {
	return t.InsertNode(p, NewElement(atom.Br))
}

// UnwrapNode replaces n with its children.
func (t *Tree) UnwrapNode(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
	t.touch()
}

// RemoveNode detaches n from the document.
func (t *Tree) RemoveNode(n *html.Node) {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
	t.touch()
}

// DeleteRange removes the content of r, joining the blocks at its edges,
// and returns the collapsed caret.
func (t *Tree) DeleteRange(r Range) Point {
	r = t.Normalize(r)
	if r.IsCollapsed() {
		return r.Start
	}
	defer t.touch()

	startOff := t.OffsetOf(r.Start)
	if s, e := r.Start, r.End; s.Node == e.Node && s.Node.Type == html.TextNode {
		rs := []rune(s.Node.Data)
		a, b := clampInt(s.Offset, 0, len(rs)), clampInt(e.Offset, 0, len(rs))
		s.Node.Data = string(rs[:a]) + string(rs[b:])
		if s.Node.Data != "" {
			return Point{Node: s.Node, Offset: a}
		}
		pruneEmptyInline(t.root)
		return t.PointAt(startOff, Backward)
	}

	root := t.root
	ei := splitTo(r.End, root, true)
	before := childCount(root)
	si := splitTo(r.Start, root, true)
	ei += childCount(root) - before

	for i := si; i < ei; i++ {
		if c := childAt(root, si); c != nil {
			root.RemoveChild(c)
		}
	}
	if r.Start.Node != root && r.End.Node != root {
		if left, right := childAt(root, si-1), childAt(root, si); left != nil && right != nil {
			mergeBlocks(left, right)
		}
	}
	pruneEmptyInline(root)
	return t.PointAt(startOff, Backward)
}

// SplitBlock splits the text block at p, as Enter does, and returns the
// first position of the new block.
func (t *Tree) SplitBlock(p Point) Point {
	p = t.ensureBlock(p)
	defer t.touch()

	if li := Closest(p.Node, t.root, isListItem); li != nil && !hasContent(li) {
		blocks := t.liftListItem(li)
		return Point{Node: blocks[0], Offset: 0}
	}

	block := Closest(p.Node, t.root, IsTextBlock)
	off := t.OffsetOf(p)
	parent := block.Parent
	idx := splitTo(p, parent, true)
	right := childAt(parent, idx)
	pruneEmptyInline(block)
	pruneEmptyInline(right)
	if HeadingLevel(right) > 0 && !hasContent(right) {
		rename(right, atom.P)
	}
	return t.PointAt(off+1, Forward)
}

// ensureBlock wraps top-level inline content around p in a paragraph.
func (t *Tree) ensureBlock(p Point) Point {
	if Closest(p.Node, t.root, IsTextBlock) != nil {
		return p
	}
	if p.Node == t.root || IsList(p.Node) {
		holder := t.holderFor(p.Node)
		insertAt(p.Node, holder, p.Offset)
		t.touch()
		return Point{Node: holder, Offset: 0}
	}
	wrapInlineRuns(t.root)
	t.touch()
	return p
}

func isListItem(n *html.Node) bool { return isElement(n, atom.Li) }

// liftListItem moves li out of its list as paragraph content placed where
// the item was, splitting the list around it.
func (t *Tree) liftListItem(li *html.Node) []*html.Node {
	list := li.Parent
	if idx := indexOf(li); idx > 0 {
		right := shallowClone(list)
		moveChildren(right, list, idx)
		list.Parent.InsertBefore(right, list.NextSibling)
		list = right
	}

	var blocks []*html.Node
	var run *html.Node
	for c := li.FirstChild; c != nil; c = li.FirstChild {
		li.RemoveChild(c)
		if IsBlock(c) {
			run = nil
			blocks = append(blocks, c)
			continue
		}
		if run == nil {
			run = NewElement(atom.P)
			if style, ok := Attr(li, "style"); ok {
				SetAttr(run, "style", style)
			}
			blocks = append(blocks, run)
		}
		run.AppendChild(c)
	}
	if len(blocks) == 0 {
		blocks = append(blocks, NewElement(atom.P))
	}
	for _, b := range blocks {
		list.Parent.InsertBefore(b, list)
	}
	list.RemoveChild(li)
	if list.FirstChild == nil {
		detach(list)
	}
	t.touch()
	return blocks
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
