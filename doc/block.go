package doc

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TextBlocks returns the text blocks touched by r in document order.
// Inline content at the top level is wrapped in paragraphs first.
func (t *Tree) TextBlocks(r Range) []*html.Node {
	r = t.Normalize(r)
	if Closest(r.Start.Node, t.root, IsTextBlock) == nil || Closest(r.End.Node, t.root, IsTextBlock) == nil {
		startOff, endOff := t.OffsetOf(r.Start), t.OffsetOf(r.End)
		if r.Start.Node == t.root || r.End.Node == t.root {
			p := t.ensureBlock(r.Start)
			r = Range{Start: p, End: p}
			startOff, endOff = t.OffsetOf(p), t.OffsetOf(p)
		} else {
			wrapInlineRuns(t.root)
			t.touch()
		}
		r = Range{Start: t.PointAt(startOff, Forward), End: t.PointAt(endOff, Backward)}
	}
	start, end := t.OffsetOf(r.Start), t.OffsetOf(r.End)

	var out []*html.Node
	seen := make(map[*html.Node]bool)
	add := func(n *html.Node) {
		b := Closest(n, t.root, IsTextBlock)
		if b != nil && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	add(r.Start.Node)
	t.Walk(func(it Item) bool {
		switch it.Kind {
		case ItemText, ItemVoid:
			if it.At >= start && it.At < end {
				add(it.Node)
			}
		case ItemEnterBlock:
			if it.At > start && it.At <= end && IsTextBlock(it.Node) && !hasTextBlockChild(it.Node) {
				add(it.Node)
			}
		}
		return it.At <= end
	})
	add(r.End.Node)
	return sortInDocumentOrder(t, out)
}

func hasTextBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsBlock(c) {
			return true
		}
	}
	return false
}

func sortInDocumentOrder(t *Tree, nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}
	want := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		want[n] = true
	}
	out := make([]*html.Node, 0, len(nodes))
	t.Walk(func(it Item) bool {
		if it.Kind == ItemEnterBlock && want[it.Node] {
			out = append(out, it.Node)
			delete(want, it.Node)
		}
		return len(want) > 0
	})
	return out
}

// SetBlockType converts the text blocks of r to a, which is a paragraph,
// heading or pre. List items and quotes holding inline content get a
// nested block instead.
func (t *Tree) SetBlockType(r Range, a atom.Atom) {
	for _, b := range t.TextBlocks(r) {
		if b.DataAtom == a {
			continue
		}
		if isElement(b, atom.Li, atom.Blockquote) {
			if a == atom.P {
				continue
			}
			w := NewElement(a)
			moveChildren(w, b, 0)
			b.AppendChild(w)
			continue
		}
		rename(b, a)
	}
	t.touch()
}

// ToggleBlockquote quotes the text blocks of r, or lifts them out of their
// quotes when all of them are quoted already.
func (t *Tree) ToggleBlockquote(r Range) {
	blocks := t.TextBlocks(r)
	if len(blocks) == 0 {
		return
	}
	defer t.touch()

	quoted := true
	for _, b := range blocks {
		if Closest(b, t.root, isQuote) == nil {
			quoted = false
			break
		}
	}
	if quoted {
		seen := make(map[*html.Node]bool)
		for _, b := range blocks {
			q := Closest(b, t.root, isQuote)
			if seen[q] {
				continue
			}
			seen[q] = true
			if hasTextBlockChild(q) {
				t.UnwrapNode(q)
			} else {
				rename(q, atom.P)
			}
		}
		return
	}

	for _, run := range siblingRuns(blocks, func(b *html.Node) bool {
		return Closest(b, t.root, isQuote) == nil
	}) {
		first := run[0]
		if isElement(first, atom.Li) {
			for _, li := range run {
				q := NewElement(atom.Blockquote)
				moveChildren(q, li, 0)
				li.AppendChild(q)
			}
			continue
		}
		q := NewElement(atom.Blockquote)
		first.Parent.InsertBefore(q, first)
		for _, b := range run {
			b.Parent.RemoveChild(b)
			q.AppendChild(b)
		}
	}
}

func isQuote(n *html.Node) bool { return isElement(n, atom.Blockquote) }

// siblingRuns groups blocks accepted by keep into runs of adjacent
// siblings.
func siblingRuns(blocks []*html.Node, keep func(*html.Node) bool) [][]*html.Node {
	var runs [][]*html.Node
	var run []*html.Node
	for _, b := range blocks {
		if !keep(b) {
			continue
		}
		if len(run) > 0 && run[len(run)-1].NextSibling == b {
			run = append(run, b)
			continue
		}
		if len(run) > 0 {
			runs = append(runs, run)
		}
		run = []*html.Node{b}
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

// ToggleList puts the text blocks of r in a list of kind a (ul or ol).
// Blocks already in such a list are lifted out; blocks in a list of the
// other kind get their list converted.
func (t *Tree) ToggleList(r Range, a atom.Atom) {
	blocks := t.TextBlocks(r)
	if len(blocks) == 0 {
		return
	}
	defer t.touch()

	items := make([]*html.Node, len(blocks))
	all, same := true, true
	for i, b := range blocks {
		items[i] = Closest(b, t.root, isListItem)
		if items[i] == nil {
			all = false
			continue
		}
		if items[i].Parent.DataAtom != a {
			same = false
		}
	}

	if all && same {
		seen := make(map[*html.Node]bool)
		for _, li := range items {
			if !seen[li] {
				seen[li] = true
				t.liftListItem(li)
			}
		}
		return
	}

	var loose []*html.Node
	for i, b := range blocks {
		if li := items[i]; li != nil {
			if li.Parent.DataAtom != a {
				rename(li.Parent, a)
			}
			continue
		}
		loose = append(loose, b)
	}
	for _, run := range siblingRuns(loose, func(*html.Node) bool { return true }) {
		first := run[0]
		list := NewElement(a)
		first.Parent.InsertBefore(list, first)
		for _, b := range run {
			li := NewElement(atom.Li)
			b.Parent.RemoveChild(b)
			if isElement(b, atom.P, atom.Div) {
				moveChildren(li, b, 0)
				if style, ok := Attr(b, "style"); ok {
					SetAttr(li, "style", style)
				}
			} else {
				li.AppendChild(b)
			}
			list.AppendChild(li)
		}
		joinAdjacentLists(list)
	}
}

func joinAdjacentLists(list *html.Node) {
	if next := list.NextSibling; next != nil && next.DataAtom == list.DataAtom && IsList(next) {
		moveChildren(list, next, 0)
		detach(next)
	}
	if prev := list.PrevSibling; prev != nil && prev.DataAtom == list.DataAtom && IsList(prev) {
		moveChildren(prev, list, 0)
		detach(list)
	}
}

// SetAlign sets text-align on the text blocks of r.
func (t *Tree) SetAlign(r Range, align string) {
	for _, b := range t.TextBlocks(r) {
		SetStyle(b, "text-align", align)
	}
	t.touch()
}
