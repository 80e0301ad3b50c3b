package doc

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ObjectReplacement stands in for an image in Text.
const ObjectReplacement = '\ufffc'

// ItemKind classifies a Walk item.
type ItemKind uint8

const (
	ItemEnterBlock ItemKind = iota
	ItemExitBlock
	ItemText
	ItemVoid
	ItemBoundary
	ItemBreak
)

// Item is one step of the document linearization.
//
// At is the content offset where the item begins: for ItemText the offset of
// its first rune, for ItemVoid the offset of the object, for ItemEnterBlock
// the first offset inside the block, for ItemBoundary the offset of the
// position before child Index of Node, for ItemBreak the offset of the
// separator emitted between blocks.
type Item struct {
	Kind  ItemKind
	Node  *html.Node
	Index int
	At    int
}

type linearizer struct {
	count int
	// pending is set when a block closed and a separator is owed before the
	// next content or block.
	pending bool
	// dirty is set when inline content was emitted since the last separator.
	dirty bool
}

// Walk visits the document in order. It stops when fn returns false.
func (t *Tree) Walk(fn func(Item) bool) {
	l := &linearizer{}
	l.walk(t.root, fn)
}

func (l *linearizer) emitBreak(fn func(Item) bool) bool {
	at := l.count
	l.count++
	l.pending = false
	l.dirty = false
	return fn(Item{Kind: ItemBreak, At: at})
}

func (l *linearizer) walk(n *html.Node, fn func(Item) bool) bool {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !fn(Item{Kind: ItemBoundary, Node: n, Index: i, At: l.count}) {
			return false
		}
		switch {
		case c.Type == html.TextNode:
			if c.Data != "" && l.pending {
				if !l.emitBreak(fn) {
					return false
				}
			}
			if !fn(Item{Kind: ItemText, Node: c, At: l.count}) {
				return false
			}
			if k := runeLen(c.Data); k > 0 {
				l.count += k
				l.dirty = true
			}
		case IsVoid(c):
			if l.pending {
				if !l.emitBreak(fn) {
					return false
				}
			}
			if !fn(Item{Kind: ItemVoid, Node: c, At: l.count}) {
				return false
			}
			l.count++
			l.dirty = true
		case IsBlock(c):
			if l.pending || l.dirty {
				if !l.emitBreak(fn) {
					return false
				}
			}
			if !fn(Item{Kind: ItemEnterBlock, Node: c, At: l.count}) {
				return false
			}
			if !l.walk(c, fn) {
				return false
			}
			l.pending = true
			if !fn(Item{Kind: ItemExitBlock, Node: c, At: l.count}) {
				return false
			}
		case c.Type == html.ElementNode:
			if !l.walk(c, fn) {
				return false
			}
		}
		i++
	}
	return fn(Item{Kind: ItemBoundary, Node: n, Index: i, At: l.count})
}

// Len returns the number of content offsets in the document.
func (t *Tree) Len() int {
	l := &linearizer{}
	l.walk(t.root, func(Item) bool { return true })
	return l.count
}

// OffsetOf maps p to its content offset, or -1 when p is not attached.
func (t *Tree) OffsetOf(p Point) int {
	if p.Node == nil {
		return -1
	}
	out := -1
	t.Walk(func(it Item) bool {
		switch {
		case p.Node.Type == html.TextNode && it.Kind == ItemText && it.Node == p.Node:
			off := p.Offset
			if off < 0 {
				off = 0
			}
			if k := runeLen(p.Node.Data); off > k {
				off = k
			}
			out = it.At + off
			return false
		case it.Kind == ItemBoundary && it.Node == p.Node && it.Index == p.Offset:
			out = it.At
			return false
		}
		return true
	})
	return out
}

// PointAt maps a content offset to a point. Text positions win over element
// positions; aff decides between the end of one text run and the start of
// the next when both share the offset.
func (t *Tree) PointAt(off int, aff Affinity) Point {
	if off < 0 {
		off = 0
	}
	if n := t.Len(); off > n {
		off = n
	}

	var (
		text     Point
		haveText bool
		elem     Point
		haveElem bool
		rootPos  Point
		haveRoot bool
	)
	t.Walk(func(it Item) bool {
		switch it.Kind {
		case ItemText:
			k := runeLen(it.Node.Data)
			if k == 0 {
				return true
			}
			if aff == Forward && it.At <= off && off < it.At+k {
				text, haveText = Point{Node: it.Node, Offset: off - it.At}, true
				return false
			}
			if aff == Backward && it.At <= off && off <= it.At+k && !haveText {
				text, haveText = Point{Node: it.Node, Offset: off - it.At}, true
				return false
			}
			if aff == Forward && off == it.At+k && !haveText {
				// Remember the end of this run in case nothing follows.
				text = Point{Node: it.Node, Offset: k}
				haveText = true
			}
		case ItemBoundary:
			if it.At != off {
				return true
			}
			if it.Node == t.root {
				if !haveRoot {
					rootPos, haveRoot = Point{Node: it.Node, Offset: it.Index}, true
				}
				return true
			}
			if IsList(it.Node) {
				return true
			}
			if !haveElem {
				elem, haveElem = Point{Node: it.Node, Offset: it.Index}, true
			}
		case ItemVoid, ItemBreak, ItemEnterBlock:
			if aff == Forward && haveText && it.At > off {
				return false
			}
		}
		return true
	})
	switch {
	case haveText:
		return text
	case haveElem:
		return elem
	case haveRoot:
		return rootPos
	}
	return Point{Node: t.root, Offset: childCount(t.root)}
}

// Normalize orders r's endpoints by content offset.
func (t *Tree) Normalize(r Range) Range {
	if t.OffsetOf(r.Start) > t.OffsetOf(r.End) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Text returns the linearized document: runes for text, '\n' for line
// breaks and block separators, ObjectReplacement for images.
func (t *Tree) Text() string {
	var sb strings.Builder
	t.Walk(func(it Item) bool {
		switch it.Kind {
		case ItemBreak:
			sb.WriteByte('\n')
		case ItemText:
			sb.WriteString(it.Node.Data)
		case ItemVoid:
			if it.Node.DataAtom == atom.Img {
				sb.WriteRune(ObjectReplacement)
			} else {
				sb.WriteByte('\n')
			}
		}
		return true
	})
	return sb.String()
}

// TextIn returns the linearized text between two offsets.
func (t *Tree) TextIn(r Range) string {
	r = t.Normalize(r)
	start, end := t.OffsetOf(r.Start), t.OffsetOf(r.End)
	if start < 0 || end <= start {
		return ""
	}
	rs := []rune(t.Text())
	if end > len(rs) {
		end = len(rs)
	}
	return string(rs[start:end])
}
