package doc

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InlineFormat is a toggleable character format.
type InlineFormat uint8

const (
	Bold InlineFormat = iota
	Italic
	Underline
)

func (f InlineFormat) String() string {
	switch f {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	}
	return "unknown"
}

// Tag is the element used to apply f.
func (f InlineFormat) Tag() atom.Atom {
	switch f {
	case Italic:
		return atom.I
	case Underline:
		return atom.U
	}
	return atom.B
}

// Marks reports whether n is an element that applies f through markup.
func (f InlineFormat) Marks(n *html.Node) bool {
	switch f {
	case Bold:
		return isElement(n, atom.B, atom.Strong)
	case Italic:
		return isElement(n, atom.I, atom.Em)
	case Underline:
		return isElement(n, atom.U)
	}
	return false
}

// Styles reports whether n renders with f, counting markup, inline styles
// and the defaults of headings and links.
func (f InlineFormat) Styles(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if f.Marks(n) {
		return true
	}
	switch f {
	case Bold:
		if HeadingLevel(n) > 0 {
			return true
		}
		return isBoldWeight(Style(n, "font-weight"))
	case Italic:
		v := Style(n, "font-style")
		return v == "italic" || v == "oblique"
	case Underline:
		if strings.Contains(Style(n, "text-decoration"), "underline") {
			return true
		}
		return isElement(n, atom.A) && Style(n, "text-decoration") == ""
	}
	return false
}

func isBoldWeight(v string) bool {
	switch v {
	case "bold", "bolder":
		return true
	}
	w, err := strconv.Atoi(v)
	return err == nil && w >= 600
}

// IsMarked reports whether n sits inside an element applying f below its
// block.
func IsMarked(n *html.Node, f InlineFormat) bool {
	for c := n; c != nil && !IsBlock(c); c = c.Parent {
		if f.Marks(c) {
			return true
		}
	}
	return false
}

// IsStyled reports whether n, or any ancestor, renders with f.
func IsStyled(n *html.Node, f InlineFormat) bool {
	for c := n; c != nil; c = c.Parent {
		if f.Styles(c) {
			return true
		}
	}
	return false
}

// units returns the highest inline nodes whose content lies entirely within
// [start, end), in document order.
func (t *Tree) units(start, end int) []*html.Node {
	var leaves []*html.Node
	t.Walk(func(it Item) bool {
		switch it.Kind {
		case ItemText:
			if k := runeLen(it.Node.Data); k > 0 && it.At >= start && it.At+k <= end {
				leaves = append(leaves, it.Node)
			}
		case ItemVoid:
			if it.At >= start && it.At < end {
				leaves = append(leaves, it.Node)
			}
		}
		return it.At <= end
	})

	in := make(map[*html.Node]bool, len(leaves))
	for _, l := range leaves {
		in[l] = true
	}
	var covered func(n *html.Node) bool
	covered = func(n *html.Node) bool {
		found := false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode && c.Data == "":
			case c.Type == html.TextNode || IsVoid(c):
				if !in[c] {
					return false
				}
				found = true
			case c.Type == html.ElementNode:
				if hasContent(c) {
					if !covered(c) {
						return false
					}
					found = true
				}
			}
		}
		return found
	}

	var out []*html.Node
	seen := make(map[*html.Node]bool)
	for _, l := range leaves {
		u := l
		for p := u.Parent; p != nil && p != t.root && !IsBlock(p) && covered(p); p = p.Parent {
			u = p
		}
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// Leaves returns text nodes and void elements inside r.
func (t *Tree) Leaves(r Range) []*html.Node {
	r = t.Normalize(r)
	return t.leavesBetween(t.OffsetOf(r.Start), t.OffsetOf(r.End))
}

func (t *Tree) leavesBetween(start, end int) []*html.Node {
	var out []*html.Node
	t.Walk(func(it Item) bool {
		switch it.Kind {
		case ItemText:
			k := runeLen(it.Node.Data)
			if k > 0 && it.At < end && it.At+k > start {
				out = append(out, it.Node)
			}
		case ItemVoid:
			if it.At >= start && it.At < end {
				out = append(out, it.Node)
			}
		}
		return it.At <= end
	})
	return out
}

// WrapRange wraps the inline content of r in elements built by mk, one per
// run of adjacent siblings, and returns the wrappers. Nodes for which skip
// returns true are left alone; skip may be nil.
func (t *Tree) WrapRange(r Range, mk func() *html.Node, skip func(*html.Node) bool) []*html.Node {
	r = t.Normalize(r)
	start, end := t.OffsetOf(r.Start), t.OffsetOf(r.End)
	if start < 0 || end <= start {
		return nil
	}
	t.splitTextAt(end)
	t.splitTextAt(start)

	var out []*html.Node
	var cur *html.Node
	for _, u := range t.units(start, end) {
		if skip != nil && skip(u) {
			cur = nil
			continue
		}
		parent := u.Parent
		if cur != nil && u.PrevSibling == cur {
			parent.RemoveChild(u)
			cur.AppendChild(u)
			continue
		}
		cur = mk()
		parent.InsertBefore(cur, u)
		parent.RemoveChild(u)
		cur.AppendChild(u)
		out = append(out, cur)
	}
	t.touch()
	return out
}

// UnwrapMatching removes every element matching match from the content of
// r. Matching elements that extend beyond r are split so that content
// outside r keeps them.
func (t *Tree) UnwrapMatching(r Range, match func(*html.Node) bool) {
	r = t.Normalize(r)
	start, end := t.OffsetOf(r.Start), t.OffsetOf(r.End)
	if start < 0 || end <= start {
		return
	}
	t.splitTextAt(end)
	t.splitTextAt(start)

	for {
		f := t.firstMatchIn(start, end, match)
		if f == nil {
			break
		}
		fs, fe := t.OffsetOf(Point{Node: f, Offset: 0}), t.OffsetOf(Point{Node: f, Offset: childCount(f)})
		if fe > end {
			if p, ok := t.pointWithin(f, end); ok {
				splitTo(p, f.Parent, false)
			}
		}
		if fs < start {
			if p, ok := t.pointWithin(f, start); ok {
				splitTo(p, f.Parent, false)
				f = f.NextSibling
			}
		}
		t.UnwrapNode(f)
	}
	pruneEmptyInline(t.root)
	t.touch()
}

func (t *Tree) firstMatchIn(start, end int, match func(*html.Node) bool) *html.Node {
	for _, leaf := range t.leavesBetween(start, end) {
		for c := leaf; c != nil && c != t.root && !IsBlock(c); c = c.Parent {
			if match(c) {
				return c
			}
		}
	}
	return nil
}

// pointWithin returns a position inside f at content offset off.
func (t *Tree) pointWithin(f *html.Node, off int) (Point, bool) {
	var p Point
	ok := false
	t.Walk(func(it Item) bool {
		switch it.Kind {
		case ItemBoundary:
			if it.At == off && isDescendant(it.Node, f) {
				p, ok = Point{Node: it.Node, Offset: it.Index}, true
				return false
			}
		case ItemText:
			k := runeLen(it.Node.Data)
			if it.At < off && off < it.At+k && isDescendant(it.Node, f) {
				p, ok = Point{Node: it.Node, Offset: off - it.At}, true
				return false
			}
		}
		return it.At <= off
	})
	return p, ok
}

func isDescendant(n, of *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c == of {
			return true
		}
	}
	return false
}

// HasFormat reports whether every leaf of r is marked with f.
func (t *Tree) HasFormat(r Range, f InlineFormat) bool {
	leaves := t.Leaves(r)
	if len(leaves) == 0 {
		return false
	}
	for _, l := range leaves {
		if !IsMarked(l, f) {
			return false
		}
	}
	return true
}

// ApplyFormat marks the content of r with f.
func (t *Tree) ApplyFormat(r Range, f InlineFormat) {
	t.WrapRange(r, func() *html.Node { return NewElement(f.Tag()) }, func(n *html.Node) bool {
		return IsMarked(n, f)
	})
}

// ClearFormat removes f from the content of r.
func (t *Tree) ClearFormat(r Range, f InlineFormat) {
	t.UnwrapMatching(r, f.Marks)
}

// ClearAllFormats removes every inline format and styling span from r.
func (t *Tree) ClearAllFormats(r Range) {
	t.UnwrapMatching(r, func(n *html.Node) bool {
		return Bold.Marks(n) || Italic.Marks(n) || Underline.Marks(n) || isElement(n, atom.Span)
	})
}
