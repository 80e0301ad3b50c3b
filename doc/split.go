package doc

import "golang.org/x/net/html"

// splitText splits text node n at rune offset off. n keeps the prefix and
// the returned node, inserted after n, holds the suffix.
func splitText(n *html.Node, off int) *html.Node {
	head, tail := splitRunes(n.Data, off)
	n.Data = head
	rest := NewText(tail)
	n.Parent.InsertBefore(rest, n.NextSibling)
	return rest
}

// splitTo splits the ancestors of p below stop so that p becomes a boundary
// between children of stop, and returns that child index. Every split node
// keeps its left part; right parts are shallow clones inserted after it.
//
// With forced set, each element on the path is split even when p sits on
// its edge, leaving empty halves for the caller to merge or prune.
func splitTo(p Point, stop *html.Node, forced bool) int {
	node, off := p.Node, p.Offset
	if node == stop {
		return off
	}
	if node.Type == html.TextNode {
		parent, idx := node.Parent, indexOf(node)
		k := runeLen(node.Data)
		switch {
		case off <= 0:
			node, off = parent, idx
		case off >= k:
			node, off = parent, idx+1
		default:
			splitText(node, off)
			node, off = parent, idx+1
		}
	}
	for node != stop && node.Parent != nil {
		parent, idx := node.Parent, indexOf(node)
		if !forced && off <= 0 {
			node, off = parent, idx
			continue
		}
		if !forced && off >= childCount(node) {
			node, off = parent, idx+1
			continue
		}
		right := shallowClone(node)
		moveChildren(right, node, off)
		parent.InsertBefore(right, node.NextSibling)
		node, off = parent, idx+1
	}
	return off
}

// splitTextAt splits the text node strictly containing content offset off.
func (t *Tree) splitTextAt(off int) {
	var target *html.Node
	var at int
	t.Walk(func(it Item) bool {
		if it.Kind != ItemText {
			return true
		}
		k := runeLen(it.Node.Data)
		if it.At < off && off < it.At+k {
			target, at = it.Node, off-it.At
			return false
		}
		return true
	})
	if target != nil {
		splitText(target, at)
	}
}

// topLevel returns the child of the root containing n, or nil when n is the
// root.
func (t *Tree) topLevel(n *html.Node) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if c.Parent == t.root {
			return c
		}
	}
	return nil
}

// mergeBlocks joins right into left, the two halves around a deletion.
func mergeBlocks(left, right *html.Node) {
	if left.Type != html.ElementNode || right.Type != html.ElementNode {
		return
	}
	if left.DataAtom == right.DataAtom && left.Data == right.Data {
		mergeSame(left, right)
		return
	}
	dst := lastTextBlock(left)
	src := firstTextBlock(right)
	moveChildren(dst, src, 0)
	for n := src; n != nil && n != right.Parent; {
		parent := n.Parent
		if n.FirstChild != nil {
			break
		}
		detach(n)
		n = parent
	}
}

func mergeSame(left, right *html.Node) {
	if l, r := left.LastChild, right.FirstChild; mergeable(l, r) {
		right.RemoveChild(r)
		mergeSame(l, r)
	}
	moveChildren(left, right, 0)
	detach(right)
}

func mergeable(a, b *html.Node) bool {
	return a != nil && b != nil &&
		a.Type == html.ElementNode && b.Type == html.ElementNode &&
		a.Data == b.Data && !IsVoid(a)
}

func lastTextBlock(n *html.Node) *html.Node {
	for {
		c := n.LastChild
		if c == nil || !IsBlock(c) {
			return n
		}
		n = c
	}
}

func firstTextBlock(n *html.Node) *html.Node {
	for {
		c := n.FirstChild
		if c == nil || !IsBlock(c) {
			return n
		}
		n = c
	}
}

// pruneEmptyInline removes inline elements left without content.
func pruneEmptyInline(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.TextNode && c.Data == "":
			n.RemoveChild(c)
		case c.Type == html.ElementNode && !IsVoid(c):
			pruneEmptyInline(c)
			if !IsBlock(c) && c.FirstChild == nil {
				n.RemoveChild(c)
			}
		}
		c = next
	}
}
