package doc

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tree is the mutable document. The zero value is not usable; call New.
type Tree struct {
	root    *html.Node
	version uint64
}

// New parses markup into a Tree.
func New(markup string) (*Tree, error) {
	t := &Tree{root: NewElement(atom.Div)}
	if err := t.SetMarkup(markup); err != nil {
		return nil, err
	}
	return t, nil
}

// SetMarkup replaces the whole document.
//
// Whitespace-only text between blocks is dropped and inline runs at the top
// level are wrapped in paragraphs.
func (t *Tree) SetMarkup(markup string) error {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return err
	}

	root := shallowClone(t.root)
	for _, n := range nodes {
		root.AppendChild(n)
	}
	dropLayoutWhitespace(root)
	wrapInlineRuns(root)

	t.root = root
	t.version++
	return nil
}

// Markup serializes the document's top-level nodes.
func (t *Tree) Markup() string {
	var sb strings.Builder
	for c := t.root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

func (t *Tree) Root() *html.Node { return t.root }

// Version increases on every mutation.
func (t *Tree) Version() uint64 { return t.version }

func (t *Tree) touch() { t.version++ }

// Contains reports whether n is attached to the document.
func (t *Tree) Contains(n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c == t.root {
			return true
		}
	}
	return false
}

// Start returns the first caret position of the document.
func (t *Tree) Start() Point { return t.PointAt(0, Forward) }

// End returns the last caret position of the document.
func (t *Tree) End() Point { return t.PointAt(t.Len(), Backward) }

// ResetDirection restores the root's text direction and alignment defaults.
// The root is not serialized, so this only affects the editing surface.
func (t *Tree) ResetDirection() {
	SetAttr(t.root, "dir", "ltr")
	SetStyle(t.root, "text-align", "left")
}

// ValidPoint reports whether p is attached and in bounds.
func (t *Tree) ValidPoint(p Point) bool {
	if p.Node == nil || !t.Contains(p.Node) || p.Offset < 0 {
		return false
	}
	if p.Node.Type == html.TextNode {
		return p.Offset <= runeLen(p.Node.Data)
	}
	return p.Offset <= childCount(p.Node)
}

func dropLayoutWhitespace(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" && !hasInlineSibling(c):
			n.RemoveChild(c)
		case c.Type == html.ElementNode:
			dropLayoutWhitespace(c)
		}
		c = next
	}
}

// hasInlineSibling reports whether whitespace text c sits between inline
// content and therefore separates words.
func hasInlineSibling(c *html.Node) bool {
	prev, next := c.PrevSibling, c.NextSibling
	inline := func(n *html.Node) bool {
		return n != nil && !IsBlock(n) && n.Type != html.CommentNode
	}
	return inline(prev) && inline(next)
}

// wrapInlineRuns wraps consecutive inline children of root in paragraphs.
func wrapInlineRuns(root *html.Node) {
	var run *html.Node
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if IsBlock(c) {
			run = nil
			c = next
			continue
		}
		if run == nil {
			run = NewElement(atom.P)
			root.InsertBefore(run, c)
		}
		root.RemoveChild(c)
		run.AppendChild(c)
		c = next
	}
}

// SetAttr sets an attribute on a node of the document.
func (t *Tree) SetAttr(n *html.Node, key, val string) {
	SetAttr(n, key, val)
	t.touch()
}

// SetStyle sets an inline style property on a node of the document.
func (t *Tree) SetStyle(n *html.Node, prop, val string) {
	SetStyle(n, prop, val)
	t.touch()
}

// Find returns the attached nodes matching pred in document order.
func (t *Tree) Find(pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// Images returns the document's images in order.
func (t *Tree) Images() []*html.Node {
	return t.Find(func(n *html.Node) bool { return isElement(n, atom.Img) })
}

// Image returns the image carrying id, or nil.
func (t *Tree) Image(id string) *html.Node {
	for _, img := range t.Images() {
		if v, _ := Attr(img, ImageIDAttr); v == id {
			return img
		}
	}
	return nil
}
