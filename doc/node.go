package doc

import (
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func isElement(n *html.Node, a ...atom.Atom) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(a) == 0 {
		return true
	}
	for _, x := range a {
		if n.DataAtom == x {
			return true
		}
	}
	return false
}

// IsBlock reports whether n is a block-level element.
func IsBlock(n *html.Node) bool {
	return isElement(n,
		atom.P, atom.Div, atom.Pre, atom.Blockquote,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li,
	)
}

// IsTextBlock reports whether n is a block that may hold inline content
// directly.
func IsTextBlock(n *html.Node) bool {
	return IsBlock(n) && !IsList(n)
}

// IsList reports whether n is a list container.
func IsList(n *html.Node) bool { return isElement(n, atom.Ul, atom.Ol) }

// IsVoid reports whether n is an inline element without content that
// occupies one content offset.
func IsVoid(n *html.Node) bool { return isElement(n, atom.Br, atom.Img) }

// HeadingLevel returns 1..6 for heading elements and 0 otherwise.
func HeadingLevel(n *html.Node) int {
	switch {
	case isElement(n, atom.H1):
		return 1
	case isElement(n, atom.H2):
		return 2
	case isElement(n, atom.H3):
		return 3
	case isElement(n, atom.H4):
		return 4
	case isElement(n, atom.H5):
		return 5
	case isElement(n, atom.H6):
		return 6
	}
	return 0
}

// NewElement returns a detached element for a.
func NewElement(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
		Attr:     append([]html.Attribute(nil), attrs...),
	}
}

// NewText returns a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key from n.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func shallowClone(n *html.Node) *html.Node {
	return &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
}

func rename(n *html.Node, a atom.Atom) {
	n.Data = a.String()
	n.DataAtom = a
}

func indexOf(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

func childAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

func childCount(n *html.Node) int {
	k := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		k++
	}
	return k
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// splitRunes splits s at rune index i.
func splitRunes(s string, i int) (string, string) {
	if i <= 0 {
		return "", s
	}
	k := 0
	for bi := range s {
		if k == i {
			return s[:bi], s[bi:]
		}
		k++
	}
	return s, ""
}

// insertAt inserts c as child i of parent.
func insertAt(parent, c *html.Node, i int) {
	if ref := childAt(parent, i); ref != nil {
		parent.InsertBefore(c, ref)
		return
	}
	parent.AppendChild(c)
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// moveChildren moves the children of src starting at index from to the end
// of dst.
func moveChildren(dst, src *html.Node, from int) {
	c := childAt(src, from)
	for c != nil {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// Closest returns the nearest inclusive ancestor of n below stop matching
// pred.
func Closest(n, stop *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := n; c != nil && c != stop; c = c.Parent {
		if pred(c) {
			return c
		}
	}
	return nil
}

func hasContent(n *html.Node) bool {
	if n.Type == html.TextNode {
		return n.Data != ""
	}
	if IsVoid(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasContent(c) {
			return true
		}
	}
	return false
}

// ImageIDAttr carries the stable identifier of an inserted image.
const ImageIDAttr = "data-image-id"
