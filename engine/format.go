package engine

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/inkwell/doc"
)

const (
	ListUnordered = "unordered"
	ListOrdered   = "ordered"
)

// FormatState is the toolbar's view of the formatting at the selection.
// Empty strings mean "none".
type FormatState struct {
	Bold      bool
	Italic    bool
	Underline bool

	Heading string // h1..h5
	List    string // ListUnordered or ListOrdered
	Align   string // left, center, right or justify
	Link    bool
}

// Has reports the inline format f.
func (s FormatState) Has(f doc.InlineFormat) bool {
	switch f {
	case doc.Bold:
		return s.Bold
	case doc.Italic:
		return s.Italic
	case doc.Underline:
		return s.Underline
	}
	return false
}

// FormatSync derives FormatState from a selection. It never mutates the
// document.
type FormatSync struct {
	tree   *doc.Tree
	typing *TypingStyle
}

func NewFormatSync(t *doc.Tree, typing *TypingStyle) *FormatSync {
	return &FormatSync{tree: t, typing: typing}
}

// Recompute returns the format state for sel.
//
// Block properties come from the nearest ancestors of the anchor. Inline
// formats come from the markup around the caret plus the pending typing
// style when sel is collapsed, and from the rendered style of the range's
// common ancestor otherwise.
func (fs *FormatSync) Recompute(sel doc.Selection) FormatState {
	var st FormatState
	if !sel.Active || sel.Range.Start.Node == nil {
		return st
	}
	r := fs.tree.Normalize(sel.Range)
	anchor := r.Start.Node
	if anchor.Type != html.ElementNode {
		anchor = anchor.Parent
	}

	root := fs.tree.Root()
	for n := anchor; n != nil; n = n.Parent {
		if st.Heading == "" {
			if lvl := doc.HeadingLevel(n); lvl >= 1 && lvl <= 5 {
				st.Heading = fmt.Sprintf("h%d", lvl)
			}
		}
		if st.List == "" && doc.IsList(n) {
			if n.DataAtom == atom.Ol {
				st.List = ListOrdered
			} else {
				st.List = ListUnordered
			}
		}
		if st.Align == "" {
			st.Align = alignOf(n)
		}
		if !st.Link && n.DataAtom == atom.A {
			_, st.Link = doc.Attr(n, "href")
		}
		if n == root {
			break
		}
	}

	formats := []doc.InlineFormat{doc.Bold, doc.Italic, doc.Underline}
	on := make([]bool, len(formats))
	if r.IsCollapsed() {
		for i, f := range formats {
			on[i] = fs.commandState(r.Start.Node, f)
		}
	} else {
		common := fs.tree.CommonAncestor(r)
		for i, f := range formats {
			on[i] = doc.IsStyled(common, f)
		}
	}
	st.Bold, st.Italic, st.Underline = on[0], on[1], on[2]
	return st
}

// commandState answers whether typing at n would produce f.
func (fs *FormatSync) commandState(n *html.Node, f doc.InlineFormat) bool {
	if fs.typing != nil {
		if v, ok := fs.typing.Get(f); ok {
			return v
		}
	}
	return doc.IsMarked(n, f)
}

func alignOf(n *html.Node) string {
	switch v := doc.Style(n, "text-align"); v {
	case "left", "center", "right", "justify":
		return v
	case "start":
		return "left"
	case "end":
		return "right"
	}
	if v, ok := doc.Attr(n, "align"); ok {
		switch v {
		case "left", "center", "right", "justify":
			return v
		}
	}
	return ""
}
