// Package doc implements the HTML document tree edited by inkwell.
//
// The tree is a root container whose children are the document's top-level
// nodes. Positions are Points: a rune offset inside a text node, or a child
// index inside an element. Every point also maps to a linear content offset
// (see Tree.OffsetOf), which survives structural mutations that keep the
// text intact; selections are carried across mutations through it.
package doc
