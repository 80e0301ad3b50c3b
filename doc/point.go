package doc

import "golang.org/x/net/html"

// Point addresses a caret position. For text nodes Offset counts runes, for
// elements it is a child index.
type Point struct {
	Node   *html.Node
	Offset int
}

// Range spans two points. Start precedes End in document order once
// normalized with Tree.Normalize.
type Range struct {
	Start Point
	End   Point
}

func Collapsed(p Point) Range { return Range{Start: p, End: p} }

func (r Range) IsCollapsed() bool { return r.Start == r.End }

// Affinity picks between equivalent points sharing one content offset.
type Affinity uint8

const (
	// Backward prefers the end of preceding content.
	Backward Affinity = iota
	// Forward prefers the start of following content.
	Forward
)
