package editor

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/inkwell/doc"
	"github.com/iw2rmb/inkwell/engine"
	graphemeutil "github.com/iw2rmb/inkwell/internal/grapheme"
)

const resizeHandle = "◢"

// glyph is one rendered grapheme, image label or decoration.
type glyph struct {
	text  string
	width int

	// off is the content offset of the glyph; runes is the number of offsets
	// it covers (0 for decorations such as the resize handle).
	off   int
	runes int

	bold, italic, underline, link bool
	heading                       int

	img    *html.Node
	handle bool
	broken bool
}

func (g glyph) isSpace() bool { return g.runes > 0 && g.img == nil && graphemeutil.IsSpace(g.text) }

// line is one visual paragraph: a text block, or the part of it after a
// line break.
type line struct {
	prefix string
	cont   string
	start  int
	align  string
	glyphs []glyph
}

func (l *line) end() int {
	for i := len(l.glyphs) - 1; i >= 0; i-- {
		if g := l.glyphs[i]; g.runes > 0 {
			return g.off + g.runes
		}
	}
	return l.start
}

type placed struct {
	glyph
	x int
}

// row is one terminal row of the document.
type row struct {
	line   int
	prefix string
	pad    int
	glyphs []placed
	start  int
	end    int
	last   bool
}

func (r row) indent() int { return cellWidth(r.prefix) + r.pad }

type layoutKey struct {
	version uint64
	width   int
	broken  int
}

type layout struct {
	key  layoutKey
	rows []row
}

// buildLayout linearizes t into wrapped rows of at most width cells.
func buildLayout(t *doc.Tree, width int, broken map[string]bool) layout {
	lines := collectLines(t, broken)
	out := layout{key: layoutKey{version: t.Version(), width: width, broken: len(broken)}}
	for i := range lines {
		out.rows = append(out.rows, wrapLine(i, &lines[i], width)...)
	}
	if len(out.rows) == 0 {
		out.rows = []row{{last: true}}
	}
	return out
}

func collectLines(t *doc.Tree, broken map[string]bool) []line {
	root := t.Root()
	var (
		lines   []line
		cur     *line
		pending *html.Node
		pendAt  int
	)
	open := func(n *html.Node, at int) *line {
		block := doc.Closest(n, root, doc.IsTextBlock)
		start := at
		if pending != nil {
			block, start = pending, pendAt
			pending = nil
		}
		first, cont := blockPrefix(block, root)
		lines = append(lines, line{prefix: first, cont: cont, start: start, align: blockAlign(block, root)})
		return &lines[len(lines)-1]
	}

	t.Walk(func(it doc.Item) bool {
		switch it.Kind {
		case doc.ItemEnterBlock:
			cur = nil
			pending = nil
			if doc.IsTextBlock(it.Node) {
				pending, pendAt = it.Node, it.At
			}
		case doc.ItemExitBlock:
			if cur == nil && pending == it.Node {
				open(it.Node, it.At)
			}
			cur = nil
			pending = nil
		case doc.ItemText:
			if it.Node.Data == "" {
				break
			}
			if cur == nil {
				cur = open(it.Node, it.At)
			}
			cur.glyphs = append(cur.glyphs, textGlyphs(it.Node, it.At)...)
		case doc.ItemVoid:
			if cur == nil {
				cur = open(it.Node, it.At)
			}
			if it.Node.DataAtom == atom.Br {
				// The break ends this line; the next one starts after it.
				next := line{prefix: cur.cont, cont: cur.cont, start: it.At + 1, align: cur.align}
				lines = append(lines, next)
				cur = &lines[len(lines)-1]
				break
			}
			cur.glyphs = append(cur.glyphs, imageGlyphs(it.Node, it.At, broken)...)
		}
		return true
	})
	return lines
}

func textGlyphs(n *html.Node, at int) []glyph {
	base := glyph{
		bold:      doc.IsStyled(n.Parent, doc.Bold),
		italic:    doc.IsStyled(n.Parent, doc.Italic),
		underline: doc.IsStyled(n.Parent, doc.Underline),
		link:      inLink(n),
	}
	if b := doc.Closest(n, nil, doc.IsBlock); b != nil {
		base.heading = doc.HeadingLevel(b)
	}

	clusters := graphemeutil.Split(n.Data)
	out := make([]glyph, 0, len(clusters))
	off := at
	for _, c := range clusters {
		g := base
		g.text = c
		g.off = off
		g.runes = len([]rune(c))
		switch {
		case c == "\t":
			g.text, g.width = "    ", 4
		case c == "\n" || c == "\r":
			g.text, g.width = " ", 1
		default:
			g.width = max(1, cellWidth(c))
		}
		out = append(out, g)
		off += g.runes
	}
	return out
}

func imageGlyphs(img *html.Node, at int, broken map[string]bool) []glyph {
	id, _ := doc.Attr(img, doc.ImageIDAttr)
	label := imageLabel(img, broken[id])
	return []glyph{
		{text: label, width: cellWidth(label), off: at, runes: 1, img: img, broken: broken[id]},
		{text: resizeHandle, width: 1, off: at + 1, img: img, handle: true},
	}
}

func imageLabel(img *html.Node, broken bool) string {
	alt, _ := doc.Attr(img, "alt")
	if alt == "" {
		alt = "image"
	}
	if broken {
		return "[broken " + alt + "]"
	}
	w, h := engine.ImageSize(img)
	if w > 0 && h > 0 {
		return fmt.Sprintf("[%s %dx%d]", alt, w, h)
	}
	return "[" + alt + "]"
}

func inLink(n *html.Node) bool {
	for c := n; c != nil && !doc.IsBlock(c); c = c.Parent {
		if c.DataAtom == atom.A {
			_, ok := doc.Attr(c, "href")
			return ok
		}
	}
	return false
}

// blockPrefix returns the gutter drawn before the first and the following
// rows of block: quote bars, list markers and heading hashes.
func blockPrefix(block, root *html.Node) (first, cont string) {
	if block == nil {
		return "", ""
	}
	var quotes, marker string
	lists := 0
	for n := block; n != nil && n != root; n = n.Parent {
		switch {
		case n.DataAtom == atom.Blockquote:
			quotes += "│ "
		case doc.IsList(n):
			lists++
		case n.DataAtom == atom.Li && n == block:
			marker = listMarker(n)
		}
	}
	indent := strings.Repeat("  ", max(0, lists-1))
	if lvl := doc.HeadingLevel(block); lvl > 0 {
		marker += strings.Repeat("#", lvl) + " "
	}
	first = quotes + indent + marker
	cont = quotes + indent + strings.Repeat(" ", cellWidth(marker))
	return first, cont
}

func listMarker(li *html.Node) string {
	list := li.Parent
	if list == nil || list.DataAtom != atom.Ol {
		return "• "
	}
	i := 1
	for c := list.FirstChild; c != nil && c != li; c = c.NextSibling {
		if c.DataAtom == atom.Li {
			i++
		}
	}
	return strconv.Itoa(i) + ". "
}

func blockAlign(block, root *html.Node) string {
	for n := block; n != nil && n != root; n = n.Parent {
		switch v := doc.Style(n, "text-align"); v {
		case "center", "right":
			return v
		case "left", "justify":
			return ""
		}
	}
	return ""
}

// wrapLine breaks l into rows, preferring breaks after whitespace.
func wrapLine(idx int, l *line, width int) []row {
	prefixW := max(cellWidth(l.prefix), cellWidth(l.cont))
	avail := max(1, width-prefixW)
	if width <= 0 {
		avail = int(^uint(0) >> 1)
	}

	var rows []row
	gs := l.glyphs
	for start := 0; ; {
		used, i := 0, start
		for i < len(gs) {
			w := gs[i].width
			if used > 0 && used+w > avail && !gs[i].handle {
				break
			}
			used += w
			i++
		}
		if i < len(gs) {
			for j := i - 1; j > start; j-- {
				if gs[j].isSpace() {
					i = j + 1
					break
				}
			}
		}

		r := row{line: idx, prefix: l.cont}
		if start == 0 {
			r.prefix = l.prefix
		}
		x := 0
		for _, g := range gs[start:i] {
			r.glyphs = append(r.glyphs, placed{glyph: g, x: x})
			x += g.width
		}
		switch l.align {
		case "center":
			r.pad = max(0, (avail-x)/2)
		case "right":
			r.pad = max(0, avail-x)
		}
		rows = append(rows, r)
		if i >= len(gs) {
			break
		}
		start = i
	}

	for k := range rows {
		r := &rows[k]
		r.start = l.start
		if k > 0 {
			r.start = rows[k-1].end
		}
		r.end = l.end()
		if k+1 < len(rows) {
			r.end = firstOffset(rows[k+1].glyphs, r.end)
		}
	}
	rows[len(rows)-1].last = true
	return rows
}

func firstOffset(gs []placed, fallback int) int {
	for _, g := range gs {
		if g.runes > 0 {
			return g.off
		}
	}
	return fallback
}

// caretCell returns the row and column of content offset off.
func (ly layout) caretCell(off int) (y, x int, ok bool) {
	for i, r := range ly.rows {
		for _, g := range r.glyphs {
			if g.runes > 0 && g.off <= off && off < g.off+g.runes {
				return i, r.indent() + g.x, true
			}
		}
	}
	for i, r := range ly.rows {
		if r.last && r.end == off {
			w := 0
			if n := len(r.glyphs); n > 0 {
				w = r.glyphs[n-1].x + r.glyphs[n-1].width
			}
			return i, r.indent() + w, true
		}
	}
	return 0, 0, false
}

// hit is what a document cell resolves to.
type hit struct {
	off    int
	img    *html.Node
	handle bool
}

// hitTest maps a document cell to a content offset. Cells past the end of a
// row map to the row's end; the right half of an image maps after it.
func (ly layout) hitTest(x, y int) hit {
	if len(ly.rows) == 0 {
		return hit{}
	}
	r := ly.rows[clampInt(y, 0, len(ly.rows)-1)]
	cx := x - r.indent()
	if cx < 0 {
		return hit{off: r.start}
	}
	for _, g := range r.glyphs {
		if cx >= g.x+g.width {
			continue
		}
		switch {
		case g.handle:
			return hit{off: g.off, img: g.img, handle: true}
		case g.img != nil && cx-g.x >= g.width/2:
			return hit{off: g.off + 1, img: g.img}
		}
		return hit{off: g.off, img: g.img}
	}
	return hit{off: r.end}
}

func cellWidth(s string) int {
	w := 0
	for _, c := range graphemeutil.Split(s) {
		w += graphemeCellWidth(c)
	}
	return w
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
