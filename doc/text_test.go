package doc

import "testing"

const mixed = `<p>ab</p><ul><li>c</li><li>d<br/>e</li></ul><p><img src="x.png"/></p>`

func TestText_Linearization(t *testing.T) {
	tree := mustTree(t, mixed)
	if got, want := tree.Text(), "ab\nc\nd\ne\n\ufffc"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := tree.Len(), 10; got != want {
		t.Fatalf("len=%d, want %d", got, want)
	}
}

func TestPointAt_RoundTrip(t *testing.T) {
	for _, markup := range []string{
		mixed,
		"<p>hello <i>big</i> world</p><h2>second <u>line</u></h2>",
		"<blockquote><p>q</p></blockquote><p></p><p>z</p>",
	} {
		tree := mustTree(t, markup)
		for off := 0; off <= tree.Len(); off++ {
			for _, aff := range []Affinity{Backward, Forward} {
				p := tree.PointAt(off, aff)
				if got := tree.OffsetOf(p); got != off {
					t.Fatalf("%s: OffsetOf(PointAt(%d,%d))=%d", markup, off, aff, got)
				}
			}
		}
	}
}

func TestPointAt_Affinity(t *testing.T) {
	tree := mustTree(t, "<p>a<b>b</b></p>")
	back := tree.PointAt(1, Backward)
	if back.Node.Data != "a" || back.Offset != 1 {
		t.Fatalf("backward=(%q,%d), want end of a", back.Node.Data, back.Offset)
	}
	fwd := tree.PointAt(1, Forward)
	if fwd.Node.Data != "b" || fwd.Offset != 0 {
		t.Fatalf("forward=(%q,%d), want start of b", fwd.Node.Data, fwd.Offset)
	}
}

func TestPointAt_Clamps(t *testing.T) {
	tree := mustTree(t, "<p>ab</p>")
	if got := tree.OffsetOf(tree.PointAt(-4, Forward)); got != 0 {
		t.Fatalf("offset=%d, want 0", got)
	}
	if got := tree.OffsetOf(tree.PointAt(99, Backward)); got != 2 {
		t.Fatalf("offset=%d, want 2", got)
	}
}

func TestOffsetOf_Detached(t *testing.T) {
	tree := mustTree(t, "<p>ab</p>")
	if got := tree.OffsetOf(Point{Node: NewText("x")}); got != -1 {
		t.Fatalf("offset=%d, want -1", got)
	}
	if got := tree.OffsetOf(Point{}); got != -1 {
		t.Fatalf("offset=%d, want -1", got)
	}
}

func TestTextIn(t *testing.T) {
	tree := mustTree(t, "<p>hello</p><p>world</p>")
	r := Range{Start: tree.PointAt(8, Forward), End: tree.PointAt(3, Backward)}
	if got, want := tree.TextIn(r), "lo\nwo"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}
