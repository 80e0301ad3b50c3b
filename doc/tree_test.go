package doc

import (
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func mustTree(t *testing.T, markup string) *Tree {
	t.Helper()
	tree, err := New(markup)
	if err != nil {
		t.Fatalf("New(%q): %v", markup, err)
	}
	return tree
}

func TestNew_NormalizesTopLevel(t *testing.T) {
	tree := mustTree(t, "hello <b>x</b>\n<p>a</p>\n  <!-- c --><p>b</p>tail")
	if got, want := tree.Markup(), "<p>hello <b>x</b></p><p>a</p><p>b</p><p>tail</p>"; got != want {
		t.Fatalf("markup=%q, want %q", got, want)
	}
}

func TestNew_KeepsSpaceBetweenWords(t *testing.T) {
	tree := mustTree(t, "<p><b>a</b> <i>b</i></p>")
	if got, want := tree.Text(), "a b"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestSetAttr_TouchesVersion(t *testing.T) {
	tree := mustTree(t, `<p><img src="a.png" data-image-id="one"/><img src="b.png" data-image-id="two"/></p>`)
	v := tree.Version()
	img := tree.Image("two")
	if img == nil {
		t.Fatalf("image two not found")
	}
	tree.SetAttr(img, "alt", "b")
	if tree.Version() == v {
		t.Fatalf("version unchanged after SetAttr")
	}
	if got, _ := Attr(img, "alt"); got != "b" {
		t.Fatalf("alt=%q, want b", got)
	}
	if tree.Image("three") != nil {
		t.Fatalf("found an image that does not exist")
	}
	if n := len(tree.Images()); n != 2 {
		t.Fatalf("images=%d, want 2", n)
	}
}

func TestFind_DocumentOrder(t *testing.T) {
	tree := mustTree(t, "<p><b>1</b></p><ul><li><b>2</b></li></ul><h1><b>3</b></h1>")
	bs := tree.Find(func(n *html.Node) bool { return isElement(n, atom.B) })
	if len(bs) != 3 {
		t.Fatalf("found=%d, want 3", len(bs))
	}
	for i, want := range []string{"1", "2", "3"} {
		if got := bs[i].FirstChild.Data; got != want {
			t.Fatalf("b[%d]=%q, want %q", i, got, want)
		}
	}
}

func TestResetDirection(t *testing.T) {
	tree := mustTree(t, "<p>x</p>")
	SetAttr(tree.Root(), "dir", "rtl")
	tree.ResetDirection()
	if got, _ := Attr(tree.Root(), "dir"); got != "ltr" {
		t.Fatalf("dir=%q, want ltr", got)
	}
	if got := Style(tree.Root(), "text-align"); got != "left" {
		t.Fatalf("text-align=%q, want left", got)
	}
	if got, want := tree.Markup(), "<p>x</p>"; got != want {
		t.Fatalf("markup=%q, want %q", got, want)
	}
}
