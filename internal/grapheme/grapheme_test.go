package grapheme

import "testing"

const family = "\U0001F468\u200d\U0001F469\u200d\U0001F467\u200d\U0001F466"

func TestSplit_MultiRuneGraphemes(t *testing.T) {
	got := Split("a" + "e\u0301" + family + "b")
	if len(got) != 4 {
		t.Fatalf("split len=%d, want %d", len(got), 4)
	}
	if got[1] != "e\u0301" {
		t.Fatalf("split[1]=%q, want %q", got[1], "e\u0301")
	}
	if got[2] != family {
		t.Fatalf("split[2]=%q, want family emoji", got[2])
	}
	if got := Split(""); got != nil {
		t.Fatalf("split of empty=%q, want nil", got)
	}
}

func TestClassOf(t *testing.T) {
	cases := []struct {
		in   string
		want Class
	}{
		{in: "a", want: Word},
		{in: "e\u0301", want: Word},
		{in: "\t", want: Space},
		{in: "\n", want: Space},
		{in: "!", want: Punct},
		{in: "\ufffc", want: Object},
	}
	for _, tc := range cases {
		if got := ClassOf(tc.in); got != tc.want {
			t.Fatalf("ClassOf(%q)=%d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClusterEdges(t *testing.T) {
	text := "a" + "e\u0301"
	if got := LastLen(text); got != 2 {
		t.Fatalf("last len=%d, want %d", got, 2)
	}
	if got := FirstLen(text); got != 1 {
		t.Fatalf("first len=%d, want %d", got, 1)
	}
	if got := LastLen(""); got != 0 {
		t.Fatalf("last len of empty=%d, want 0", got)
	}
}

func TestWordLeftRight(t *testing.T) {
	// Offsets:  h0 e1 l2 l3 o4 ,5 _6 w7 o8 r9 l10 d11 !12 !13 \n14 obj15 obj16
	text := "hello, world!!\n\ufffc\ufffc"
	cases := []struct {
		off         int
		left, right int
	}{
		{off: 0, left: 0, right: 5},
		{off: 3, left: 0, right: 5},
		{off: 5, left: 0, right: 6},
		{off: 7, left: 5, right: 12},
		{off: 9, left: 7, right: 12},
		{off: 12, left: 7, right: 14},
		{off: 14, left: 12, right: 16},
		{off: 16, left: 15, right: 17},
		{off: 17, left: 16, right: 17},
		{off: 99, left: 16, right: 17},
	}
	for _, tc := range cases {
		if got := WordLeft(text, tc.off); got != tc.left {
			t.Fatalf("WordLeft(%d)=%d, want %d", tc.off, got, tc.left)
		}
		if got := WordRight(text, tc.off); got != tc.right {
			t.Fatalf("WordRight(%d)=%d, want %d", tc.off, got, tc.right)
		}
	}
}

func TestWordLeft_KeepsClusters(t *testing.T) {
	text := "ab " + family
	n := len([]rune(text))
	if got := WordLeft(text, n); got != 3 {
		t.Fatalf("WordLeft over emoji=%d, want 3", got)
	}
	if got := WordRight(text, 2); got != n {
		t.Fatalf("WordRight over emoji=%d, want %d", got, n)
	}
}
