// Package grapheme steps over user-perceived characters and words of the
// document text, where U+FFFC stands for an embedded image.
package grapheme

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const objectReplacement = '\ufffc'

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, utf8.RuneCountInString(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool { return all(cluster, unicode.IsSpace) }

// IsPunct reports whether all runes in cluster are Unicode punctuation.
func IsPunct(cluster string) bool { return all(cluster, unicode.IsPunct) }

func all(cluster string, pred func(rune) bool) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !pred(r) {
			return false
		}
	}
	return true
}

// Class groups clusters for word movement.
type Class uint8

const (
	Word Class = iota
	Space
	Punct
	// Object is an embedded image; each one is a word of its own.
	Object
)

func ClassOf(cluster string) Class {
	switch {
	case cluster == string(objectReplacement):
		return Object
	case IsSpace(cluster):
		return Space
	case IsPunct(cluster):
		return Punct
	}
	return Word
}

// LastLen returns the rune length of the last grapheme cluster of text.
func LastLen(text string) int {
	last := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		last = len(g.Runes())
	}
	return last
}

// FirstLen returns the rune length of the first grapheme cluster of text.
func FirstLen(text string) int {
	g := uniseg.NewGraphemes(text)
	if g.Next() {
		return len(g.Runes())
	}
	return 0
}

// WordLeft returns the rune offset of the start of the word before off,
// skipping whitespace first. Runs of punctuation count as words.
func WordLeft(text string, off int) int {
	rs := []rune(text)
	off = min(max(off, 0), len(rs))
	cs := Split(string(rs[:off]))
	i := len(cs)
	for i > 0 && ClassOf(cs[i-1]) == Space {
		i--
		off -= utf8.RuneCountInString(cs[i])
	}
	if i == 0 {
		return off
	}
	c := ClassOf(cs[i-1])
	for i > 0 && ClassOf(cs[i-1]) == c {
		i--
		off -= utf8.RuneCountInString(cs[i])
		if c == Object {
			break
		}
	}
	return off
}

// WordRight returns the rune offset of the end of the word after off,
// skipping whitespace first.
func WordRight(text string, off int) int {
	rs := []rune(text)
	off = min(max(off, 0), len(rs))
	cs := Split(string(rs[off:]))
	i := 0
	for i < len(cs) && ClassOf(cs[i]) == Space {
		off += utf8.RuneCountInString(cs[i])
		i++
	}
	if i == len(cs) {
		return off
	}
	c := ClassOf(cs[i])
	for i < len(cs) && ClassOf(cs[i]) == c {
		off += utf8.RuneCountInString(cs[i])
		i++
		if c == Object {
			break
		}
	}
	return off
}
