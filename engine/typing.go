package engine

import "github.com/iw2rmb/inkwell/doc"

// TypingStyle holds inline formats toggled at a collapsed caret. They apply
// to the next inserted text and are dropped when the caret moves.
type TypingStyle struct {
	set [3]bool
	on  [3]bool
}

func (s *TypingStyle) Set(f doc.InlineFormat, on bool) {
	s.set[f] = true
	s.on[f] = on
}

// Get returns the pending value for f. ok is false when f was not toggled.
func (s *TypingStyle) Get(f doc.InlineFormat) (on, ok bool) {
	return s.on[f], s.set[f]
}

func (s *TypingStyle) Empty() bool {
	return !s.set[doc.Bold] && !s.set[doc.Italic] && !s.set[doc.Underline]
}

func (s *TypingStyle) Reset() { *s = TypingStyle{} }
