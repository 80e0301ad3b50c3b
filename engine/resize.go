package engine

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/iw2rmb/inkwell/doc"
)

// MinImageSize is the smallest width or height a drag can produce.
const MinImageSize = 50

// Fallback size for images without known dimensions.
const (
	DefaultImageWidth  = 320
	DefaultImageHeight = 240
)

// ResizeSession tracks one drag of an image's resize handle.
type ResizeSession struct {
	tree *doc.Tree

	img            *html.Node
	startW, startH int
	startX, startY int
	w, h           int
	active         bool

	// OnResize runs after every applied size.
	OnResize func(w, h int)
}

func NewResizeSession(t *doc.Tree) *ResizeSession {
	return &ResizeSession{tree: t}
}

func (s *ResizeSession) Active() bool { return s.active }

// Image returns the image being resized, or nil.
func (s *ResizeSession) Image() *html.Node {
	if !s.active {
		return nil
	}
	return s.img
}

// Begin starts a session for img at pointer position x, y.
func (s *ResizeSession) Begin(img *html.Node, x, y int) bool {
	if img == nil || !s.tree.Contains(img) {
		return false
	}
	w, h := ImageSize(img)
	if w <= 0 || h <= 0 {
		w, h = DefaultImageWidth, DefaultImageHeight
	}
	s.img = img
	s.startW, s.startH = w, h
	s.startX, s.startY = x, y
	s.w, s.h = w, h
	s.active = true
	return true
}

// Update applies the size for pointer position x, y and returns it. Each
// axis is clamped to MinImageSize and the image switches to a fixed size.
func (s *ResizeSession) Update(x, y int) (w, h int) {
	if !s.active {
		return 0, 0
	}
	if !s.tree.Contains(s.img) {
		s.Cancel()
		return 0, 0
	}
	w = max(MinImageSize, s.startW+(x-s.startX))
	h = max(MinImageSize, s.startH+(y-s.startY))
	s.w, s.h = w, h

	s.tree.SetStyle(s.img, "max-width", "")
	s.tree.SetStyle(s.img, "width", strconv.Itoa(w)+"px")
	s.tree.SetStyle(s.img, "height", strconv.Itoa(h)+"px")
	s.tree.SetAttr(s.img, "width", strconv.Itoa(w))
	s.tree.SetAttr(s.img, "height", strconv.Itoa(h))

	if s.OnResize != nil {
		s.OnResize(w, h)
	}
	return w, h
}

// Size returns the last applied size.
func (s *ResizeSession) Size() (w, h int) { return s.w, s.h }

// End finishes the session. The last applied size stays.
func (s *ResizeSession) End() {
	s.active = false
	s.img = nil
}

// Cancel ends a session whose pointer release was lost.
func (s *ResizeSession) Cancel() { s.End() }
