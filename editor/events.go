package editor

import (
	"sync/atomic"

	"github.com/iw2rmb/inkwell/engine"
)

var lastID int64

func nextID() int { return int(atomic.AddInt64(&lastID, 1)) }

// tickMsg delivers the change notification timer of generation gen.
type tickMsg struct {
	id  int
	gen uint64
}

type readFile struct {
	name string
	data []byte
	err  error
}

// filesReadMsg carries image files loaded from disk.
type filesReadMsg struct {
	id    int
	files []readFile
}

// uploadDoneMsg carries the result of one image upload.
type uploadDoneMsg struct {
	id      int
	pending *engine.PendingImage
	src     string
	err     error
}

type imagesCheckedMsg struct {
	id     int
	broken []*engine.BrokenImageError
}
