package engine

import "time"

// DefaultDebounce is the coalescing window of change notifications.
const DefaultDebounce = 100 * time.Millisecond

// Notifier coalesces document changes into one notification per quiet
// window. Time is passed in by the caller; the notifier owns no timer.
//
// Each Schedule returns a generation. A host arms one timer per schedule
// and calls Fire with that generation; only the latest generation emits.
type Notifier struct {
	window time.Duration
	source func() string
	emit   func(string)

	pending  bool
	deadline time.Time
	gen      uint64

	last    string
	hasLast bool
}

// NewNotifier returns a notifier reading markup from source and passing it
// to emit. emit may be nil.
func NewNotifier(window time.Duration, source func() string, emit func(string)) *Notifier {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Notifier{window: window, source: source, emit: emit}
}

func (n *Notifier) Window() time.Duration { return n.window }

// Schedule (re)arms the window from now.
func (n *Notifier) Schedule(now time.Time) uint64 {
	n.gen++
	n.pending = true
	n.deadline = now.Add(n.window)
	return n.gen
}

// Pending reports whether a notification is waiting and its deadline.
func (n *Notifier) Pending() (bool, time.Time) { return n.pending, n.deadline }

// Generation returns the current schedule generation.
func (n *Notifier) Generation() uint64 { return n.gen }

// Fire emits when gen is current and the deadline has passed.
func (n *Notifier) Fire(gen uint64, now time.Time) bool {
	if !n.pending || gen != n.gen || now.Before(n.deadline) {
		return false
	}
	n.emitNow()
	return true
}

// Flush emits a pending notification immediately.
func (n *Notifier) Flush() bool {
	if !n.pending {
		return false
	}
	n.emitNow()
	return true
}

// Cancel drops a pending notification.
func (n *Notifier) Cancel() {
	n.pending = false
	n.gen++
}

// Last returns the most recently emitted markup.
func (n *Notifier) Last() (string, bool) { return n.last, n.hasLast }

func (n *Notifier) emitNow() {
	n.pending = false
	n.gen++
	markup := n.source()
	n.last, n.hasLast = markup, true
	if n.emit != nil {
		n.emit(markup)
	}
}
