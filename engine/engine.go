package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/iw2rmb/inkwell/doc"
	"github.com/iw2rmb/inkwell/internal/grapheme"
)

// Config configures an Engine.
type Config struct {
	// Value is the initial document markup.
	Value string

	// OnChange receives the serialized document after debounced edits and
	// on blur.
	OnChange func(markup string)

	// Uploader stores inserted images. Nil embeds data URI previews.
	Uploader Uploader
	// ImageLoader fetches remote image sources for Verify. Nil skips them.
	ImageLoader ImageLoader

	Logger *zap.Logger

	// Debounce is the change notification window (default 100ms).
	Debounce time.Duration
	// MaxImageBytes caps image size (default 5 MiB).
	MaxImageBytes int
	// HistoryLimit caps undo steps (default 1000, negative disables).
	HistoryLimit int

	// Now supplies the clock (default time.Now).
	Now func() time.Time
	// NewID generates image ids (default uuid).
	NewID func() string
}

// Engine binds a document, its selection and the editing subsystems.
// It is not safe for concurrent use; hosts drive it from one loop.
type Engine struct {
	cfg Config
	log *zap.Logger
	now func() time.Time

	tree    *doc.Tree
	sel     doc.Selection
	tracker *doc.Tracker
	history *doc.History
	typing  TypingStyle

	exec   *Executor
	format *FormatSync
	link   *LinkDialog
	images *Images
	resize *ResizeSession
	notify *Notifier

	state    FormatState
	external string
}

// New returns an engine holding cfg.Value. The document has no selection
// until Focus or Select is called.
func New(cfg Config) (*Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	t, err := doc.New(doc.Sanitize(cfg.Value))
	if err != nil {
		return nil, err
	}
	t.ResetDirection()

	e := &Engine{
		cfg:      cfg,
		log:      log,
		now:      now,
		tree:     t,
		tracker:  doc.NewTracker(t, log),
		history:  doc.NewHistory(cfg.HistoryLimit),
		external: cfg.Value,
	}
	e.exec = NewExecutor(t, e.tracker, e.history, &e.typing, log)
	e.format = NewFormatSync(t, &e.typing)
	e.link = NewLinkDialog(t, e.tracker, e.history, log)
	e.images = NewImages(t, e.tracker, e.history, ImagesConfig{
		Uploader: cfg.Uploader,
		Loader:   cfg.ImageLoader,
		MaxBytes: cfg.MaxImageBytes,
		NewID:    cfg.NewID,
		Logger:   log,
	})
	e.resize = NewResizeSession(t)
	e.resize.OnResize = func(int, int) { e.Schedule() }
	e.notify = NewNotifier(cfg.Debounce, t.Markup, e.emit)
	return e, nil
}

// emit records markup as the value the host now holds and forwards it.
func (e *Engine) emit(markup string) {
	e.external = markup
	if e.cfg.OnChange != nil {
		e.cfg.OnChange(markup)
	}
}

func (e *Engine) Tree() *doc.Tree { return e.tree }

func (e *Engine) Selection() doc.Selection { return e.sel }

func (e *Engine) FormatState() FormatState { return e.state }

func (e *Engine) Notifier() *Notifier { return e.notify }

func (e *Engine) Link() *LinkDialog { return e.link }

// Value returns the current serialization.
func (e *Engine) Value() string { return e.tree.Markup() }

// Markdown returns the document as CommonMark.
func (e *Engine) Markdown() (string, error) { return e.tree.Markdown() }

// Refresh recomputes the format state for the current selection.
func (e *Engine) Refresh() FormatState {
	e.state = e.format.Recompute(e.sel)
	return e.state
}

// Select replaces the selection. Moving the caret drops the pending typing
// style.
func (e *Engine) Select(sel doc.Selection) FormatState {
	if sel.Range != e.sel.Range || sel.Active != e.sel.Active {
		e.typing.Reset()
		e.exec.Break()
	}
	e.sel = sel
	return e.Refresh()
}

// SelectOffsets selects between two content offsets. anchor == head gives a
// caret that sticks to the preceding text.
func (e *Engine) SelectOffsets(anchor, head int) FormatState {
	if anchor == head {
		return e.Select(doc.Caret(e.tree.PointAt(head, doc.Backward)))
	}
	lo, hi := min(anchor, head), max(anchor, head)
	return e.Select(doc.Span(doc.Range{
		Start: e.tree.PointAt(lo, doc.Forward),
		End:   e.tree.PointAt(hi, doc.Backward),
	}))
}

// Offsets returns the selection as content offsets.
func (e *Engine) Offsets() (start, end int, ok bool) {
	if !e.sel.Active {
		return 0, 0, false
	}
	r := e.tree.Normalize(e.sel.Range)
	return e.tree.OffsetOf(r.Start), e.tree.OffsetOf(r.End), true
}

// StepLeft and StepRight return the offset one grapheme cluster away.
func (e *Engine) StepLeft(off int) int {
	if off <= 0 {
		return 0
	}
	rs := []rune(e.tree.Text())
	off = min(off, len(rs))
	return off - max(1, grapheme.LastLen(string(rs[max(0, off-16):off])))
}

func (e *Engine) StepRight(off int) int {
	rs := []rune(e.tree.Text())
	if off >= len(rs) {
		return len(rs)
	}
	off = max(off, 0)
	return off + max(1, grapheme.FirstLen(string(rs[off:min(len(rs), off+16)])))
}

// WordLeft and WordRight return the offset of the nearest word edge,
// skipping whitespace and paragraph breaks on the way.
func (e *Engine) WordLeft(off int) int {
	return grapheme.WordLeft(e.tree.Text(), off)
}

func (e *Engine) WordRight(off int) int {
	return grapheme.WordRight(e.tree.Text(), off)
}

// Focus gives the surface a caret at the end of the document when it has
// none.
func (e *Engine) Focus() FormatState {
	if !e.sel.Active || !e.tree.ValidPoint(e.sel.Range.Start) || !e.tree.ValidPoint(e.sel.Range.End) {
		e.sel = doc.Caret(e.tree.End())
	}
	return e.Refresh()
}

// Blur flushes a pending change notification and ends a resize drag.
func (e *Engine) Blur() {
	e.resize.Cancel()
	e.notify.Flush()
}

// Execute runs a command at the current selection. Applied commands
// refresh the format state and schedule a change notification.
func (e *Engine) Execute(name Command, arg string) bool {
	ok := e.exec.Execute(&e.sel, name, arg)
	if ok {
		e.changed()
	} else {
		e.Refresh()
	}
	return ok
}

// Schedule arms the change notification window and returns its generation.
func (e *Engine) Schedule() uint64 { return e.notify.Schedule(e.now()) }

// Tick delivers the timer for generation gen.
func (e *Engine) Tick(gen uint64) bool { return e.notify.Fire(gen, e.now()) }

func (e *Engine) changed() {
	e.Schedule()
	e.Refresh()
}

// SetValue replaces the document with an externally supplied value. It is a
// no-op when v is the engine's own last emitted or current serialization,
// or the external value already applied; internal edits are kept then.
func (e *Engine) SetValue(v string) bool {
	if last, ok := e.notify.Last(); ok && v == last {
		return false
	}
	if v == e.tree.Markup() || v == e.external {
		return false
	}
	if err := e.tree.SetMarkup(doc.Sanitize(v)); err != nil {
		e.log.Warn("set value", zap.Error(err))
		return false
	}
	e.external = v
	e.tree.ResetDirection()
	e.history.Reset()
	e.typing.Reset()
	e.exec.Break()
	e.link.Cancel()
	e.resize.Cancel()
	e.notify.Cancel()
	e.sel = doc.Caret(e.tree.End())
	e.Refresh()
	e.log.Debug("document replaced from external value", zap.Int("bytes", len(v)))
	return true
}

// OpenLink opens the link dialog for the current selection.
func (e *Engine) OpenLink() *LinkDialog {
	e.link.Open(e.sel)
	return e.link
}

// SubmitLink applies the link dialog.
func (e *Engine) SubmitLink(url, text string) (LinkOutcome, error) {
	out, err := e.link.Submit(&e.sel, url, text)
	if err == nil && out != LinkNone {
		e.changed()
	}
	return out, err
}

// RemoveLink unwraps the link being edited.
func (e *Engine) RemoveLink() bool {
	_, ok := e.link.Remove(&e.sel)
	if ok {
		e.changed()
	}
	return ok
}

func (e *Engine) CancelLink() { e.link.Cancel() }

// PrepareImage validates f and captures the insertion point.
func (e *Engine) PrepareImage(f File) (*PendingImage, error) {
	return e.images.Prepare(e.sel, f)
}

// UploadImage runs the upload for p. It does not touch engine state.
func (e *Engine) UploadImage(ctx context.Context, p *PendingImage) (string, error) {
	return e.images.Upload(ctx, p)
}

// CompleteImage inserts p with its uploaded source.
func (e *Engine) CompleteImage(p *PendingImage, src string) *html.Node {
	img := e.images.Complete(&e.sel, p, src)
	e.typing.Reset()
	e.changed()
	return img
}

// InsertImage validates, uploads and inserts f synchronously.
func (e *Engine) InsertImage(ctx context.Context, f File) (*html.Node, error) {
	img, err := e.images.InsertImage(ctx, &e.sel, f)
	if err != nil {
		return nil, err
	}
	e.typing.Reset()
	e.changed()
	return img, nil
}

// Drop inserts dropped files in order.
func (e *Engine) Drop(ctx context.Context, files []File) ([]*html.Node, error) {
	imgs, err := e.images.Drop(ctx, &e.sel, files)
	if len(imgs) > 0 {
		e.typing.Reset()
		e.changed()
	}
	return imgs, err
}

// VerifyImages reports images whose source cannot be decoded.
func (e *Engine) VerifyImages(ctx context.Context) []*BrokenImageError {
	return e.images.Verify(ctx)
}

// ImageSources lists the embedded images for CheckImages.
func (e *Engine) ImageSources() []ImageSource { return e.images.Sources() }

// CheckImages reports the broken sources among srcs without reading the
// document, so hosts can run it in the background.
func (e *Engine) CheckImages(ctx context.Context, srcs []ImageSource) []*BrokenImageError {
	return e.images.Check(ctx, srcs)
}

// BeginResize starts dragging the handle of the image with id.
func (e *Engine) BeginResize(id string, x, y int) bool {
	return e.BeginResizeImage(e.tree.Image(id), x, y)
}

// BeginResizeImage starts dragging the handle of img, which may lack an id.
func (e *Engine) BeginResizeImage(img *html.Node, x, y int) bool {
	if img == nil || !e.tree.Contains(img) {
		return false
	}
	e.history.Record(e.tree, e.sel)
	return e.resize.Begin(img, x, y)
}

// UpdateResize applies the pointer position of the drag.
func (e *Engine) UpdateResize(x, y int) (w, h int) { return e.resize.Update(x, y) }

func (e *Engine) EndResize() { e.resize.End() }

func (e *Engine) CancelResize() { e.resize.Cancel() }

func (e *Engine) Resizing() bool { return e.resize.Active() }

// ResizeSize returns the size applied by the current drag.
func (e *Engine) ResizeSize() (w, h int) { return e.resize.Size() }
