package engine

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/inkwell/doc"
	"github.com/iw2rmb/inkwell/internal/grapheme"
)

// Command names a formatting or editing operation.
type Command string

const (
	CmdBold            Command = "bold"
	CmdItalic          Command = "italic"
	CmdUnderline       Command = "underline"
	CmdFormatBlock     Command = "formatBlock"
	CmdUnorderedList   Command = "insertUnorderedList"
	CmdOrderedList     Command = "insertOrderedList"
	CmdJustifyLeft     Command = "justifyLeft"
	CmdJustifyCenter   Command = "justifyCenter"
	CmdJustifyRight    Command = "justifyRight"
	CmdJustifyFull     Command = "justifyFull"
	CmdUndo            Command = "undo"
	CmdRedo            Command = "redo"
	CmdInsertLineBreak Command = "insertLineBreak"
	CmdInsertParagraph Command = "insertParagraph"
	CmdInsertText      Command = "insertText"
	CmdDelete          Command = "delete"
	CmdForwardDelete   Command = "forwardDelete"
	CmdRemoveFormat    Command = "removeFormat"
)

var inlineCommands = map[Command]doc.InlineFormat{
	CmdBold:      doc.Bold,
	CmdItalic:    doc.Italic,
	CmdUnderline: doc.Underline,
}

var alignCommands = map[Command]string{
	CmdJustifyLeft:   "left",
	CmdJustifyCenter: "center",
	CmdJustifyRight:  "right",
	CmdJustifyFull:   "justify",
}

var blockTypes = map[string]atom.Atom{
	"p":          atom.P,
	"h1":         atom.H1,
	"h2":         atom.H2,
	"h3":         atom.H3,
	"h4":         atom.H4,
	"h5":         atom.H5,
	"blockquote": atom.Blockquote,
}

// Executor applies commands to a tree at an explicit selection.
type Executor struct {
	tree    *doc.Tree
	tracker *doc.Tracker
	history *doc.History
	typing  *TypingStyle
	format  *FormatSync
	log     *zap.Logger

	// last is the previous successful command, used to merge runs of typing
	// into one undo step.
	last Command
}

func NewExecutor(t *doc.Tree, tr *doc.Tracker, h *doc.History, typing *TypingStyle, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		tree:    t,
		tracker: tr,
		history: h,
		typing:  typing,
		format:  NewFormatSync(t, typing),
		log:     log,
	}
}

// Execute runs name with arg against sel and reports whether it applied.
// Without an active selection every command is a no-op.
func (x *Executor) Execute(sel *doc.Selection, name Command, arg string) bool {
	if sel == nil || !sel.Active || sel.Range.Start.Node == nil {
		return false
	}
	ok := x.execute(sel, name, arg)
	if ok {
		x.last = name
	}
	x.log.Debug("command", zap.String("name", string(name)), zap.String("arg", arg), zap.Bool("applied", ok))
	return ok
}

func (x *Executor) execute(sel *doc.Selection, name Command, arg string) bool {
	switch name {
	case CmdUndo:
		x.typing.Reset()
		return x.history.Undo(x.tree, sel)
	case CmdRedo:
		x.typing.Reset()
		return x.history.Redo(x.tree, sel)
	}

	if f, ok := inlineCommands[name]; ok {
		return x.toggleInline(sel, f)
	}
	if align, ok := alignCommands[name]; ok {
		x.keepSelection(sel, func(r doc.Range) { x.tree.SetAlign(r, align) })
		return true
	}

	switch name {
	case CmdFormatBlock:
		a, ok := blockTypes[strings.ToLower(strings.Trim(arg, "<> "))]
		if !ok {
			return false
		}
		x.keepSelection(sel, func(r doc.Range) {
			if a == atom.Blockquote {
				x.tree.ToggleBlockquote(r)
				return
			}
			x.tree.SetBlockType(r, a)
		})
		return true
	case CmdUnorderedList:
		x.keepSelection(sel, func(r doc.Range) { x.tree.ToggleList(r, atom.Ul) })
		return true
	case CmdOrderedList:
		x.keepSelection(sel, func(r doc.Range) { x.tree.ToggleList(r, atom.Ol) })
		return true
	case CmdRemoveFormat:
		if sel.IsCollapsed() {
			for _, f := range []doc.InlineFormat{doc.Bold, doc.Italic, doc.Underline} {
				x.typing.Set(f, false)
			}
			return true
		}
		x.keepSelection(sel, x.tree.ClearAllFormats)
		return true
	case CmdInsertText:
		return x.insertText(sel, arg)
	case CmdInsertLineBreak:
		x.record(sel, name)
		p := x.deleteSelection(sel)
		*sel = doc.Caret(x.tree.InsertLineBreak(p))
		return true
	case CmdInsertParagraph:
		x.record(sel, name)
		p := x.deleteSelection(sel)
		x.typing.Reset()
		*sel = doc.Caret(x.tree.SplitBlock(p))
		return true
	case CmdDelete:
		return x.deleteBackward(sel)
	case CmdForwardDelete:
		return x.deleteForward(sel)
	}
	return false
}

// Break ends the current typing run so the next insertion starts a new undo
// step. Hosts call it when the caret is moved.
func (x *Executor) Break() { x.last = "" }

// record stores an undo step, merging consecutive typing.
func (x *Executor) record(sel *doc.Selection, name Command) {
	if name == CmdInsertText && x.last == CmdInsertText && sel.IsCollapsed() {
		return
	}
	x.history.Record(x.tree, *sel)
}

// keepSelection records an undo step and runs mutate with the selection
// snapshotted around it.
func (x *Executor) keepSelection(sel *doc.Selection, mutate func(doc.Range)) {
	x.history.Record(x.tree, *sel)
	snap, ok := x.tracker.Snapshot(*sel)
	mutate(x.tree.Normalize(sel.Range))
	if ok {
		x.tracker.Restore(sel, snap)
	}
}

func (x *Executor) toggleInline(sel *doc.Selection, f doc.InlineFormat) bool {
	if sel.IsCollapsed() {
		on := x.format.commandState(sel.Range.Start.Node, f)
		x.typing.Set(f, !on)
		return true
	}
	x.keepSelection(sel, func(r doc.Range) {
		if x.tree.HasFormat(r, f) {
			x.tree.ClearFormat(r, f)
			return
		}
		x.tree.ApplyFormat(r, f)
	})
	return true
}

// deleteSelection removes selected content and returns the caret.
func (x *Executor) deleteSelection(sel *doc.Selection) doc.Point {
	if sel.IsCollapsed() {
		return sel.Range.Start
	}
	return x.tree.DeleteRange(sel.Range)
}

// insertText inserts plain text; line feeds become line breaks. The pending
// typing style is applied to the inserted run.
func (x *Executor) insertText(sel *doc.Selection, s string) bool {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if s == "" {
		return false
	}
	x.record(sel, CmdInsertText)

	p := x.deleteSelection(sel)
	start := x.tree.OffsetOf(p)
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			p = x.tree.InsertLineBreak(p)
		}
		p = x.tree.InsertText(p, line)
	}
	end := x.tree.OffsetOf(p)

	if !x.typing.Empty() && start >= 0 && end > start {
		r := doc.Range{Start: x.tree.PointAt(start, doc.Forward), End: x.tree.PointAt(end, doc.Backward)}
		x.applyTyping(r)
		p = x.tree.PointAt(end, doc.Backward)
	}
	*sel = doc.Caret(p)
	return true
}

func (x *Executor) applyTyping(r doc.Range) {
	for _, f := range []doc.InlineFormat{doc.Bold, doc.Italic, doc.Underline} {
		want, ok := x.typing.Get(f)
		if !ok {
			continue
		}
		start, end := x.tree.OffsetOf(r.Start), x.tree.OffsetOf(r.End)
		has := x.tree.HasFormat(r, f)
		switch {
		case want && !has:
			x.tree.ApplyFormat(r, f)
		case !want && has:
			x.tree.ClearFormat(r, f)
		}
		r = doc.Range{Start: x.tree.PointAt(start, doc.Forward), End: x.tree.PointAt(end, doc.Backward)}
	}
}

func (x *Executor) deleteBackward(sel *doc.Selection) bool {
	if !sel.IsCollapsed() {
		x.record(sel, CmdDelete)
		*sel = doc.Caret(x.tree.DeleteRange(sel.Range))
		return true
	}
	off := x.tree.OffsetOf(sel.Range.Start)
	if off <= 0 {
		return x.liftAtStart(sel)
	}
	rs := []rune(x.tree.Text())
	k := grapheme.LastLen(string(rs[max(0, off-16):off]))
	if k == 0 {
		k = 1
	}
	x.record(sel, CmdDelete)
	r := doc.Range{Start: x.tree.PointAt(off-k, doc.Backward), End: x.tree.PointAt(off, doc.Forward)}
	*sel = doc.Caret(x.tree.DeleteRange(r))
	return true
}

// liftAtStart handles backspace at the very start of the document, which
// only lifts a list item or heading back to a paragraph.
func (x *Executor) liftAtStart(sel *doc.Selection) bool {
	n := sel.Range.Start.Node
	root := x.tree.Root()
	if li := doc.Closest(n, root, func(n *html.Node) bool { return n.DataAtom == atom.Li }); li != nil {
		x.keepSelection(sel, func(r doc.Range) { x.tree.ToggleList(r, li.Parent.DataAtom) })
		return true
	}
	if b := doc.Closest(n, root, doc.IsTextBlock); b != nil && b.DataAtom != atom.P {
		x.keepSelection(sel, func(r doc.Range) {
			if b.DataAtom == atom.Blockquote || doc.Closest(b, root, func(n *html.Node) bool { return n.DataAtom == atom.Blockquote }) != nil {
				x.tree.ToggleBlockquote(r)
				return
			}
			x.tree.SetBlockType(r, atom.P)
		})
		return true
	}
	return false
}

func (x *Executor) deleteForward(sel *doc.Selection) bool {
	if !sel.IsCollapsed() {
		x.record(sel, CmdForwardDelete)
		*sel = doc.Caret(x.tree.DeleteRange(sel.Range))
		return true
	}
	off := x.tree.OffsetOf(sel.Range.Start)
	rs := []rune(x.tree.Text())
	if off < 0 || off >= len(rs) {
		return false
	}
	k := grapheme.FirstLen(string(rs[off:min(len(rs), off+16)]))
	if k == 0 {
		k = 1
	}
	x.record(sel, CmdForwardDelete)
	r := doc.Range{Start: x.tree.PointAt(off, doc.Backward), End: x.tree.PointAt(off+k, doc.Forward)}
	*sel = doc.Caret(x.tree.DeleteRange(r))
	return true
}
