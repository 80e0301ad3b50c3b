package editor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the editor key bindings.
//
// Bindings must be portable across terminals (ctrl/alt fallbacks).
type KeyMap struct {
	Left, Right, Up, Down key.Binding
	ShiftLeft, ShiftRight key.Binding
	WordLeft, WordRight   key.Binding
	ShiftWordLeft         key.Binding
	ShiftWordRight        key.Binding
	Home, End, SelectAll  key.Binding

	Backspace, Delete  key.Binding
	DeleteWordBackward key.Binding
	Enter, LineBreak   key.Binding

	Bold, Italic, Underline, RemoveFormat key.Binding

	Heading1, Heading2, Heading3 key.Binding
	Paragraph, Quote             key.Binding
	BulletList, OrderedList      key.Binding

	AlignLeft, AlignCenter, AlignRight, AlignJustify key.Binding

	Link, Image key.Binding

	Undo, Redo       key.Binding
	Copy, Cut, Paste key.Binding

	Blur key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),

		ShiftLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "select left")),
		ShiftRight: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "select right")),

		WordLeft:       key.NewBinding(key.WithKeys("ctrl+left", "alt+left", "alt+b"), key.WithHelp("ctrl+←", "word left")),
		WordRight:      key.NewBinding(key.WithKeys("ctrl+right", "alt+right", "alt+f"), key.WithHelp("ctrl+→", "word right")),
		ShiftWordLeft:  key.NewBinding(key.WithKeys("ctrl+shift+left", "alt+shift+left"), key.WithHelp("ctrl+shift+←", "select word left")),
		ShiftWordRight: key.NewBinding(key.WithKeys("ctrl+shift+right", "alt+shift+right"), key.WithHelp("ctrl+shift+→", "select word right")),

		Home:      key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "row start")),
		End:       key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "row end")),
		SelectAll: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),

		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete left")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete right")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new paragraph")),
		// Most terminals cannot report shift+enter; alt+enter is the fallback.
		LineBreak: key.NewBinding(key.WithKeys("shift+enter", "alt+enter"), key.WithHelp("alt+enter", "line break")),

		DeleteWordBackward: key.NewBinding(key.WithKeys("alt+backspace", "ctrl+w"), key.WithHelp("ctrl+w", "delete word")),

		// ctrl+i arrives as tab in most terminals.
		Bold:         key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		Italic:       key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "italic")),
		Underline:    key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "underline")),
		RemoveFormat: key.NewBinding(key.WithKeys("ctrl+\\"), key.WithHelp("ctrl+\\", "clear formatting")),

		Heading1:    key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "heading 1")),
		Heading2:    key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "heading 2")),
		Heading3:    key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("alt+3", "heading 3")),
		Paragraph:   key.NewBinding(key.WithKeys("alt+0"), key.WithHelp("alt+0", "paragraph")),
		Quote:       key.NewBinding(key.WithKeys("alt+q"), key.WithHelp("alt+q", "quote")),
		BulletList:  key.NewBinding(key.WithKeys("alt+u"), key.WithHelp("alt+u", "bullet list")),
		OrderedList: key.NewBinding(key.WithKeys("alt+o"), key.WithHelp("alt+o", "numbered list")),

		AlignLeft:    key.NewBinding(key.WithKeys("alt+l"), key.WithHelp("alt+l", "align left")),
		AlignCenter:  key.NewBinding(key.WithKeys("alt+e"), key.WithHelp("alt+e", "center")),
		AlignRight:   key.NewBinding(key.WithKeys("alt+r"), key.WithHelp("alt+r", "align right")),
		AlignJustify: key.NewBinding(key.WithKeys("alt+j"), key.WithHelp("alt+j", "justify")),

		Link:  key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "link")),
		Image: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "insert image")),

		Undo: key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo: key.NewBinding(key.WithKeys("ctrl+shift+z", "ctrl+y"), key.WithHelp("ctrl+y", "redo")),

		Copy:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "copy")),
		Cut:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cut")),
		Paste: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),

		Blur: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave editor")),
	}
}
