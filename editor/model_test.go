package editor

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/iw2rmb/inkwell/engine"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type memClipboard struct {
	s string
}

func (c *memClipboard) ReadText() (string, error) { return c.s, nil }
func (c *memClipboard) WriteText(s string) error  { c.s = s; return nil }

func newModel(t *testing.T, cfg Config, w, h int) Model {
	t.Helper()
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m.SetSize(w, h)
}

func viewLines(m Model) []string {
	lines := strings.Split(m.View(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

func keys(m Model, msgs ...tea.KeyMsg) Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestModel_SetSizeReservesChrome(t *testing.T) {
	m := newModel(t, Config{Value: "<p>x</p>"}, 20, 6)
	if got := len(viewLines(m)); got != 6 {
		t.Fatalf("view lines=%d, want 6", got)
	}
	if m.viewport.Height != 4 {
		t.Fatalf("viewport height=%d, want 4", m.viewport.Height)
	}

	m = newModel(t, Config{Value: "<p>x</p>", HideToolbar: true}, 20, 6)
	if m.viewport.Height != 5 {
		t.Fatalf("viewport height without toolbar=%d, want 5", m.viewport.Height)
	}
}

func TestView_BlockPrefixes(t *testing.T) {
	value := `<h2>Title</h2><ul><li>one</li></ul><ol><li>x</li></ol><blockquote><p>q</p></blockquote>`
	m := newModel(t, Config{Value: value, HideToolbar: true}, 40, 8).Blur()

	got := viewLines(m)[:4]
	want := []string{"## Title", "• one", "1. x", "│ q"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d=%q, want %q", i, got[i], want[i])
		}
	}
}

func TestView_CenteredBlock(t *testing.T) {
	m := newModel(t, Config{Value: `<p style="text-align: center;">ab</p>`, HideToolbar: true}, 10, 3).Blur()
	if got, want := viewLines(m)[0], "    ab"; got != want {
		t.Fatalf("row=%q, want %q", got, want)
	}
}

func TestView_CaretAtEndOfLine(t *testing.T) {
	m := newModel(t, Config{Value: "<p>ab</p>", HideToolbar: true}, 10, 3)
	if got, want := viewLines(m)[0], "ab"; got != want {
		t.Fatalf("row=%q, want %q", got, want)
	}
	if _, x, ok := m.ensureLayout().caretCell(m.head); !ok || x != 2 {
		t.Fatalf("caret cell x=%d ok=%v, want 2", x, ok)
	}
}

func TestUpdate_TypingAndBold(t *testing.T) {
	m := newModel(t, Config{Value: "<p>ab</p>"}, 40, 5)

	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlB}, runes("c"), tea.KeyMsg{Type: tea.KeySpace})
	if got, want := m.Value(), "<p>ab<b>c </b></p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
	if !m.Engine().FormatState().Bold {
		t.Fatalf("bold not reported after typing in bold")
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	if got, want := m.Value(), "<p>ab</p>"; got != want {
		t.Fatalf("value after backspace=%q, want %q", got, want)
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if got, want := m.Value(), "<p>ab<b>c</b></p>"; got != want {
		t.Fatalf("value after undo=%q, want %q", got, want)
	}
}

func TestUpdate_TabInsertsAndAltITogglesItalic(t *testing.T) {
	m := newModel(t, Config{Value: "<p>ab</p>"}, 40, 5)

	alt := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i"), Alt: true}
	m = keys(m, alt, runes("c"), tea.KeyMsg{Type: tea.KeyTab})
	if got, want := m.Value(), "<p>ab<i>c\t</i></p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
	if !m.Engine().FormatState().Italic {
		t.Fatalf("italic not reported after tab")
	}
}

func TestUpdate_WordMovementAndDelete(t *testing.T) {
	m := newModel(t, Config{Value: "<p>one two</p>", HideToolbar: true}, 40, 5)

	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlLeft})
	if m.head != 4 {
		t.Fatalf("head after word left=%d, want 4", m.head)
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlW})
	if got, want := m.Value(), "<p>two</p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlShiftRight})
	if m.anchor != 0 || m.head != 3 {
		t.Fatalf("selection=%d..%d, want 0..3", m.anchor, m.head)
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyLeft, Alt: true})
	if m.anchor != 0 || m.head != 0 {
		t.Fatalf("selection after alt+left=%d..%d, want 0..0", m.anchor, m.head)
	}
}

func TestUpdate_EnterAndMovement(t *testing.T) {
	m := newModel(t, Config{Value: "<p>ab</p>", HideToolbar: true}, 40, 5)

	m = keys(m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyEnter}, runes("X"))
	if got, want := m.Value(), "<p>a</p><p>Xb</p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
	if m.head != 3 {
		t.Fatalf("head=%d, want 3", m.head)
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.head != 1 {
		t.Fatalf("head after up=%d, want 1", m.head)
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyHome})
	if m.head != 0 {
		t.Fatalf("head after home=%d, want 0", m.head)
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnd})
	if m.head != 4 {
		t.Fatalf("head after down+end=%d, want 4", m.head)
	}
}

func TestToolbar_HeadingToggles(t *testing.T) {
	m := newModel(t, Config{Value: "<p>Title</p>"}, 100, 5)

	var h2 zone
	for _, z := range toolbarZones() {
		if tools[z.tool].label == "H2" {
			h2 = z
		}
	}
	if h2.x1 == 0 {
		t.Fatalf("no H2 button")
	}
	if !strings.Contains(viewLines(m)[0], " H2 ") {
		t.Fatalf("toolbar=%q missing H2", viewLines(m)[0])
	}

	m, _ = m.Update(press(h2.x0+1, 0))
	if got, want := m.Value(), "<h2>Title</h2>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
	if got := m.Engine().FormatState().Heading; got != "h2" {
		t.Fatalf("heading=%q, want h2", got)
	}

	m, _ = m.Update(press(h2.x0+1, 0))
	if got, want := m.Value(), "<p>Title</p>"; got != want {
		t.Fatalf("value after second click=%q, want %q", got, want)
	}
}

func TestLinkDialog_Submit(t *testing.T) {
	m := newModel(t, Config{Value: "<p>hello world</p>"}, 60, 12)
	for range 5 {
		m = keys(m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlK})
	if m.dialog == nil {
		t.Fatalf("dialog not open")
	}
	if got := m.dialog.text.Value(); got != "world" {
		t.Fatalf("text field=%q, want world", got)
	}
	if !strings.Contains(m.View(), "Insert link") {
		t.Fatalf("dialog not rendered")
	}

	m = keys(m, runes("example.com"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.dialog != nil {
		t.Fatalf("dialog still open after submit")
	}
	if got := m.Value(); !strings.Contains(got, `<a href="https://example.com"`) || !strings.Contains(got, ">world</a>") {
		t.Fatalf("value=%q, want a link around world", got)
	}
}

func TestLinkDialog_InvalidURLStaysOpen(t *testing.T) {
	m := newModel(t, Config{Value: "<p>hello</p>"}, 60, 12)
	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlK}, runes("not a url"), tea.KeyMsg{Type: tea.KeyEnter})

	if m.dialog == nil {
		t.Fatalf("dialog closed on invalid url")
	}
	if !errors.Is(m.Err(), engine.ErrInvalidURL) {
		t.Fatalf("err=%v, want ErrInvalidURL", m.Err())
	}
	if !strings.Contains(m.View(), "Enter a valid URL") {
		t.Fatalf("invalid url message not rendered")
	}
	if got, want := m.Value(), "<p>hello</p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.dialog != nil {
		t.Fatalf("dialog open after esc")
	}
	if m.Engine().Link().IsOpen() {
		t.Fatalf("engine dialog open after esc")
	}
}

func TestChange_DebouncedByTick(t *testing.T) {
	now := time.Unix(1000, 0)
	var got []string
	m := newModel(t, Config{
		Value:    "<p></p>",
		Debounce: 100 * time.Millisecond,
		Now:      func() time.Time { return now },
		OnChange: func(s string) { got = append(got, s) },
	}, 40, 5)

	var cmd tea.Cmd
	m, cmd = m.Update(runes("a"))
	if cmd == nil {
		t.Fatalf("no timer armed after an edit")
	}
	m, _ = m.Update(runes("b"))
	gen := m.Engine().Notifier().Generation()

	m, cmd = m.Update(tickMsg{id: m.id, gen: gen})
	if len(got) != 0 {
		t.Fatalf("notified before the window elapsed: %q", got)
	}
	if cmd == nil {
		t.Fatalf("early tick did not re-arm the timer")
	}

	now = now.Add(100 * time.Millisecond)
	m, _ = m.Update(tickMsg{id: m.id, gen: gen - 1})
	if len(got) != 0 {
		t.Fatalf("stale tick notified: %q", got)
	}
	m, _ = m.Update(tickMsg{id: m.id, gen: gen})
	if len(got) != 1 || got[0] != "<p>ab</p>" {
		t.Fatalf("notifications=%q, want one with <p>ab</p>", got)
	}

	// The host echoes the emitted value back; the caret must stay.
	m = m.SetValue(got[0])
	if m.head != 2 {
		t.Fatalf("head=%d after echo, want 2", m.head)
	}
}

func TestChange_BlurFlushes(t *testing.T) {
	var got []string
	m := newModel(t, Config{Value: "<p></p>", OnChange: func(s string) { got = append(got, s) }}, 40, 5)
	m = keys(m, runes("x"))
	m, _ = m.Update(tea.BlurMsg{})
	if len(got) != 1 || got[0] != "<p>x</p>" {
		t.Fatalf("notifications=%q, want one with <p>x</p>", got)
	}
	if m.Focused() {
		t.Fatalf("still focused after blur")
	}
}

func TestSetValue_ReplacesDocument(t *testing.T) {
	m := newModel(t, Config{Value: "<p>old</p>"}, 40, 5)
	m = m.SetValue("<p>new <script>x</script>text</p>")
	if got, want := m.Value(), "<p>new text</p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
	if m.head != 8 {
		t.Fatalf("head=%d, want caret at end 8", m.head)
	}
}

func TestResize_DragHandle(t *testing.T) {
	value := `<p><img src="https://cdn.example/a.png" alt="a" width="80" height="32"></p>`
	m := newModel(t, Config{Value: value, HideToolbar: true}, 40, 5)
	if got, want := viewLines(m)[0], "[a 80x32]◢"; !strings.HasPrefix(got, want) {
		t.Fatalf("row=%q, want prefix %q", got, want)
	}

	m, _ = m.Update(press(9, 0))
	if !m.Engine().Resizing() {
		t.Fatalf("press on handle did not start a resize")
	}
	m, _ = m.Update(tea.MouseMsg{X: 14, Y: 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m, _ = m.Update(tea.MouseMsg{X: 14, Y: 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.Engine().Resizing() {
		t.Fatalf("resize still active after release")
	}

	img := m.Engine().Tree().Images()[0]
	if w, h := engine.ImageSize(img); w != 120 || h != 64 {
		t.Fatalf("size=%dx%d, want 120x64", w, h)
	}
	if !strings.HasPrefix(viewLines(m)[0], "[a 120x64]") {
		t.Fatalf("row=%q not relabelled", viewLines(m)[0])
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if w, h := engine.ImageSize(m.Engine().Tree().Images()[0]); w != 80 || h != 32 {
		t.Fatalf("size after undo=%dx%d, want 80x32", w, h)
	}
}

func TestClipboard_CopyCutPaste(t *testing.T) {
	clip := &memClipboard{}
	m := newModel(t, Config{Value: "<p>hello</p>", Clipboard: clip}, 40, 5)

	m = keys(m, tea.KeyMsg{Type: tea.KeyShiftLeft}, tea.KeyMsg{Type: tea.KeyShiftLeft}, tea.KeyMsg{Type: tea.KeyCtrlC})
	if clip.s != "lo" {
		t.Fatalf("clipboard=%q, want lo", clip.s)
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyCtrlV})
	if got, want := m.Value(), "<p>hellolo</p>"; got != want {
		t.Fatalf("value after paste=%q, want %q", got, want)
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyShiftLeft}, tea.KeyMsg{Type: tea.KeyCtrlX})
	if got, want := m.Value(), "<p>hellol</p>"; got != want {
		t.Fatalf("value after cut=%q, want %q", got, want)
	}
	if clip.s != "o" {
		t.Fatalf("clipboard after cut=%q, want o", clip.s)
	}
}

func TestMouse_ClickAndShiftClick(t *testing.T) {
	m := newModel(t, Config{Value: "<p>hello world</p>", HideToolbar: true}, 40, 5)

	m, _ = m.Update(press(2, 0))
	m, _ = m.Update(tea.MouseMsg{X: 2, Y: 0, Action: tea.MouseActionRelease})
	if start, end, _ := m.Engine().Offsets(); start != 2 || end != 2 {
		t.Fatalf("caret=(%d,%d), want (2,2)", start, end)
	}

	shift := press(7, 0)
	shift.Shift = true
	m, _ = m.Update(shift)
	if start, end, _ := m.Engine().Offsets(); start != 2 || end != 7 {
		t.Fatalf("selection=(%d,%d), want (2,7)", start, end)
	}
}

func TestStatus_FriendlyErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{err: engine.ErrInvalidURL, want: "Enter a valid URL"},
		{err: errors.Join(os.ErrNotExist), want: "File not found"},
		{err: errors.New("boom"), want: "boom"},
	}
	for _, tc := range cases {
		if got := errorText(tc.err); got != tc.want {
			t.Fatalf("errorText(%v)=%q, want %q", tc.err, got, tc.want)
		}
	}
}
