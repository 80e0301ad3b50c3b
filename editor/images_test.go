package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/engine"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type stubUploader struct {
	url   string
	names []string
}

func (u *stubUploader) Upload(_ context.Context, f engine.File) (string, error) {
	u.names = append(u.names, f.Name)
	return u.url + f.Name, nil
}

func stubFiles(files map[string][]byte) func(string) ([]byte, error) {
	return func(p string) ([]byte, error) {
		b, ok := files[p]
		if !ok {
			return nil, fs.ErrNotExist
		}
		return b, nil
	}
}

func TestImagePaths(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{in: "/tmp/a.png", want: []string{"/tmp/a.png"}},
		{in: "'/tmp/My Pic.JPG'\n", want: []string{"/tmp/My Pic.JPG"}},
		{in: `/tmp/My\ Pic.gif /tmp/b.webp`, want: []string{"/tmp/My Pic.gif", "/tmp/b.webp"}},
		{in: "/tmp/a.png and more", want: nil},
		{in: "hello world", want: nil},
		{in: "", want: nil},
	}
	for _, tc := range cases {
		got := imagePaths(tc.in)
		if strings.Join(got, "|") != strings.Join(tc.want, "|") {
			t.Fatalf("imagePaths(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

// step runs cmd and feeds its message back into m.
func step(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	return m.Update(cmd())
}

func TestUpload_PromptReadsAndInsertsInOrder(t *testing.T) {
	up := &stubUploader{url: "https://cdn.example/"}
	m := newModel(t, Config{
		Value:    "<p>x</p>",
		Uploader: up,
		ReadFile: stubFiles(map[string][]byte{
			"/tmp/a.png": pngBytes(t, 2, 1),
			"/tmp/b.png": pngBytes(t, 1, 2),
		}),
	}, 60, 12)

	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.prompt == nil {
		t.Fatalf("image prompt not open")
	}
	m = keys(m, runes("/tmp/a.png /tmp/b.png"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompt != nil {
		t.Fatalf("prompt still open")
	}

	// filesReadMsg starts the first upload; each completion starts the next.
	m, cmd = step(t, m, cmd)
	if m.uploads != 1 || len(m.queue) != 1 {
		t.Fatalf("uploads=%d queue=%d, want 1 and 1", m.uploads, len(m.queue))
	}
	if !strings.Contains(m.View(), "uploading a.png") {
		t.Fatalf("upload status not shown")
	}
	msg := cmd()
	done, ok := msg.(uploadDoneMsg)
	if !ok {
		t.Fatalf("msg=%T, want uploadDoneMsg", msg)
	}
	m, cmd = m.Update(done)
	next := findUpload(t, cmd)
	m, _ = m.Update(next)

	if got := strings.Join(up.names, ","); got != "a.png,b.png" {
		t.Fatalf("uploaded=%q, want a.png,b.png", got)
	}
	v := m.Value()
	a := strings.Index(v, `src="https://cdn.example/a.png"`)
	b := strings.Index(v, `src="https://cdn.example/b.png"`)
	if a < 0 || b < 0 || a > b {
		t.Fatalf("value=%q, want a.png before b.png", v)
	}
	if m.uploads != 0 || len(m.queue) != 0 {
		t.Fatalf("uploads=%d queue=%d after completion", m.uploads, len(m.queue))
	}
}

// findUpload runs cmd, unpacking a batch, and returns the upload result.
// Timer commands are skipped without running them.
func findUpload(t *testing.T, cmd tea.Cmd) uploadDoneMsg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("no follow-up upload")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if done, ok := c().(uploadDoneMsg); ok {
				return done
			}
		}
		t.Fatalf("batch without an upload result")
	}
	done, ok := msg.(uploadDoneMsg)
	if !ok {
		t.Fatalf("msg=%T, want uploadDoneMsg", msg)
	}
	return done
}

func TestUpload_PastedPathInsertsPreview(t *testing.T) {
	data := pngBytes(t, 3, 3)
	m := newModel(t, Config{
		Value:    "<p></p>",
		ReadFile: stubFiles(map[string][]byte{"/tmp/My Pic.png": data}),
	}, 60, 12)

	paste := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'/tmp/My Pic.png'"), Paste: true}
	m, cmd := m.Update(paste)
	m, cmd = step(t, m, cmd)
	m, _ = m.Update(findUpload(t, cmd))

	v := m.Value()
	if !strings.Contains(v, `alt="My Pic.png"`) || !strings.Contains(v, `src="`+engine.DataURI("image/png", data)+`"`) {
		t.Fatalf("value=%q, want an embedded preview", v)
	}
}

func TestUpload_RejectsAndReportsErrors(t *testing.T) {
	m := newModel(t, Config{
		Value:    "<p>x</p>",
		ReadFile: stubFiles(map[string][]byte{"/tmp/notes.txt": []byte("plain notes")}),
	}, 60, 12)

	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlO}, runes("/tmp/notes.txt /tmp/missing.png"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = step(t, m, cmd)
	if cmd != nil {
		t.Fatalf("upload started for rejected files")
	}
	if !errors.Is(m.Err(), engine.ErrInvalidFileType) {
		t.Fatalf("err=%v, want ErrInvalidFileType", m.Err())
	}
	if got, want := m.Value(), "<p>x</p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
}

func TestVerifyImages_MarksBroken(t *testing.T) {
	value := `<p><img src="data:image/png;base64,AAAA" alt="bad" data-image-id="bad"></p>`
	m := newModel(t, Config{Value: value, HideToolbar: true}, 40, 5)

	cmd := m.Init()
	if cmd == nil {
		t.Fatalf("no verification command")
	}
	m, _ = m.Update(cmd())
	if !m.broken["bad"] {
		t.Fatalf("image not marked broken")
	}
	if got := viewLines(m)[0]; !strings.HasPrefix(got, "[broken bad]") {
		t.Fatalf("row=%q, want broken label", got)
	}
	if !strings.Contains(m.View(), "1 image could not be loaded") {
		t.Fatalf("status does not report the broken image")
	}
}
