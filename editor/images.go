package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/inkwell/engine"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// imagePaths returns the image file paths in s when s consists of nothing
// else. Terminals paste dropped files as quoted or backslash-escaped paths.
func imagePaths(s string) []string {
	var out []string
	for _, f := range splitPaths(strings.TrimSpace(s)) {
		if !imageExts[strings.ToLower(filepath.Ext(f))] {
			return nil
		}
		out = append(out, f)
	}
	return out
}

func splitPaths(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		esc   bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == '\\' && quote == 0:
			esc = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// readFiles loads paths off the update loop.
func (m Model) readFiles(paths []string) tea.Cmd {
	read, id := m.cfg.ReadFile, m.id
	return func() tea.Msg {
		files := make([]readFile, 0, len(paths))
		for _, p := range paths {
			data, err := read(expandHome(p))
			files = append(files, readFile{name: p, data: data, err: err})
		}
		return filesReadMsg{id: id, files: files}
	}
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// queueFiles appends read files to the upload queue. Files upload one at a
// time so a multi-file drop keeps its order in the document.
func (m *Model) queueFiles(files []readFile) tea.Cmd {
	var errs []error
	for _, f := range files {
		if f.err != nil {
			errs = append(errs, f.err)
			continue
		}
		m.queue = append(m.queue, engine.File{Name: filepath.Base(f.name), Data: f.data})
	}
	if err := errors.Join(errs...); err != nil {
		m.setErr(err)
	}
	return m.nextUpload()
}

func (m *Model) nextUpload() tea.Cmd {
	for m.uploads == 0 && len(m.queue) > 0 {
		f := m.queue[0]
		m.queue = m.queue[1:]
		if !m.eng.Selection().Active {
			m.eng.Focus()
		}
		p, err := m.eng.PrepareImage(f)
		if err != nil {
			m.setErr(err)
			continue
		}
		m.uploads++
		m.status = "uploading " + f.Name
		eng, id := m.eng, m.id
		return func() tea.Msg {
			src, err := eng.UploadImage(context.Background(), p)
			return uploadDoneMsg{id: id, pending: p, src: src, err: err}
		}
	}
	return nil
}

func (m *Model) finishUpload(msg uploadDoneMsg) tea.Cmd {
	m.uploads = max(0, m.uploads-1)
	m.status = ""
	if msg.err != nil {
		m.setErr(msg.err)
		return m.nextUpload()
	}
	m.eng.CompleteImage(msg.pending, msg.src)
	m.syncCaret()
	m.rebuildContent()
	m.followCursor()
	m.status = "inserted " + msg.pending.File.Name
	return m.nextUpload()
}

func (m *Model) setErr(err error) {
	m.err = err
	m.log.Warn("editor action failed", zap.Error(err))
}

// VerifyImages checks every embedded image source in the background and
// marks the broken ones.
func (m Model) VerifyImages() tea.Cmd {
	srcs := m.eng.ImageSources()
	if len(srcs) == 0 {
		return nil
	}
	eng, id := m.eng, m.id
	return func() tea.Msg {
		return imagesCheckedMsg{id: id, broken: eng.CheckImages(context.Background(), srcs)}
	}
}

func (m *Model) markBroken(broken []*engine.BrokenImageError) {
	m.broken = make(map[string]bool, len(broken))
	for _, b := range broken {
		m.broken[b.ID] = true
	}
	m.brokenGen++
	if len(broken) > 0 {
		m.status = brokenStatus(len(broken))
	}
}

func brokenStatus(n int) string {
	if n == 1 {
		return "1 image could not be loaded"
	}
	return fmt.Sprintf("%d images could not be loaded", n)
}
