package editor

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"
	"go.uber.org/zap"

	"github.com/iw2rmb/inkwell/engine"
)

// Model is a Bubble Tea component that renders and edits an HTML document
// through the engine.
type Model struct {
	id  int
	cfg Config
	eng *engine.Engine
	log *zap.Logger

	focused bool

	viewport viewport.Model
	width    int
	height   int

	layout layout
	// broken holds the ids of images whose source failed to load; brokenGen
	// changes with it.
	broken    map[string]bool
	brokenGen int

	// anchor and head are the selection ends as content offsets; head is
	// where the caret is drawn and moves.
	anchor, head int
	dragging     bool

	armed uint64

	dialog *linkDialog
	prompt *pathPrompt

	queue   []engine.File
	uploads int

	status string
	err    error
}

func New(cfg Config) (Model, error) {
	cfg = cfg.withDefaults()
	eng, err := engine.New(cfg.engineConfig())
	if err != nil {
		return Model{}, err
	}
	m := Model{
		id:       nextID(),
		cfg:      cfg,
		eng:      eng,
		log:      cfg.Logger,
		focused:  true,
		viewport: viewport.New(0, 0),
		broken:   make(map[string]bool),
	}
	m.eng.Focus()
	m.syncCaret()
	m.rebuildContent()
	return m, nil
}

func (m Model) Engine() *engine.Engine { return m.eng }

// Init checks the sources of the initial images.
func (m Model) Init() tea.Cmd { return m.VerifyImages() }

// Value returns the current serialization of the document.
func (m Model) Value() string { return m.eng.Value() }

// Err returns the error of the last failed action, if any.
func (m Model) Err() error { return m.err }

// SetValue applies an externally supplied document value. Values the editor
// produced itself are ignored so in-progress edits survive.
func (m Model) SetValue(v string) Model {
	if m.eng.SetValue(v) {
		m.broken = make(map[string]bool)
		m.brokenGen++
		m.dialog = nil
		m.syncCaret()
		m.rebuildContent()
		m.followCursor()
	}
	return m
}

func (m Model) SetSize(width, height int) Model {
	width, height = max(width, 0), max(height, 0)
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(0, height-m.chromeRows())

	m.rebuildContent()
	m.followCursor()
	return m
}

func (m Model) Focus() Model {
	if !m.focused {
		m.focused = true
		m.eng.Focus()
		m.syncCaret()
		m.rebuildContent()
		m.followCursor()
	}
	return m
}

// Blur flushes a pending change notification and drops an in-flight drag.
func (m Model) Blur() Model {
	if m.focused {
		m.focused = false
		m.dragging = false
		m.eng.Blur()
		m.rebuildContent()
	}
	return m
}

func (m Model) Focused() bool { return m.focused }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.FocusMsg:
		return m.Focus(), nil
	case tea.BlurMsg:
		return m.Blur(), nil
	case tickMsg:
		if msg.id != m.id {
			return m, nil
		}
		if !m.eng.Tick(msg.gen) && msg.gen == m.eng.Notifier().Generation() {
			// Woke before the deadline; arm again.
			m.armed = 0
		}
	case filesReadMsg:
		if msg.id != m.id {
			return m, nil
		}
		cmd = m.queueFiles(msg.files)
	case uploadDoneMsg:
		if msg.id != m.id {
			return m, nil
		}
		cmd = m.finishUpload(msg)
	case imagesCheckedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.markBroken(msg.broken)
	case tea.KeyMsg:
		switch {
		case m.dialog != nil:
			m, cmd = m.updateDialog(msg)
		case m.prompt != nil:
			m, cmd = m.updatePrompt(msg)
		default:
			m, cmd = m.updateKey(msg)
		}
	case tea.MouseMsg:
		m, cmd = m.updateMouse(msg)
	default:
		m, cmd = m.updateInputs(msg)
	}

	m.rebuildContent()
	timer := m.armTimer()
	return m, tea.Batch(cmd, timer)
}

func (m Model) View() string {
	parts := make([]string, 0, 3)
	if !m.cfg.HideToolbar {
		parts = append(parts, m.renderToolbar())
	}
	parts = append(parts, m.viewport.View(), m.renderStatus())
	base := strings.Join(parts, "\n")

	switch {
	case m.dialog != nil:
		return overlay.Composite(m.renderDialog(), base, overlay.Center, overlay.Center, 0, 0)
	case m.prompt != nil:
		return overlay.Composite(m.renderPrompt(), base, overlay.Center, overlay.Center, 0, 0)
	}
	return base
}

func (m Model) chromeRows() int {
	if m.cfg.HideToolbar {
		return 1
	}
	return 2
}

func (m Model) toolbarRows() int {
	if m.cfg.HideToolbar {
		return 0
	}
	return 1
}

// armTimer returns a tick for the engine's pending change notification
// unless one is already armed for its generation.
func (m *Model) armTimer() tea.Cmd {
	n := m.eng.Notifier()
	pending, deadline := n.Pending()
	gen := n.Generation()
	if !pending || gen == m.armed {
		return nil
	}
	m.armed = gen
	d := max(deadline.Sub(m.cfg.Now()), 0)
	id := m.id
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{id: id, gen: gen} })
}

// syncCaret reads the engine selection back into anchor and head, keeping
// the direction of an extended selection.
func (m *Model) syncCaret() {
	start, end, ok := m.eng.Offsets()
	if !ok {
		return
	}
	switch {
	case start == end:
		m.anchor, m.head = start, start
	case m.anchor <= m.head:
		m.anchor, m.head = start, end
	default:
		m.anchor, m.head = end, start
	}
}

func (m *Model) ensureLayout() layout {
	key := layoutKey{version: m.eng.Tree().Version(), width: m.viewport.Width, broken: m.brokenGen}
	if m.layout.rows == nil || m.layout.key != key {
		m.layout = buildLayout(m.eng.Tree(), m.viewport.Width, m.broken)
		m.layout.key = key
	}
	return m.layout
}

func (m *Model) rebuildContent() {
	m.ensureLayout()
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) followCursor() {
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if h <= 0 {
		return
	}
	row, _, ok := m.ensureLayout().caretCell(m.head)
	if !ok {
		return
	}
	y := m.viewport.YOffset
	if row < y {
		m.viewport.SetYOffset(row)
		return
	}
	if row >= y+h {
		m.viewport.SetYOffset(row - h + 1)
	}
}
