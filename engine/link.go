package engine

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/inkwell/doc"
)

var validate = validator.New()

// Link presentation applied to every created or edited link.
const (
	LinkTarget = "_blank"
	LinkRel    = "noopener noreferrer"
	LinkColor  = "#2563eb"
)

// NormalizeURL prefixes https:// when raw carries no scheme and checks that
// the result is an absolute URL.
func NormalizeURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" || strings.ContainsAny(u, " \t\r\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if !hasScheme(u) {
		u = "https://" + u
	}
	if err := validate.Var(u, "url"); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

func hasScheme(u string) bool {
	if strings.Contains(u, "://") {
		return true
	}
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:")
}

// LinkMode tells whether the dialog creates a link or edits one.
type LinkMode uint8

const (
	LinkInsert LinkMode = iota
	LinkUpdate
)

// LinkOutcome is the terminal state of one dialog session.
type LinkOutcome uint8

const (
	LinkNone LinkOutcome = iota
	LinkInserted
	LinkUpdated
	LinkRemoved
	LinkCancelled
)

func (o LinkOutcome) String() string {
	switch o {
	case LinkInserted:
		return "inserted"
	case LinkUpdated:
		return "updated"
	case LinkRemoved:
		return "removed"
	case LinkCancelled:
		return "cancelled"
	}
	return "none"
}

// LinkDialog is the state of the link dialog between Open and one of
// Submit, Remove or Cancel.
type LinkDialog struct {
	tree    *doc.Tree
	tracker *doc.Tracker
	history *doc.History
	log     *zap.Logger

	open bool
	mode LinkMode

	// Text and URL are the dialog fields.
	Text string
	URL  string

	snap     doc.Snapshot
	hasSnap  bool
	selected bool
	link     *html.Node
}

func NewLinkDialog(t *doc.Tree, tr *doc.Tracker, h *doc.History, log *zap.Logger) *LinkDialog {
	if log == nil {
		log = zap.NewNop()
	}
	return &LinkDialog{tree: t, tracker: tr, history: h, log: log}
}

func (d *LinkDialog) IsOpen() bool { return d.open }

func (d *LinkDialog) Mode() LinkMode { return d.mode }

// Open starts a dialog session for sel. The text field is filled from the
// selected text. Inside a link both fields come from the whole link, so a
// selection covering part of it edits the link rather than truncating it.
func (d *LinkDialog) Open(sel doc.Selection) {
	d.reset()
	d.open = true
	d.snap, d.hasSnap = d.tracker.Snapshot(sel)
	if !d.hasSnap {
		return
	}
	r := d.tree.Normalize(sel.Range)
	d.selected = !r.IsCollapsed()
	d.Text = strings.TrimSpace(d.tree.TextIn(r))

	if a := EnclosingLink(d.tree, r.Start.Node); a != nil {
		d.link = a
		d.mode = LinkUpdate
		d.URL, _ = doc.Attr(a, "href")
		d.Text = linkText(a)
	}
}

// Submit applies the dialog. On an invalid URL it returns ErrInvalidURL and
// the dialog stays open with both fields kept.
func (d *LinkDialog) Submit(sel *doc.Selection, rawURL, text string) (LinkOutcome, error) {
	if !d.open {
		return LinkNone, nil
	}
	d.URL, d.Text = rawURL, text
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return LinkNone, err
	}

	target := doc.Caret(d.tree.End())
	if d.hasSnap {
		d.tracker.Restore(&target, d.snap)
	}
	d.history.Record(d.tree, target)

	var outcome LinkOutcome
	switch {
	case d.mode == LinkUpdate && d.tree.Contains(d.link):
		d.applyAttrs(d.link, u)
		if text != "" && text != linkText(d.link) {
			for c := d.link.FirstChild; c != nil; c = d.link.FirstChild {
				d.link.RemoveChild(c)
			}
			d.link.AppendChild(doc.NewText(text))
		}
		*sel = doc.Caret(afterNode(d.link))
		outcome = LinkUpdated
	case d.selected && !target.IsCollapsed():
		snap, _ := d.tracker.Snapshot(target)
		d.tree.UnwrapMatching(target.Range, isLink)
		d.tracker.Restore(&target, snap)
		d.tree.WrapRange(target.Range, func() *html.Node {
			a := doc.NewElement(atom.A)
			d.applyAttrs(a, u)
			return a
		}, nil)
		d.tracker.Restore(&target, snap)
		*sel = target
		outcome = LinkInserted
	default:
		if text == "" {
			text = u
		}
		p := target.Range.Start
		if !target.IsCollapsed() {
			p = d.tree.DeleteRange(target.Range)
		}
		a := doc.NewElement(atom.A)
		d.applyAttrs(a, u)
		a.AppendChild(doc.NewText(text))
		*sel = doc.Caret(d.tree.InsertNode(p, a))
		outcome = LinkInserted
	}
	d.log.Debug("link submitted", zap.String("url", u), zap.Stringer("outcome", outcome))
	d.reset()
	return outcome, nil
}

// Remove unwraps the link being edited. It reports false outside update
// mode.
func (d *LinkDialog) Remove(sel *doc.Selection) (LinkOutcome, bool) {
	if !d.open || d.mode != LinkUpdate || !d.tree.Contains(d.link) {
		return LinkNone, false
	}
	d.history.Record(d.tree, *sel)
	snap, ok := d.tracker.Snapshot(*sel)
	d.tree.UnwrapNode(d.link)
	if ok {
		d.tracker.Restore(sel, snap)
	}
	d.reset()
	return LinkRemoved, true
}

// Cancel discards the dialog without touching the document.
func (d *LinkDialog) Cancel() LinkOutcome {
	if !d.open {
		return LinkNone
	}
	d.reset()
	return LinkCancelled
}

func (d *LinkDialog) reset() {
	*d = LinkDialog{tree: d.tree, tracker: d.tracker, history: d.history, log: d.log}
}

func (d *LinkDialog) applyAttrs(a *html.Node, href string) {
	doc.SetAttr(a, "href", href)
	doc.SetAttr(a, "target", LinkTarget)
	doc.SetAttr(a, "rel", LinkRel)
	doc.SetStyle(a, "color", LinkColor)
	d.tree.SetStyle(a, "text-decoration", "underline")
}

// EnclosingLink returns the nearest link around n, or nil.
func EnclosingLink(t *doc.Tree, n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	return doc.Closest(n, t.Root(), isLink)
}

func isLink(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.A
}

func linkText(a *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(a)
	return sb.String()
}

// afterNode returns the position right after n in its parent.
func afterNode(n *html.Node) doc.Point {
	i := 1
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return doc.Point{Node: n.Parent, Offset: i}
}
