package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/inkwell/doc"
)

// DefaultMaxImageBytes caps uploaded image size.
const DefaultMaxImageBytes = 5 << 20

// File is an image candidate picked or dropped by the user.
type File struct {
	Name string
	// Type is the declared MIME type. It is sniffed from Data when empty.
	Type string
	Data []byte
}

func (f File) Size() int { return len(f.Data) }

// Uploader stores an image and returns the URL to embed.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// ImageLoader fetches an embedded image source for verification.
type ImageLoader interface {
	Load(ctx context.Context, src string) ([]byte, error)
}

// PendingImage is a validated file waiting for its upload to finish. It
// remembers where it will be inserted.
type PendingImage struct {
	File   File
	MIME   string
	Width  int
	Height int

	snap    doc.Snapshot
	hasSnap bool
}

// Images inserts and checks embedded images.
type Images struct {
	tree     *doc.Tree
	tracker  *doc.Tracker
	history  *doc.History
	uploader Uploader
	loader   ImageLoader
	maxBytes int
	newID    func() string
	log      *zap.Logger
}

type ImagesConfig struct {
	Uploader Uploader
	Loader   ImageLoader
	MaxBytes int
	NewID    func() string
	Logger   *zap.Logger
}

func NewImages(t *doc.Tree, tr *doc.Tracker, h *doc.History, cfg ImagesConfig) *Images {
	im := &Images{
		tree:     t,
		tracker:  tr,
		history:  h,
		uploader: cfg.Uploader,
		loader:   cfg.Loader,
		maxBytes: cfg.MaxBytes,
		newID:    cfg.NewID,
		log:      cfg.Logger,
	}
	if im.maxBytes <= 0 {
		im.maxBytes = DefaultMaxImageBytes
	}
	if im.newID == nil {
		im.newID = uuid.NewString
	}
	if im.log == nil {
		im.log = zap.NewNop()
	}
	return im
}

// DetectMIME returns the MIME type of f, preferring the declared type, then
// the content, then the file extension.
func DetectMIME(f File) string {
	if f.Type != "" {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(f.Type, ";", 2)[0]))
	}
	if n := min(512, len(f.Data)); n > 0 {
		if detected := http.DetectContentType(f.Data[:n]); detected != "application/octet-stream" {
			return strings.SplitN(detected, ";", 2)[0]
		}
	}
	if t := mime.TypeByExtension(filepath.Ext(f.Name)); t != "" {
		return strings.SplitN(t, ";", 2)[0]
	}
	return "application/octet-stream"
}

// Validate checks that f is an image within the size limit.
func (im *Images) Validate(f File) (string, error) {
	typ := DetectMIME(f)
	if !strings.HasPrefix(typ, "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrInvalidFileType, f.Name, typ)
	}
	if f.Size() > im.maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, f.Name, f.Size(), im.maxBytes)
	}
	return typ, nil
}

// Prepare validates f and captures the insertion point from sel.
func (im *Images) Prepare(sel doc.Selection, f File) (*PendingImage, error) {
	typ, err := im.Validate(f)
	if err != nil {
		return nil, err
	}
	p := &PendingImage{File: f, MIME: typ}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data)); err == nil {
		p.Width, p.Height = cfg.Width, cfg.Height
	}
	p.snap, p.hasSnap = im.tracker.Snapshot(sel)
	return p, nil
}

// Upload stores the file through the uploader and returns the source URL.
// Without an uploader it returns a data URI preview. Upload does not touch
// the document and may run off the editing loop.
func (im *Images) Upload(ctx context.Context, p *PendingImage) (string, error) {
	if im.uploader == nil {
		return DataURI(p.MIME, p.File.Data), nil
	}
	u, err := im.uploader.Upload(ctx, p.File)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUpload, p.File.Name, err)
	}
	if u == "" {
		return "", fmt.Errorf("%w: %s: empty url", ErrUpload, p.File.Name)
	}
	return u, nil
}

// Complete inserts the image at the captured point, replacing selected
// content, followed by a line break. The caret lands after the break.
// Without a captured point the image is appended to the document.
func (im *Images) Complete(sel *doc.Selection, p *PendingImage, src string) *html.Node {
	target := doc.Caret(im.tree.End())
	if p.hasSnap {
		im.tracker.Restore(&target, p.snap)
	}
	im.history.Record(im.tree, target)

	at := target.Range.Start
	if !target.IsCollapsed() {
		at = im.tree.DeleteRange(target.Range)
	}
	img := im.newImage(p, src)
	after := im.tree.InsertNode(at, img)
	after = im.tree.InsertLineBreak(after)
	*sel = doc.Caret(after)

	id, _ := doc.Attr(img, doc.ImageIDAttr)
	im.log.Debug("image inserted", zap.String("id", id), zap.String("name", p.File.Name))
	return img
}

func (im *Images) newImage(p *PendingImage, src string) *html.Node {
	img := doc.NewElement(atom.Img,
		html.Attribute{Key: "src", Val: src},
		html.Attribute{Key: "alt", Val: p.File.Name},
		html.Attribute{Key: doc.ImageIDAttr, Val: im.newID()},
	)
	if p.Width > 0 && p.Height > 0 {
		doc.SetAttr(img, "width", strconv.Itoa(p.Width))
		doc.SetAttr(img, "height", strconv.Itoa(p.Height))
	}
	doc.SetStyle(img, "max-width", "100%")
	doc.SetStyle(img, "height", "auto")
	return img
}

// InsertImage validates, uploads and inserts f in one step.
func (im *Images) InsertImage(ctx context.Context, sel *doc.Selection, f File) (*html.Node, error) {
	p, err := im.Prepare(*sel, f)
	if err != nil {
		return nil, err
	}
	src, err := im.Upload(ctx, p)
	if err != nil {
		return nil, err
	}
	return im.Complete(sel, p, src), nil
}

// Drop inserts each dropped file in order. Files failing validation or
// upload are skipped and their errors joined.
func (im *Images) Drop(ctx context.Context, sel *doc.Selection, files []File) ([]*html.Node, error) {
	var out []*html.Node
	var errs []error
	for _, f := range files {
		img, err := im.InsertImage(ctx, sel, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, img)
	}
	return out, errors.Join(errs...)
}

// ImageSource names one embedded image.
type ImageSource struct {
	ID  string
	Src string
}

// Sources lists the embedded images in document order.
func (im *Images) Sources() []ImageSource {
	imgs := im.tree.Images()
	out := make([]ImageSource, 0, len(imgs))
	for _, img := range imgs {
		src, _ := doc.Attr(img, "src")
		id, _ := doc.Attr(img, doc.ImageIDAttr)
		out = append(out, ImageSource{ID: id, Src: src})
	}
	return out
}

// Check decodes each source and reports the broken ones. It does not touch
// the document and may run off the editing loop.
func (im *Images) Check(ctx context.Context, srcs []ImageSource) []*BrokenImageError {
	var out []*BrokenImageError
	for _, s := range srcs {
		if err := im.check(ctx, s.Src); err != nil {
			im.log.Debug("broken image", zap.String("id", s.ID), zap.Error(err))
			out = append(out, &BrokenImageError{ID: s.ID, Src: s.Src, Err: err})
		}
	}
	return out
}

// Verify decodes every image source and reports the broken ones. Remote
// sources are checked only when a loader is configured.
func (im *Images) Verify(ctx context.Context) []*BrokenImageError {
	return im.Check(ctx, im.Sources())
}

func (im *Images) check(ctx context.Context, src string) error {
	var data []byte
	switch {
	case src == "":
		return errors.New("empty source")
	case strings.HasPrefix(src, "data:"):
		b, err := decodeDataURI(src)
		if err != nil {
			return err
		}
		data = b
	case im.loader == nil:
		return nil
	default:
		b, err := im.loader.Load(ctx, src)
		if err != nil {
			return err
		}
		data = b
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err
}

// DataURI encodes data as a base64 data URI.
func DataURI(typ string, data []byte) string {
	return "data:" + typ + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}
	return base64.StdEncoding.DecodeString(payload)
}

// ImageSize returns the displayed size of img in pixels, from its fixed
// style when set and its attributes otherwise.
func ImageSize(img *html.Node) (w, h int) {
	w = pixels(doc.Style(img, "width"))
	h = pixels(doc.Style(img, "height"))
	if w == 0 {
		v, _ := doc.Attr(img, "width")
		w = pixels(v)
	}
	if h == 0 {
		v, _ := doc.Attr(img, "height")
		h = pixels(v)
	}
	return w, h
}

func pixels(v string) int {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f + 0.5)
}
