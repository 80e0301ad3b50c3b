package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/iw2rmb/inkwell/doc"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type stubUploader struct {
	url   string
	err   error
	calls int
}

func (u *stubUploader) Upload(_ context.Context, _ File) (string, error) {
	u.calls++
	return u.url, u.err
}

type stubLoader map[string][]byte

func (l stubLoader) Load(_ context.Context, src string) ([]byte, error) {
	b, ok := l[src]
	if !ok {
		return nil, errors.New("404")
	}
	return b, nil
}

func fixedID() string { return "img-1" }

func TestInsertImage_RejectsOversizedJPEG(t *testing.T) {
	up := &stubUploader{url: "https://cdn.example/x.jpg"}
	e := newEngine(t, "<p>ab</p>", Config{Uploader: up})
	e.SelectOffsets(1, 1)

	data := make([]byte, 6<<20)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	_, err := e.InsertImage(context.Background(), File{Name: "big.jpg", Type: "image/jpeg", Data: data})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err=%v, want ErrFileTooLarge", err)
	}
	if up.calls != 0 {
		t.Fatalf("uploader called %d times for a rejected file", up.calls)
	}
	if got, want := e.Value(), "<p>ab</p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
}

func TestInsertImage_RejectsTextFile(t *testing.T) {
	e := newEngine(t, "<p>ab</p>", Config{})
	e.SelectOffsets(1, 1)
	_, err := e.InsertImage(context.Background(), File{Name: "notes.txt", Data: []byte("just some notes\n")})
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("err=%v, want ErrInvalidFileType", err)
	}
	if got, want := e.Value(), "<p>ab</p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
}

func TestDetectMIME(t *testing.T) {
	data := pngBytes(t, 1, 1)
	cases := []struct {
		f    File
		want string
	}{
		{f: File{Name: "a.png", Data: data}, want: "image/png"},
		{f: File{Name: "a.bin", Type: "image/webp; q=1", Data: []byte{1}}, want: "image/webp"},
		{f: File{Name: "notes.txt", Data: []byte("hello")}, want: "text/plain"},
		{f: File{Name: "photo.gif", Data: []byte{0, 1, 2}}, want: "image/gif"},
	}
	for _, tc := range cases {
		if got := DetectMIME(tc.f); got != tc.want {
			t.Fatalf("DetectMIME(%s)=%q, want %q", tc.f.Name, got, tc.want)
		}
	}
}

func TestInsertImage_PreviewAtCaret(t *testing.T) {
	e := newEngine(t, "<p>ab</p>", Config{NewID: fixedID})
	e.SelectOffsets(1, 1)

	data := pngBytes(t, 3, 2)
	img, err := e.InsertImage(context.Background(), File{Name: "pic.png", Data: data})
	if err != nil {
		t.Fatalf("InsertImage: %v", err)
	}
	if img == nil {
		t.Fatalf("no image node returned")
	}
	want := `<p>a<img src="` + DataURI("image/png", data) +
		`" alt="pic.png" data-image-id="img-1" width="3" height="2" style="max-width: 100%; height: auto;"/><br/>b</p>`
	if got := e.Value(); got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
	if start, end, _ := e.Offsets(); start != 3 || end != 3 {
		t.Fatalf("caret=(%d,%d), want after the line break at 3", start, end)
	}
	if broken := e.VerifyImages(context.Background()); len(broken) != 0 {
		t.Fatalf("preview reported broken: %v", broken[0])
	}
}

func TestInsertImage_UploadedReplacesSelection(t *testing.T) {
	up := &stubUploader{url: "https://cdn.example/i.png"}
	e := newEngine(t, "<p>abc</p>", Config{Uploader: up, NewID: fixedID})
	e.SelectOffsets(1, 2)

	if _, err := e.InsertImage(context.Background(), File{Name: "i.png", Data: pngBytes(t, 4, 4)}); err != nil {
		t.Fatalf("InsertImage: %v", err)
	}
	want := `<p>a<img src="https://cdn.example/i.png" alt="i.png" data-image-id="img-1" width="4" height="4" style="max-width: 100%; height: auto;"/><br/>c</p>`
	if got := e.Value(); got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
}

func TestInsertImage_UploadFailureLeavesNothing(t *testing.T) {
	up := &stubUploader{err: errors.New("connection reset")}
	e := newEngine(t, "<p>abc</p>", Config{Uploader: up})
	e.SelectOffsets(1, 2)

	_, err := e.InsertImage(context.Background(), File{Name: "i.png", Data: pngBytes(t, 1, 1)})
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("err=%v, want ErrUpload", err)
	}
	if got, want := e.Value(), "<p>abc</p>"; got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
	if start, end, _ := e.Offsets(); start != 1 || end != 2 {
		t.Fatalf("selection=(%d,%d), want (1,2)", start, end)
	}
}

func TestInsertImage_AppendsWithoutSelection(t *testing.T) {
	up := &stubUploader{url: "https://cdn.example/i.png"}
	e := newEngine(t, "<p>ab</p>", Config{Uploader: up, NewID: fixedID})

	if _, err := e.InsertImage(context.Background(), File{Name: "i.png", Type: "image/png", Data: []byte("not decoded")}); err != nil {
		t.Fatalf("InsertImage: %v", err)
	}
	want := `<p>ab<img src="https://cdn.example/i.png" alt="i.png" data-image-id="img-1" style="max-width: 100%; height: auto;"/><br/></p>`
	if got := e.Value(); got != want {
		t.Fatalf("value=%q, want %q", got, want)
	}
}

func TestPrepareComplete_KeepsCapturedPoint(t *testing.T) {
	e := newEngine(t, "<p>ab</p><p>cd</p>", Config{NewID: fixedID})
	e.SelectOffsets(1, 1)
	p, err := e.PrepareImage(File{Name: "i.png", Data: pngBytes(t, 1, 1)})
	if err != nil {
		t.Fatalf("PrepareImage: %v", err)
	}
	src, err := e.UploadImage(context.Background(), p)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}

	// The user keeps typing elsewhere while the upload is in flight.
	e.SelectOffsets(5, 5)
	e.Execute(CmdInsertText, "!")

	e.CompleteImage(p, src)
	imgs := e.Tree().Images()
	if len(imgs) != 1 {
		t.Fatalf("images=%d, want 1", len(imgs))
	}
	if got, want := e.Tree().Text(), "a\ufffc\nb\ncd!"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestDrop_InsertsValidFilesAndJoinsErrors(t *testing.T) {
	e := newEngine(t, "<p></p>", Config{})
	e.Focus()
	imgs, err := e.Drop(context.Background(), []File{
		{Name: "a.png", Data: pngBytes(t, 1, 1)},
		{Name: "b.txt", Data: []byte("text")},
		{Name: "c.png", Data: pngBytes(t, 2, 2)},
	})
	if len(imgs) != 2 {
		t.Fatalf("inserted=%d, want 2", len(imgs))
	}
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("err=%v, want ErrInvalidFileType", err)
	}
	if got, want := e.Tree().Text(), "\ufffc\n\ufffc\n"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestVerify_ReportsBrokenImagesAndKeepsThem(t *testing.T) {
	good := pngBytes(t, 2, 2)
	tree, err := doc.New(`<p><img src="data:image/png;base64,AAAA" data-image-id="bad"/>` +
		`<img src="https://cdn.example/ok.png" data-image-id="ok"/>` +
		`<img src="https://cdn.example/gone.png" data-image-id="gone"/></p>`)
	if err != nil {
		t.Fatalf("doc.New: %v", err)
	}
	im := NewImages(tree, doc.NewTracker(tree, nil), doc.NewHistory(0), ImagesConfig{
		Loader: stubLoader{"https://cdn.example/ok.png": good},
	})

	broken := im.Verify(context.Background())
	if len(broken) != 2 {
		t.Fatalf("broken=%d, want 2", len(broken))
	}
	if broken[0].ID != "bad" || broken[1].ID != "gone" {
		t.Fatalf("broken ids=%q,%q, want bad,gone", broken[0].ID, broken[1].ID)
	}
	var be *BrokenImageError
	if !errors.As(error(broken[1]), &be) || be.Src != "https://cdn.example/gone.png" {
		t.Fatalf("errors.As failed for %v", broken[1])
	}
	if n := len(tree.Images()); n != 3 {
		t.Fatalf("images=%d after verify, want 3", n)
	}
}
