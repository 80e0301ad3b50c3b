package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/inkwell"
	"github.com/iw2rmb/inkwell/editor"
	"github.com/iw2rmb/inkwell/engine"
	"github.com/iw2rmb/inkwell/internal/config"
	"github.com/iw2rmb/inkwell/internal/logging"
	"github.com/iw2rmb/inkwell/upload"
)

const sample = `<h2>Dear diary</h2>` +
	`<p>Write your post here. Select text and press <b>ctrl+b</b> for bold, ` +
	`<i>alt+i</i> for italic, or use the toolbar.</p>` +
	`<ul><li>ctrl+k inserts a link</li><li>ctrl+o inserts an image</li></ul>` +
	`<p>ctrl+q quits.</p>`

type model struct {
	editor editor.Model
}

func (m model) Init() tea.Cmd { return m.editor.Init() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.editor = m.editor.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+q" {
			m.editor = m.editor.Blur()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m model) View() string { return m.editor.View() }

func main() {
	var (
		configPath = flag.String("config", os.Getenv("INKWELL_CONFIG"), "YAML config file")
		inPath     = flag.String("in", "", "HTML file to edit")
		outPath    = flag.String("out", "", "write the HTML here on exit")
		markdown   = flag.Bool("markdown", false, "print Markdown on exit")
		version    = flag.Bool("version", false, "print version")
	)
	flag.Parse()

	if *version {
		fmt.Println(inkwell.VersionTag())
		return
	}
	if err := run(*configPath, *inPath, *outPath, *markdown); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(configPath, inPath, outPath string, markdown bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Environment, cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	value := sample
	if inPath != "" {
		b, err := os.ReadFile(inPath)
		if err != nil {
			return err
		}
		value = string(b)
	}

	uploader, err := newUploader(cfg, log)
	if err != nil {
		return err
	}
	var loader engine.ImageLoader
	if cfg.Editor.VerifyRemote {
		l, err := upload.NewHTTPLoader(upload.LoaderConfig{
			BaseURL:  cfg.Editor.ImageBaseURL,
			MaxBytes: int64(cfg.Editor.MaxImageBytes),
			Logger:   log,
		})
		if err != nil {
			return err
		}
		loader = l
	}

	changes := 0
	ed, err := editor.New(editor.Config{
		Value: value,
		OnChange: func(markup string) {
			changes++
			log.Debug("document changed", zap.Int("bytes", len(markup)), zap.Int("changes", changes))
		},
		Uploader:      uploader,
		ImageLoader:   loader,
		Debounce:      cfg.Editor.Debounce,
		MaxImageBytes: cfg.Editor.MaxImageBytes,
		Logger:        log,
		Clipboard:     editor.SystemClipboard{},
		HideToolbar:   cfg.Editor.HideToolbar,
		CellWidthPx:   cfg.Editor.CellWidthPx,
		CellHeightPx:  cfg.Editor.CellHeightPx,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model{editor: ed}, tea.WithAltScreen(), tea.WithMouseAllMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(model)
	if !ok {
		return errors.New("unexpected final model")
	}
	log.Info("editor closed", zap.Int("changes", changes))

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(m.editor.Value()), 0o644); err != nil {
			return err
		}
	}
	if markdown {
		md, err := m.editor.Engine().Markdown()
		if err != nil {
			return err
		}
		fmt.Println(md)
	}
	return nil
}

func newUploader(cfg config.Config, log *zap.Logger) (engine.Uploader, error) {
	switch cfg.Upload.Mode {
	case "http":
		var header http.Header
		if cfg.Upload.Token != "" {
			header = http.Header{"Authorization": {"Bearer " + cfg.Upload.Token}}
		}
		return upload.NewHTTPUploader(upload.HTTPConfig{
			Endpoint: cfg.Upload.Endpoint,
			Header:   header,
			Logger:   log,
		}), nil
	case "s3":
		return upload.NewS3Uploader(upload.S3Config{
			Endpoint:  cfg.Upload.S3Endpoint,
			Bucket:    cfg.Upload.Bucket,
			AccessKey: cfg.Upload.AccessKey,
			SecretKey: cfg.Upload.SecretKey,
			Region:    cfg.Upload.Region,
			UseSSL:    cfg.Upload.UseSSL,
			Prefix:    cfg.Upload.Prefix,
			PublicURL: cfg.Upload.PublicURL,
			Logger:    log,
		})
	default:
		// Images are embedded as data URI previews.
		return nil, nil
	}
}
