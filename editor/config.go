package editor

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/iw2rmb/inkwell/engine"
)

// Default pixel size of one terminal cell, used to turn resize drags into
// image sizes.
const (
	DefaultCellWidthPx  = 8
	DefaultCellHeightPx = 16
)

// Config configures the editor Model.
type Config struct {
	// Initial document markup.
	Value string

	// OnChange receives the serialized document after debounced edits and
	// on blur.
	OnChange func(markup string)

	// Forwarded to engine.Config.
	Uploader      engine.Uploader
	ImageLoader   engine.ImageLoader
	Debounce      time.Duration
	MaxImageBytes int
	HistoryLimit  int
	Logger        *zap.Logger

	KeyMap    KeyMap
	Clipboard Clipboard

	// Style defaults to DefaultStyle when nil.
	Style *Style

	HideToolbar bool

	CellWidthPx  int
	CellHeightPx int

	// ReadFile loads images picked by path (default os.ReadFile).
	ReadFile func(path string) ([]byte, error)

	// Now supplies the clock (default time.Now).
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.KeyMap.Bold.Keys() == nil {
		c.KeyMap = DefaultKeyMap()
	}
	if c.Style == nil {
		st := DefaultStyle()
		c.Style = &st
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.CellWidthPx <= 0 {
		c.CellWidthPx = DefaultCellWidthPx
	}
	if c.CellHeightPx <= 0 {
		c.CellHeightPx = DefaultCellHeightPx
	}
	if c.ReadFile == nil {
		c.ReadFile = os.ReadFile
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

func (c Config) engineConfig() engine.Config {
	return engine.Config{
		Value:         c.Value,
		OnChange:      c.OnChange,
		Uploader:      c.Uploader,
		ImageLoader:   c.ImageLoader,
		Logger:        c.Logger,
		Debounce:      c.Debounce,
		MaxImageBytes: c.MaxImageBytes,
		HistoryLimit:  c.HistoryLimit,
		Now:           c.Now,
	}
}
