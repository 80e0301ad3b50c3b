package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/iw2rmb/inkwell/engine"
)

// LoaderConfig configures an HTTPLoader.
type LoaderConfig struct {
	// BaseURL resolves relative image sources.
	BaseURL string
	// MaxBytes caps a fetched image (default engine.DefaultMaxImageBytes).
	MaxBytes int64
	Client   *http.Client
	Breaker  *BreakerConfig
	Logger   *zap.Logger
}

// HTTPLoader fetches remote image sources so the engine can check they
// still decode.
type HTTPLoader struct {
	base     *url.URL
	maxBytes int64
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
}

var _ engine.ImageLoader = (*HTTPLoader)(nil)

func NewHTTPLoader(cfg LoaderConfig) (*HTTPLoader, error) {
	l := &HTTPLoader{maxBytes: cfg.MaxBytes, client: cfg.Client}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("upload: base url: %w", err)
		}
		l.base = base
	}
	if l.maxBytes <= 0 {
		l.maxBytes = engine.DefaultMaxImageBytes
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: defaultTimeout}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	bc := DefaultBreakerConfig("images")
	if cfg.Breaker != nil {
		bc = *cfg.Breaker
	}
	l.cb = newBreaker(bc, log)
	return l, nil
}

func (l *HTTPLoader) Load(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, err
	}
	if l.base != nil {
		u = l.base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upload: unsupported image source %q", src)
	}
	res, err := l.cb.Execute(func() (any, error) {
		return l.get(ctx, u.String())
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

func (l *HTTPLoader) get(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("upload: %s: %w", src, engine.ErrFileTooLarge)
	}
	return data, nil
}
