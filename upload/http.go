package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/iw2rmb/inkwell/engine"
)

const (
	// DefaultField is the multipart form field carrying the image.
	DefaultField   = "file"
	defaultTimeout = 30 * time.Second
	// maxResponseBytes bounds the JSON reply read from the endpoint.
	maxResponseBytes = 64 << 10
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload: status %d", e.Code)
	}
	return fmt.Sprintf("upload: status %d: %s", e.Code, e.Body)
}

// HTTPConfig configures an HTTPUploader.
type HTTPConfig struct {
	Endpoint string
	// Field is the form field name (default "file").
	Field string
	// Header is added to every request, e.g. Authorization.
	Header http.Header
	Client *http.Client
	// Breaker defaults to DefaultBreakerConfig("upload").
	Breaker *BreakerConfig
	Logger  *zap.Logger
}

// HTTPUploader posts images to an HTTP endpoint.
type HTTPUploader struct {
	endpoint string
	field    string
	header   http.Header
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
	log      *zap.Logger
}

var _ engine.Uploader = (*HTTPUploader)(nil)

func NewHTTPUploader(cfg HTTPConfig) *HTTPUploader {
	u := &HTTPUploader{
		endpoint: cfg.Endpoint,
		field:    cfg.Field,
		header:   cfg.Header,
		client:   cfg.Client,
		log:      cfg.Logger,
	}
	if u.field == "" {
		u.field = DefaultField
	}
	if u.client == nil {
		u.client = &http.Client{Timeout: defaultTimeout}
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	bc := DefaultBreakerConfig("upload")
	if cfg.Breaker != nil {
		bc = *cfg.Breaker
	}
	u.cb = newBreaker(bc, u.log)
	return u
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload posts f and returns the URL from the response body.
func (u *HTTPUploader) Upload(ctx context.Context, f engine.File) (string, error) {
	body, contentType, err := u.encode(f)
	if err != nil {
		return "", err
	}
	res, err := u.cb.Execute(func() (any, error) {
		return u.post(ctx, body, contentType)
	})
	if err != nil {
		u.log.Warn("image upload failed", zap.String("file", f.Name), zap.Error(err))
		return "", err
	}
	url := res.(string)
	u.log.Debug("image uploaded", zap.String("file", f.Name), zap.String("url", url))
	return url, nil
}

func (u *HTTPUploader) encode(f engine.File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(u.field), quoteEscaper.Replace(f.Name)))
	ct := f.Type
	if ct == "" {
		ct = http.DetectContentType(f.Data)
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (u *HTTPUploader) post(ctx context.Context, body []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	for k, vs := range u.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	var out uploadResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("upload: decode response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload: response without url")
	}
	return out.URL, nil
}
