package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/iw2rmb/inkwell/engine"
)

// S3Config configures an S3Uploader.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	// Prefix is prepended to object keys, e.g. "posts/images/".
	Prefix string
	// PublicURL is the base of returned URLs. It defaults to the
	// path-style bucket URL on Endpoint.
	PublicURL string
	// NewID generates object names (default uuid).
	NewID  func() string
	Logger *zap.Logger
}

// S3Uploader stores images in an S3-compatible bucket.
type S3Uploader struct {
	client *minio.Client
	cfg    S3Config
	log    *zap.Logger
}

var _ engine.Uploader = (*S3Uploader)(nil)

func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("upload: s3 bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("upload: s3 client: %w", err)
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Uploader{client: client, cfg: cfg, log: log}, nil
}

// Upload puts f under a fresh key and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, f engine.File) (string, error) {
	ct := f.Type
	if ct == "" {
		ct = http.DetectContentType(f.Data)
	}
	key := u.cfg.Prefix + u.cfg.NewID() + extension(ct, f.Name)
	info, err := u.client.PutObject(ctx, u.cfg.Bucket, key, bytes.NewReader(f.Data), int64(len(f.Data)),
		minio.PutObjectOptions{ContentType: ct})
	if err != nil {
		u.log.Warn("s3 put failed", zap.String("bucket", u.cfg.Bucket), zap.String("key", key), zap.Error(err))
		return "", err
	}
	u.log.Debug("s3 put", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return u.objectURL(key)
}

func (u *S3Uploader) objectURL(key string) (string, error) {
	if u.cfg.PublicURL != "" {
		return strings.TrimRight(u.cfg.PublicURL, "/") + "/" + key, nil
	}
	base := u.client.EndpointURL()
	return url.JoinPath(base.String(), u.cfg.Bucket, key)
}

var extByType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

func extension(contentType, name string) string {
	if ext, ok := extByType[contentType]; ok {
		return ext
	}
	return strings.ToLower(path.Ext(name))
}
