package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/inkwell/engine"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "none", cfg.Upload.Mode)
	assert.Equal(t, 100*time.Millisecond, cfg.Editor.Debounce)
	assert.Equal(t, engine.DefaultMaxImageBytes, cfg.Editor.MaxImageBytes)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
environment: production
log:
  path: /tmp/inkwell.log
  level: debug
editor:
  debounce: 250ms
  max_image_bytes: 1048576
  hide_toolbar: true
upload:
  mode: s3
  s3_endpoint: localhost:9000
  bucket: blog
  public_url: https://cdn.example
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "/tmp/inkwell.log", cfg.Log.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Editor.Debounce)
	assert.Equal(t, 1<<20, cfg.Editor.MaxImageBytes)
	assert.True(t, cfg.Editor.HideToolbar)
	assert.Equal(t, "blog", cfg.Upload.Bucket)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "us-east-1", cfg.Upload.Region)
	assert.Equal(t, "images/", cfg.Upload.Prefix)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "upload:\n  mode: none\n")
	t.Setenv("INKWELL_UPLOAD_MODE", "http")
	t.Setenv("INKWELL_UPLOAD_ENDPOINT", "https://api.example/upload")
	t.Setenv("INKWELL_DEBOUNCE", "50ms")
	t.Setenv("INKWELL_MAX_IMAGE_BYTES", "not-a-number")
	t.Setenv("INKWELL_S3_USE_SSL", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Upload.Mode)
	assert.Equal(t, "https://api.example/upload", cfg.Upload.Endpoint)
	assert.Equal(t, 50*time.Millisecond, cfg.Editor.Debounce)
	assert.Equal(t, engine.DefaultMaxImageBytes, cfg.Editor.MaxImageBytes)
	assert.True(t, cfg.Upload.UseSSL)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "editor:\n  colour: red\n", "field colour not found"},
		{"bad mode", "upload:\n  mode: ftp\n", "upload.mode must be one of: none http s3"},
		{"http without endpoint", "upload:\n  mode: http\n", "upload.endpoint is required when mode is http"},
		{"bad endpoint", "upload:\n  mode: http\n  endpoint: not a url\n", "upload.endpoint must be a valid url"},
		{"s3 without bucket", "upload:\n  mode: s3\n  s3_endpoint: localhost:9000\n", "upload.bucket is required when mode is s3"},
		{"negative debounce", "editor:\n  debounce: -1s\n", "editor.debounce must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
