package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/inkwell/engine"
)

func TestHTTPLoader_ResolvesRelativeSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/cat.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	l, err := NewHTTPLoader(LoaderConfig{BaseURL: srv.URL + "/posts/1"})
	require.NoError(t, err)

	data, err := l.Load(context.Background(), "/media/cat.png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = l.Load(context.Background(), "/media/dog.png")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestHTTPLoader_Limits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	l, err := NewHTTPLoader(LoaderConfig{MaxBytes: 32})
	require.NoError(t, err)

	_, err = l.Load(context.Background(), srv.URL+"/big.png")
	assert.ErrorIs(t, err, engine.ErrFileTooLarge)

	_, err = l.Load(context.Background(), "ftp://example.com/a.png")
	assert.ErrorContains(t, err, "unsupported image source")
}
