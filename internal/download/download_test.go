package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"digispark-uploader/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func servePayload(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "bundle.zip", time.Time{}, bytes.NewReader(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	payload := bytes.Repeat([]byte("digispark"), 10000)
	srv := servePayload(t, payload)
	dest := filepath.Join(t.TempDir(), "bundle.zip")

	rec := &progress.Recorder{}
	d := New(0, rec)
	require.NoError(t, d.Fetch(context.Background(), srv.URL+"/bundle.zip", dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	assert.Equal(t, []string{"bundle.zip"}, rec.Labels)
	assert.Equal(t, []int64{int64(len(payload))}, rec.Totals)
	assert.Equal(t, int64(len(payload)), rec.Last())
	assert.Equal(t, 1, rec.Finished)
}

func TestFetchOverwritesExistingFile(t *testing.T) {
	srv := servePayload(t, []byte("new"))
	dest := filepath.Join(t.TempDir(), "bundle.zip")
	require.NoError(t, os.WriteFile(dest, []byte("a much longer stale file"), 0644))

	require.NoError(t, New(0, nil).Fetch(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	dest := filepath.Join(t.TempDir(), "bundle.zip")

	err := New(0, nil).Fetch(context.Background(), srv.URL, dest)
	require.ErrorIs(t, err, ErrDownload)

	var dlErr *Error
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, srv.URL, dlErr.URL)
	assert.NoFileExists(t, dest)
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(0, nil).Fetch(context.Background(), url, filepath.Join(t.TempDir(), "x.zip"))
	require.ErrorIs(t, err, ErrDownload)
}

func TestFetchInvalidURL(t *testing.T) {
	err := New(0, nil).Fetch(context.Background(), "asd://example.test/x.zip", filepath.Join(t.TempDir(), "x.zip"))
	require.ErrorIs(t, err, ErrDownload)
}

func TestFetchTruncatedStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("only a few bytes"))
	}))
	defer srv.Close()

	err := New(0, nil).Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x.zip"))
	require.ErrorIs(t, err, ErrDownload)
}

func TestFetchCancelled(t *testing.T) {
	srv := servePayload(t, []byte("payload"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(0, nil).Fetch(ctx, srv.URL, filepath.Join(t.TempDir(), "x.zip"))
	require.ErrorIs(t, err, ErrDownload)
}
