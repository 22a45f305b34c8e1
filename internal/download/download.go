// Package download streams remote resources to local files with progress reporting.
package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"digispark-uploader/internal/logger"
	"digispark-uploader/internal/progress"

	"go.bug.st/downloader/v2"
)

// ErrDownload classifies every network or stream failure.
var ErrDownload = errors.New("download failed")

// Error describes a failed download of URL.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDownload, e.URL, e.Err)
}

// Unwrap exposes both the ErrDownload class and the underlying cause.
func (e *Error) Unwrap() []error { return []error{ErrDownload, e.Err} }

// DefaultPollInterval is how often progress is sampled while streaming.
const DefaultPollInterval = 100 * time.Millisecond

// Downloader fetches URLs to disk one at a time.
type Downloader struct {
	client       http.Client
	progress     progress.Reporter
	pollInterval time.Duration
}

// New returns a Downloader. A zero timeout waits forever; a nil reporter
// discards progress.
func New(timeout time.Duration, p progress.Reporter) *Downloader {
	if p == nil {
		p = progress.Nop{}
	}
	return &Downloader{
		client:       http.Client{Timeout: timeout},
		progress:     p,
		pollInterval: DefaultPollInterval,
	}
}

// Fetch streams url into dest, creating or overwriting it, and blocks until
// the transfer ends.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) error {
	logger.Debug("[DEBUG] Downloading %s to %s\n", url, dest)

	// The library resumes into an existing file; always start from scratch.
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return &Error{URL: url, Err: err}
	}

	dl, err := downloader.DownloadWithConfigAndContext(ctx, dest, url, downloader.Config{HttpClient: d.client})
	if err != nil {
		return &Error{URL: url, Err: err}
	}
	if code := dl.Resp.StatusCode; code < 200 || code > 299 {
		_ = dl.Close()
		_ = os.Remove(dest)
		return &Error{URL: url, Err: fmt.Errorf("HTTP status %d", code)}
	}

	total := dl.Size()
	d.progress.Start(total, filepath.Base(dest))
	err = dl.RunAndPoll(d.progress.Update, d.pollInterval)
	d.progress.Finish()
	if err != nil {
		return &Error{URL: url, Err: err}
	}
	if total >= 0 && dl.Completed() != total {
		return &Error{URL: url, Err: fmt.Errorf("stream ended after %d of %d bytes", dl.Completed(), total)}
	}

	logger.Info("[INFO] Downloaded to %s\n", dest)
	return nil
}
