// Package sketch fetches the example program bundle and lets the user pick a program.
package sketch

import (
	"context"
	"fmt"
	"os"

	"digispark-uploader/internal/archive"
	"digispark-uploader/internal/config"
	"digispark-uploader/internal/logger"
	"digispark-uploader/internal/progress"
)

// Fetcher downloads url to dest.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Bundle keeps the local sketch directory in sync with the remote archive.
type Bundle struct {
	cfg      config.Config
	fetcher  Fetcher
	progress progress.Reporter
}

// NewBundle wires a Bundle. A nil reporter discards extraction progress.
func NewBundle(cfg config.Config, fetcher Fetcher, p progress.Reporter) *Bundle {
	if p == nil {
		p = progress.Nop{}
	}
	return &Bundle{cfg: cfg, fetcher: fetcher, progress: p}
}

// Dir is the local sketch directory.
func (b *Bundle) Dir() string { return b.cfg.SketchDir() }

// Fetch replaces the sketch directory with a fresh copy of the bundle.
// Nothing is cached between runs.
func (b *Bundle) Fetch(ctx context.Context) error {
	dir := b.cfg.SketchDir()
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove sketch directory %s: %w", dir, err)
	}

	logger.Info("[INFO] Fetching sketches from %s...\n", b.cfg.Sketches.URL)
	zipPath := b.cfg.ArchivePath("sketches.zip")
	defer os.Remove(zipPath)

	if err := b.fetcher.Fetch(ctx, b.cfg.Sketches.URL, zipPath); err != nil {
		return err
	}
	if _, err := archive.Extract(zipPath, dir, b.progress); err != nil {
		return err
	}
	return nil
}
