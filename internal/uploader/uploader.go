// Package uploader compiles a sketch and flashes it to the board, and chains
// the whole run from toolchain check to upload.
package uploader

import (
	"context"
	"fmt"
	"time"

	"digispark-uploader/internal/config"
	"digispark-uploader/internal/logger"
	"digispark-uploader/internal/toolchain"
)

// CompileError is returned when the toolchain cannot build the sketch.
type CompileError struct {
	Sketch string
	Err    error
}

func (e *CompileError) Error() string { return fmt.Sprintf("compile %s: %v", e.Sketch, e.Err) }
func (e *CompileError) Unwrap() error { return e.Err }

// UploadError is returned when the board could not be flashed.
type UploadError struct {
	Sketch string
	Err    error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload %s: %v", e.Sketch, e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// Uploader drives compile and upload for one board.
type Uploader struct {
	runner    toolchain.Runner
	board     string
	plugDelay time.Duration
}

// New returns an Uploader for the configured board.
func New(cfg config.Config, runner toolchain.Runner) *Uploader {
	return &Uploader{runner: runner, board: cfg.Board, plugDelay: cfg.Upload.PlugDelay}
}

// Run compiles sketch with exe and, only if that worked, uploads it.
func (u *Uploader) Run(ctx context.Context, exe, sketch string) error {
	if _, err := u.runner.Run(ctx, exe, "compile", "-b", u.board, sketch); err != nil {
		return &CompileError{Sketch: sketch, Err: err}
	}
	logger.Info("[INFO] Compilation successful.\n")

	logger.Warn("[WARN] Please plug in Digispark now...\n")
	if err := sleep(ctx, u.plugDelay); err != nil {
		return err
	}

	if _, err := u.runner.Run(ctx, exe, "upload", "-b", u.board, sketch); err != nil {
		return &UploadError{Sketch: sketch, Err: err}
	}
	logger.Info("[INFO] Upload complete.\n")
	return nil
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
