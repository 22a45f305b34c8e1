package uploader

import (
	"context"
	"fmt"
	"io"

	"digispark-uploader/internal/logger"
	"digispark-uploader/internal/sketch"
)

// Verifier yields a usable toolchain executable.
type Verifier interface {
	Verify(ctx context.Context) (string, error)
}

// SketchSource refreshes the local sketch directory.
type SketchSource interface {
	Fetch(ctx context.Context) error
	Dir() string
}

// Pipeline is one end-to-end run: toolchain, sketches, choice, compile, upload.
// Every step aborts the run on error.
type Pipeline struct {
	Toolchain Verifier
	Sketches  SketchSource
	Uploader  *Uploader
	Extension string

	In  io.Reader
	Out io.Writer

	// Select, when set, picks that sketch number without prompting.
	// Numbers below 1 fail before the toolchain is touched.
	Select *int
	// Sketch, when set, is uploaded directly; fetching and the menu are skipped.
	Sketch string
}

// Run executes the pipeline.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.Select != nil && *p.Select < 1 {
		return fmt.Errorf("%w: %d is not a sketch number", sketch.ErrInvalidSelection, *p.Select)
	}

	exe, err := p.Toolchain.Verify(ctx)
	if err != nil {
		return err
	}
	logger.Debug("[DEBUG] Using toolchain %s\n", exe)

	chosen := p.Sketch
	if chosen == "" {
		if chosen, err = p.choose(ctx); err != nil {
			return err
		}
	}
	logger.Info("[INFO] Selected %s\n", chosen)

	return p.Uploader.Run(ctx, exe, chosen)
}

// choose refreshes the bundle and resolves the sketch from Select or the prompt.
func (p *Pipeline) choose(ctx context.Context) (string, error) {
	if err := p.Sketches.Fetch(ctx); err != nil {
		return "", err
	}
	sketches, err := sketch.List(p.Sketches.Dir(), p.Extension)
	if err != nil {
		return "", err
	}
	if p.Select != nil {
		return sketch.Pick(sketches, *p.Select)
	}
	return sketch.Choose(p.In, p.Out, sketches)
}
