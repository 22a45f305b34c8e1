// Package progress reports the advance of long synchronous loops (downloads,
// archive extraction) to the console.
package progress

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives progress for one operation at a time.
// A total of -1 means the size is unknown.
type Reporter interface {
	Start(total int64, label string)
	Update(current int64)
	Finish()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(int64, string) {}
func (Nop) Update(int64)        {}
func (Nop) Finish()             {}

// Unit selects how a Bar renders its counter.
type Unit int

const (
	Bytes Unit = iota
	Items
)

// Bar draws a terminal progress bar on w.
type Bar struct {
	w    io.Writer
	unit Unit
	bar  *progressbar.ProgressBar
}

// NewBar returns a Reporter rendering to w, counting bytes or items.
func NewBar(w io.Writer, unit Unit) *Bar {
	return &Bar{w: w, unit: unit}
}

// Start creates a fresh bar for total units. A negative total shows a spinner.
func (b *Bar) Start(total int64, label string) {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(30),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(b.w) }),
	}
	switch b.unit {
	case Bytes:
		opts = append(opts, progressbar.OptionShowBytes(true))
	case Items:
		opts = append(opts, progressbar.OptionShowCount())
	}
	b.bar = progressbar.NewOptions64(total, opts...)
}

// Update moves the bar to current.
func (b *Bar) Update(current int64) {
	if b.bar != nil {
		_ = b.bar.Set64(current)
	}
}

// Finish completes the bar and ends its line.
func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}
