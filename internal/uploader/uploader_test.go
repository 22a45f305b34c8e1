package uploader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"digispark-uploader/internal/config"
	"digispark-uploader/internal/logger"
	"digispark-uploader/internal/sketch"
	"digispark-uploader/internal/toolchain"
	"digispark-uploader/internal/toolchain/toolchaintest"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

const exe = "/opt/arduino-cli/arduino-cli"

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Upload.PlugDelay = 0
	return cfg
}

func TestRunCompilesThenUploads(t *testing.T) {
	runner := &toolchaintest.Runner{}
	sketchPath := "/work/sketches/My Sketch/My Sketch.ino"

	require.NoError(t, New(testConfig(), runner).Run(context.Background(), exe, sketchPath))

	require.Len(t, runner.Calls, 2)
	assert.Equal(t, []string{"compile", "-b", "digistump:avr:digispark-tiny", sketchPath}, runner.Calls[0].Args)
	assert.Equal(t, []string{"upload", "-b", "digistump:avr:digispark-tiny", sketchPath}, runner.Calls[1].Args)
	assert.Equal(t, exe, runner.Calls[1].Exe)
}

func TestRunAsksForTheBoardWithWarnPrefix(t *testing.T) {
	var log bytes.Buffer
	logger.SetOutput(&log)
	t.Cleanup(func() { logger.SetOutput(nil) })

	require.NoError(t, New(testConfig(), &toolchaintest.Runner{}).Run(context.Background(), exe, "/s/a.ino"))
	assert.Contains(t, log.String(), "[WARN] Please plug in Digispark now...\n")
}

func TestRunCompileFailureSkipsUpload(t *testing.T) {
	runner := &toolchaintest.Runner{Respond: func(e string, args []string) (string, error) {
		return "", toolchaintest.Fail(e, args, 1, "board not found")
	}}

	err := New(testConfig(), runner).Run(context.Background(), exe, "/s/a.ino")

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	require.ErrorIs(t, err, toolchain.ErrToolchainCommand)
	assert.Contains(t, err.Error(), "board not found")
	assert.Equal(t, []string{"compile -b digistump:avr:digispark-tiny /s/a.ino"}, runner.Commands())
}

func TestRunUploadFailure(t *testing.T) {
	runner := &toolchaintest.Runner{Respond: func(e string, args []string) (string, error) {
		if args[0] == "upload" {
			return "", toolchaintest.Fail(e, args, 1, "no device found")
		}
		return "Sketch uses 700 bytes", nil
	}}

	err := New(testConfig(), runner).Run(context.Background(), exe, "/s/a.ino")

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	var cmdErr *toolchain.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "no device found", cmdErr.Stderr)
	assert.Len(t, runner.Calls, 2)
}

func TestRunCancelledDuringPlugDelay(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.PlugDelay = time.Hour
	runner := &toolchaintest.Runner{}
	ctx, cancel := context.WithCancel(context.Background())
	runner.Respond = func(string, []string) (string, error) {
		cancel()
		return "", nil
	}

	err := New(cfg, runner).Run(ctx, exe, "/s/a.ino")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, len(runner.Calls), "upload never starts")
}

type fakeVerifier struct {
	exe   string
	err   error
	calls int
}

func (v *fakeVerifier) Verify(context.Context) (string, error) {
	v.calls++
	return v.exe, v.err
}

// dirSource pretends to fetch by writing the given files under dir.
type dirSource struct {
	dir     string
	files   []string
	fetched int
	err     error
}

func (s *dirSource) Fetch(context.Context) error {
	s.fetched++
	if s.err != nil {
		return s.err
	}
	for _, f := range s.files {
		p := filepath.Join(s.dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte("void setup(){}"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (s *dirSource) Dir() string { return s.dir }

func newPipeline(t *testing.T, runner *toolchaintest.Runner, src *dirSource, input string) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Pipeline{
		Toolchain: &fakeVerifier{exe: exe},
		Sketches:  src,
		Uploader:  New(testConfig(), runner),
		Extension: ".ino",
		In:        strings.NewReader(input),
		Out:       &out,
	}, &out
}

func TestPipelineInteractive(t *testing.T) {
	dir := t.TempDir()
	src := &dirSource{dir: dir, files: []string{"a/Alpha.ino", "b/Beta.ino", "b/notes.txt"}}
	runner := &toolchaintest.Runner{}
	p, out := newPipeline(t, runner, src, "2\n")

	require.NoError(t, p.Run(context.Background()))

	want := filepath.Join(dir, "b", "Beta.ino")
	assert.Equal(t, []string{
		"compile -b digistump:avr:digispark-tiny " + want,
		"upload -b digistump:avr:digispark-tiny " + want,
	}, runner.Commands())
	assert.Contains(t, out.String(), "1. Alpha.ino\n2. Beta.ino\n")
	assert.Equal(t, 1, src.fetched)
}

func TestPipelinePreselected(t *testing.T) {
	dir := t.TempDir()
	src := &dirSource{dir: dir, files: []string{"a/Alpha.ino", "b/Beta.ino"}}
	runner := &toolchaintest.Runner{}
	p, out := newPipeline(t, runner, src, "")
	one := 1
	p.Select = &one

	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, out.String(), "no menu is printed")
	assert.Contains(t, runner.Commands()[0], filepath.Join(dir, "a", "Alpha.ino"))
}

func TestPipelineExplicitSketchSkipsFetch(t *testing.T) {
	src := &dirSource{dir: t.TempDir()}
	runner := &toolchaintest.Runner{}
	p, _ := newPipeline(t, runner, src, "")
	p.Sketch = "/home/me/Custom.ino"

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 0, src.fetched)
	assert.Len(t, runner.Calls, 2)
}

func TestPipelineInvalidSelection(t *testing.T) {
	src := &dirSource{dir: t.TempDir(), files: []string{"a.ino", "b.ino", "c.ino"}}
	runner := &toolchaintest.Runner{}
	p, _ := newPipeline(t, runner, src, "0\n")

	require.ErrorIs(t, p.Run(context.Background()), sketch.ErrInvalidSelection)
	assert.Empty(t, runner.Calls)
}

func TestPipelineExplicitSelectionIsValidated(t *testing.T) {
	for _, n := range []int{0, -5, 4} {
		src := &dirSource{dir: t.TempDir(), files: []string{"a.ino", "b.ino", "c.ino"}}
		runner := &toolchaintest.Runner{}
		p, out := newPipeline(t, runner, src, "2\n")
		verifier := &fakeVerifier{exe: exe}
		p.Toolchain = verifier
		pick := n
		p.Select = &pick

		require.ErrorIs(t, p.Run(context.Background()), sketch.ErrInvalidSelection, "select %d", n)
		assert.Empty(t, runner.Calls)
		assert.Empty(t, out.String(), "the prompt is never shown")
		if n < 1 {
			assert.Zero(t, verifier.calls, "select %d fails before the toolchain check", n)
			assert.Zero(t, src.fetched)
		}
	}
}

func TestPipelineNoSketches(t *testing.T) {
	src := &dirSource{dir: t.TempDir(), files: []string{"README.md"}}
	runner := &toolchaintest.Runner{}
	p, _ := newPipeline(t, runner, src, "1\n")

	require.ErrorIs(t, p.Run(context.Background()), sketch.ErrNoSketches)
	assert.Empty(t, runner.Calls)
}

func TestPipelineStopsOnToolchainError(t *testing.T) {
	src := &dirSource{dir: t.TempDir()}
	boom := errors.New("boom")
	p, _ := newPipeline(t, &toolchaintest.Runner{}, src, "")
	p.Toolchain = &fakeVerifier{err: boom}

	require.ErrorIs(t, p.Run(context.Background()), boom)
	assert.Equal(t, 0, src.fetched)
}

func TestPipelineStopsOnFetchError(t *testing.T) {
	boom := errors.New("offline")
	src := &dirSource{dir: t.TempDir(), err: boom}
	runner := &toolchaintest.Runner{}
	p, _ := newPipeline(t, runner, src, "1\n")

	require.ErrorIs(t, p.Run(context.Background()), boom)
	assert.Empty(t, runner.Calls)
}
