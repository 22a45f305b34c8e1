package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Config is the immutable run configuration. It is built once by Load and
// handed by value to every component, so tests can point URLs and paths
// anywhere they like.
type Config struct {
	// WorkDir is the base for every relative path below.
	WorkDir string `yaml:"work_dir"`
	// StateFile holds the persisted toolchain location (one quoted path).
	StateFile string `yaml:"state_file"`
	// Board is the package:architecture:board triple passed to compile and upload.
	Board string `yaml:"board"`
	// BoardFamily is the package:architecture core; derived from Board when empty.
	BoardFamily string `yaml:"board_family"`

	Toolchain Toolchain `yaml:"toolchain"`
	Sketches  Sketches  `yaml:"sketches"`
	Download  Download  `yaml:"download"`
	Upload    Upload    `yaml:"upload"`
}

// Toolchain describes where the compiler/uploader comes from and where it lives.
type Toolchain struct {
	Version    string `yaml:"version"`     // arduino-cli release, e.g. 0.35.3
	URL        string `yaml:"url"`         // explicit archive URL; derived from Version and the host platform when empty
	InstallDir string `yaml:"install_dir"` // extraction target
	IndexURL   string `yaml:"index_url"`   // board manager package index for the board family
}

// Sketches describes the example program bundle.
type Sketches struct {
	URL       string `yaml:"url"`
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension"`
}

// Download tunes HTTP fetching.
type Download struct {
	// Timeout bounds a whole download; zero means wait forever.
	Timeout time.Duration `yaml:"timeout"`
}

// Upload tunes the compile/upload step.
type Upload struct {
	// PlugDelay is how long to wait for the device to be plugged in before uploading.
	PlugDelay time.Duration `yaml:"plug_delay"`
}

// Family returns the board family used to probe and install the core.
func (c Config) Family() string {
	if c.BoardFamily != "" {
		return c.BoardFamily
	}
	parts := strings.Split(c.Board, ":")
	if len(parts) < 2 {
		return c.Board
	}
	return parts[0] + ":" + parts[1]
}

// StatePath is the absolute-or-workdir-relative location of the state file.
func (c Config) StatePath() string { return c.resolve(c.StateFile) }

// InstallDir is where the toolchain archive is extracted.
func (c Config) InstallDir() string { return c.resolve(c.Toolchain.InstallDir) }

// ToolchainExe is the default executable path inside InstallDir.
func (c Config) ToolchainExe() string {
	name := "arduino-cli"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(c.InstallDir(), name)
}

// SketchDir is where the sketch bundle is extracted.
func (c Config) SketchDir() string { return c.resolve(c.Sketches.Dir) }

// ArchivePath returns where a temporary archive called name is downloaded.
func (c Config) ArchivePath(name string) string { return c.resolve(name) }

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(filepath.Join(c.WorkDir, p))
	if err != nil {
		return filepath.Join(c.WorkDir, p)
	}
	return abs
}
