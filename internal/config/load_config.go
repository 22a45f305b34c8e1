package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = "uploader.yaml"

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns the built-in configuration for a Digispark board.
func Default() Config {
	return Config{
		WorkDir:   ".",
		StateFile: "CLIPath.txt",
		Board:     "digistump:avr:digispark-tiny",
		Toolchain: Toolchain{
			Version:    "0.35.3",
			InstallDir: "arduino-cli",
			IndexURL:   "https://raw.githubusercontent.com/digistump/arduino-boards-index/master/package_digistump_index.json",
		},
		Sketches: Sketches{
			URL:       "https://github.com/huh445/Digispark-Scripts/archive/refs/heads/main.zip",
			Dir:       "sketches",
			Extension: ".ino",
		},
		Upload: Upload{PlugDelay: 2 * time.Second},
	}
}

// LoadConfig overlays the YAML file at path onto Default and validates the result.
// A missing file is only an error when required is set, which is the case when
// the user named the file explicitly.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
		return cfg, cfg.Validate()
	case err != nil:
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings every component relies on.
func (c Config) Validate() error {
	if strings.Count(c.Board, ":") != 2 {
		return fmt.Errorf("%w: board %q is not a package:architecture:board triple", ErrInvalidConfig, c.Board)
	}
	for _, s := range []string{c.Board, c.Family()} {
		for _, part := range strings.Split(s, ":") {
			if part == "" {
				return fmt.Errorf("%w: board %q has an empty segment", ErrInvalidConfig, s)
			}
		}
	}
	if c.Toolchain.URL == "" && c.Toolchain.Version == "" {
		return fmt.Errorf("%w: toolchain needs a url or a version", ErrInvalidConfig)
	}
	if c.Toolchain.IndexURL == "" {
		return fmt.Errorf("%w: toolchain.index_url is empty", ErrInvalidConfig)
	}
	if c.Sketches.URL == "" {
		return fmt.Errorf("%w: sketches.url is empty", ErrInvalidConfig)
	}
	if c.Sketches.Extension == "" {
		return fmt.Errorf("%w: sketches.extension is empty", ErrInvalidConfig)
	}
	if c.StateFile == "" || c.Toolchain.InstallDir == "" || c.Sketches.Dir == "" {
		return fmt.Errorf("%w: state_file, toolchain.install_dir and sketches.dir must be set", ErrInvalidConfig)
	}
	if c.Download.Timeout < 0 || c.Upload.PlugDelay < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}
