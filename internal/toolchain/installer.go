// Package toolchain makes sure a working arduino-cli with the board core is
// available, installing it when needed, and runs it.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"digispark-uploader/internal/archive"
	"digispark-uploader/internal/config"
	"digispark-uploader/internal/logger"
	"digispark-uploader/internal/progress"
	"digispark-uploader/internal/state"
)

// Fetcher downloads url to dest.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// State is a step of toolchain verification.
type State int

const (
	StateUnverified State = iota
	StateProbePersisted
	StateProbeDefault
	StateInstall
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateProbePersisted:
		return "probe-persisted"
	case StateProbeDefault:
		return "probe-default"
	case StateInstall:
		return "install"
	case StateVerified:
		return "verified"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Installer verifies, and if necessary installs, the toolchain.
type Installer struct {
	cfg      config.Config
	runner   Runner
	fetcher  Fetcher
	progress progress.Reporter

	// UserConfig is the arduino-cli user configuration; `config init` is
	// skipped when it already exists.
	UserConfig string

	state State
	exe   string
}

// NewInstaller wires an Installer. A nil reporter discards extraction progress.
func NewInstaller(cfg config.Config, runner Runner, fetcher Fetcher, p progress.Reporter) *Installer {
	if p == nil {
		p = progress.Nop{}
	}
	return &Installer{
		cfg:        cfg,
		runner:     runner,
		fetcher:    fetcher,
		progress:   p,
		UserConfig: UserConfigPath(),
	}
}

// State reports how far verification has got.
func (i *Installer) State() State { return i.state }

// Verify returns the path of an executable that has the board family core
// installed. Once it succeeds, later calls return the same path without
// touching the network or the toolchain.
func (i *Installer) Verify(ctx context.Context) (string, error) {
	for {
		logger.Debug("[DEBUG] toolchain verification state: %s\n", i.state)
		switch i.state {
		case StateUnverified:
			i.state = StateProbePersisted

		case StateProbePersisted:
			i.state = StateProbeDefault
			exe, ok, err := state.LoadToolchainPath(i.cfg.StatePath())
			if err != nil {
				logger.Warn("[WARN] Ignoring unreadable toolchain location: %v\n", err)
				continue
			}
			if ok && fileExists(exe) && i.hasFamily(ctx, exe) {
				i.exe, i.state = exe, StateVerified
			}

		case StateProbeDefault:
			i.state = StateInstall
			exe := i.cfg.ToolchainExe()
			if fileExists(exe) && i.hasFamily(ctx, exe) {
				if err := state.SaveToolchainPath(i.cfg.StatePath(), exe); err != nil {
					i.state = StateUnverified
					return "", err
				}
				i.exe, i.state = exe, StateVerified
			}

		case StateInstall:
			exe, err := i.install(ctx)
			if err != nil {
				i.state = StateUnverified
				return "", err
			}
			i.exe, i.state = exe, StateVerified

		case StateVerified:
			return i.exe, nil
		}
	}
}

// hasFamily probes `core list`; any failure counts as "not installed".
func (i *Installer) hasFamily(ctx context.Context, exe string) bool {
	out, err := i.runner.Run(ctx, exe, "core", "list")
	if err != nil {
		logger.Debug("[DEBUG] core list failed for %s: %v\n", exe, err)
		return false
	}
	family := i.cfg.Family()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, family) {
			return true
		}
	}
	logger.Debug("[DEBUG] %s has no %s core\n", exe, family)
	return false
}

// install performs a clean toolchain install and persists its location.
func (i *Installer) install(ctx context.Context) (string, error) {
	dir := i.cfg.InstallDir()
	exe := i.cfg.ToolchainExe()

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to remove stale toolchain %s: %w", dir, err)
	}

	url := i.cfg.Toolchain.URL
	if url == "" {
		var err error
		if url, err = ReleaseURL(i.cfg.Toolchain.Version, runtime.GOOS, runtime.GOARCH); err != nil {
			return "", err
		}
	}

	logger.Info("[INFO] Downloading and installing arduino-cli...\n")
	archivePath := i.cfg.ArchivePath("arduino-cli" + archiveExt(url))
	defer os.Remove(archivePath)
	if err := i.fetcher.Fetch(ctx, url, archivePath); err != nil {
		return "", err
	}
	if _, err := archive.Extract(archivePath, dir, i.progress); err != nil {
		return "", err
	}
	if !fileExists(exe) {
		return "", fmt.Errorf("%w: %s does not contain %s", archive.ErrInvalidArchive, url, exe)
	}

	if fileExists(i.UserConfig) {
		logger.Info("[INFO] arduino-cli config already exists, skipping init.\n")
	} else if _, err := i.runner.Run(ctx, exe, "config", "init"); err != nil {
		return "", err
	}
	if _, err := i.runner.Run(ctx, exe, "config", "add", "board_manager.additional_urls", i.cfg.Toolchain.IndexURL); err != nil {
		return "", err
	}
	if _, err := i.runner.Run(ctx, exe, "core", "install", i.cfg.Family()); err != nil {
		return "", err
	}

	if err := state.SaveToolchainPath(i.cfg.StatePath(), exe); err != nil {
		return "", err
	}
	logger.Info("[INFO] arduino-cli installed at %s\n", exe)
	return exe, nil
}

// fileExists reports whether path exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
