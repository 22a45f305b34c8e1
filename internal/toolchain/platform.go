package toolchain

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUnsupportedPlatform is returned when no arduino-cli release exists for the host.
var ErrUnsupportedPlatform = errors.New("no toolchain release for this platform")

const releaseBase = "https://github.com/arduino/arduino-cli/releases/download"

// releaseAssets maps GOOS/GOARCH onto the arduino-cli release asset suffix.
var releaseAssets = map[string]string{
	"windows/amd64": "Windows_64bit.zip",
	"windows/386":   "Windows_32bit.zip",
	"linux/amd64":   "Linux_64bit.tar.gz",
	"linux/386":     "Linux_32bit.tar.gz",
	"linux/arm64":   "Linux_ARM64.tar.gz",
	"linux/arm":     "Linux_ARMv7.tar.gz",
	"darwin/amd64":  "macOS_64bit.tar.gz",
	"darwin/arm64":  "macOS_ARM64.tar.gz",
}

// ReleaseURL returns the arduino-cli archive for version on goos/goarch.
func ReleaseURL(version, goos, goarch string) (string, error) {
	asset, ok := releaseAssets[goos+"/"+goarch]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	version = strings.TrimPrefix(version, "v")
	return fmt.Sprintf("%s/v%s/arduino-cli_%s_%s", releaseBase, version, version, asset), nil
}

// archiveExt returns the archive extension of rawURL, ".zip" when unknown.
func archiveExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	base := strings.ToLower(path.Base(p))
	for _, ext := range []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".tar", ".zip", ".7z"} {
		if strings.HasSuffix(base, ext) {
			return ext
		}
	}
	return ".zip"
}

// UserConfigPath is where arduino-cli keeps its user-level configuration.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "Arduino15", "arduino-cli.yaml")
		}
		return filepath.Join(home, "AppData", "Local", "Arduino15", "arduino-cli.yaml")
	case "darwin":
		return filepath.Join(home, "Library", "Arduino15", "arduino-cli.yaml")
	default:
		return filepath.Join(home, ".arduino15", "arduino-cli.yaml")
	}
}
