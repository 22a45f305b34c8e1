package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"digispark-uploader/internal/logger"
)

// LoadToolchainPath reads the persisted toolchain location from path.
// The file holds a single, optionally double-quoted, path. A missing or blank
// file is not an error: it just means nothing has been persisted yet.
func LoadToolchainPath(path string) (string, bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	exe := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if exe == "" {
		return "", false, nil
	}
	logger.Debug("[DEBUG] Persisted toolchain location: %s\n", exe)
	return exe, true, nil
}

// SaveToolchainPath overwrites path with the quoted executable location.
func SaveToolchainPath(path, exe string) error {
	logger.Debug("[DEBUG] Writing toolchain location %s to %s\n", exe, path)
	if err := os.WriteFile(path, []byte(`"`+exe+`"`), 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}
