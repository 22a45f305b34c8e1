package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"digispark-uploader/internal/logger"
)

// ErrToolchainCommand classifies every toolchain invocation that failed.
var ErrToolchainCommand = errors.New("toolchain command failed")

// CommandError carries what a failed toolchain invocation left behind.
type CommandError struct {
	Path     string
	Args     []string
	ExitCode int // -1 when the process never ran
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", ErrToolchainCommand, filepath.Base(e.Path), strings.Join(e.Args, " "))
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return msg + ": " + s
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *CommandError) Unwrap() []error { return []error{ErrToolchainCommand, e.Err} }

// Runner invokes the toolchain executable. Implementations return the
// captured stdout, and a *CommandError when the process fails.
type Runner interface {
	Run(ctx context.Context, exe string, args ...string) (string, error)
}

// ExecRunner runs commands with an argument vector, never through a shell.
type ExecRunner struct {
	// Stdout, when set, receives the command output as it is produced.
	Stdout io.Writer
	// Stderr, when set, receives the error output of failed commands.
	Stderr io.Writer
}

// Run starts exe with args as an argument vector, teeing stdout to r.Stdout.
// On failure the captured stderr is echoed to r.Stderr and carried in a *CommandError.
func (r ExecRunner) Run(ctx context.Context, exe string, args ...string) (string, error) {
	// #nosec G204 -- exe comes from configuration, args are fixed subcommands
	cmd := exec.CommandContext(ctx, exe, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Stdout)
	}
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if r.Stderr != nil && stderr.Len() > 0 {
			_, _ = r.Stderr.Write(stderr.Bytes())
		}
		return stdout.String(), &CommandError{
			Path:     exe,
			Args:     args,
			ExitCode: code,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return stdout.String(), nil
}
