// Package toolchaintest provides a scripted toolchain Runner for tests.
package toolchaintest

import (
	"context"
	"fmt"
	"strings"

	"digispark-uploader/internal/toolchain"
)

// Call is one recorded invocation.
type Call struct {
	Exe  string
	Args []string
}

func (c Call) String() string { return strings.Join(c.Args, " ") }

// Runner records every invocation and answers through Respond.
type Runner struct {
	Calls []Call
	// Respond decides the outcome of a call; nil means success with no output.
	Respond func(exe string, args []string) (string, error)
}

func (r *Runner) Run(_ context.Context, exe string, args ...string) (string, error) {
	r.Calls = append(r.Calls, Call{Exe: exe, Args: args})
	if r.Respond == nil {
		return "", nil
	}
	return r.Respond(exe, args)
}

// Commands returns the argument lists of every call, space joined.
func (r *Runner) Commands() []string {
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.String())
	}
	return out
}

// Fail builds the error a real runner returns for a non-zero exit.
func Fail(exe string, args []string, code int, stderr string) error {
	return &toolchain.CommandError{
		Path:     exe,
		Args:     args,
		ExitCode: code,
		Stderr:   stderr,
		Err:      fmt.Errorf("exit status %d", code),
	}
}
