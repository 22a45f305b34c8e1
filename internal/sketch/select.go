package sketch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	// ErrNoSketches means the bundle holds no program sources.
	ErrNoSketches = errors.New("no sketches found")
	// ErrInvalidSelection means the user's choice is not a listed number.
	ErrInvalidSelection = errors.New("invalid selection")
)

// List walks dir and returns every file ending in ext. filepath.WalkDir visits
// entries in lexical order, which makes the listing stable across platforms.
func List(dir, ext string) ([]string, error) {
	var sketches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			sketches = append(sketches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sketches in %s: %w", dir, err)
	}
	if len(sketches) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSketches, dir)
	}
	return sketches, nil
}

// Choose prints a 1-based menu of sketches on out and reads one number from in.
func Choose(in io.Reader, out io.Writer, sketches []string) (string, error) {
	if len(sketches) == 0 {
		return "", ErrNoSketches
	}
	num := color.New(color.FgYellow)
	for i, s := range sketches {
		num.Fprintf(out, "%d.", i+1)
		fmt.Fprintf(out, " %s\n", filepath.Base(s))
	}
	fmt.Fprint(out, "Select sketch number: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: no input", ErrInvalidSelection)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, strings.TrimSpace(line))
	}
	return Pick(sketches, n)
}

// Pick returns the n-th sketch, counting from 1.
func Pick(sketches []string, n int) (string, error) {
	if n < 1 || n > len(sketches) {
		return "", fmt.Errorf("%w: %d is not between 1 and %d", ErrInvalidSelection, n, len(sketches))
	}
	return sketches[n-1], nil
}
