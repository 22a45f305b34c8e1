package logger

import (
	"io"

	"github.com/fatih/color" // Colored console output
)

// Console printers for each log level, built on fatih/color.
// They behave like fmt.Printf and are rebuilt whenever the output changes.

// Info prints progress and success messages in green.
var Info func(format string, a ...any)

// Warn prints recoverable problems in bright magenta.
var Warn func(format string, a ...any)

// Error prints fatal problems in red to stderr.
var Error func(format string, a ...any)

// Debug prints diagnostic messages in cyan when enabled, otherwise it is a no-op.
var Debug func(format string, a ...any)

var (
	out          io.Writer = color.Output // Info, Warn and Debug
	errOut       io.Writer = color.Error  // Error
	debugEnabled bool
)

func init() {
	build()
}

// Init enables or disables debug output.
func Init(enableDebug bool) {
	debugEnabled = enableDebug
	build()
}

// SetOutput redirects every level to w. Passing nil restores the defaults:
// colored stdout for Info, Warn and Debug, colored stderr for Error.
func SetOutput(w io.Writer) {
	if w == nil {
		out, errOut = color.Output, color.Error
	} else {
		out, errOut = w, w
	}
	build()
}

// build binds each level to its color and writer.
func build() {
	Info = fprintf(color.New(color.FgGreen), out)
	Warn = fprintf(color.New(color.FgHiMagenta), out)
	Error = fprintf(color.New(color.FgRed), errOut)
	if debugEnabled {
		Debug = fprintf(color.New(color.FgCyan), out)
	} else {
		Debug = func(format string, a ...any) {} // no-op
	}
}

// fprintf returns a Printf-style func writing through c to w.
func fprintf(c *color.Color, w io.Writer) func(format string, a ...any) {
	return func(format string, a ...any) {
		_, _ = c.Fprintf(w, format, a...)
	}
}
