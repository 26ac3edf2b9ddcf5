package cli

import (
	"fmt"
	"io"
)

// fprintln writes a line, ignoring write errors (stdout/stderr best effort).
func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

// fprintf writes formatted output, ignoring write errors.
func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
