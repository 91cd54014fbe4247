// Package terminal answers questions about the output terminal.
package terminal

import (
	"io"

	"github.com/mattn/go-isatty"
)

// DefaultWidth is used when the width cannot be determined.
const DefaultWidth = 80

type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Width returns the column count of w, or DefaultWidth.
func Width(w io.Writer) int {
	f, ok := w.(fder)
	if !ok {
		return DefaultWidth
	}
	if cols := columns(f.Fd()); cols > 0 {
		return cols
	}
	return DefaultWidth
}
