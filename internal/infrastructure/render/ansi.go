package render

import (
	"fmt"
	"io"

	"github.com/bnema/batchdl/internal/domain/download"
)

// ANSIRenderer redraws a fixed region of the terminal on every frame:
// it moves the cursor up over the lines it wrote last time, clears to the
// end of the screen and writes the new frame.
type ANSIRenderer struct {
	w         io.Writer
	formatter *Formatter
	lines     int
}

// NewANSIRenderer creates an ANSIRenderer writing to w.
func NewANSIRenderer(w io.Writer, formatter *Formatter) *ANSIRenderer {
	return &ANSIRenderer{w: w, formatter: formatter}
}

// Render implements port.Renderer. The final frame ends with a blank line
// that marks completion.
func (r *ANSIRenderer) Render(frame download.Frame) {
	lines := r.formatter.Lines(frame)
	if frame.Finished() {
		lines = append(lines, "")
	}

	out := ""
	if r.lines > 0 {
		out = fmt.Sprintf("\033[%dA", r.lines)
	}
	out += "\r\033[J" + joinLines(lines)

	// A failed write only loses a frame.
	_, _ = io.WriteString(r.w, out)
	r.lines = len(lines)
}

// Close implements io.Closer.
func (*ANSIRenderer) Close() error {
	return nil
}
