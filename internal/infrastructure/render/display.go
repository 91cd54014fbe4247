package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/batchdl/internal/application/port"
	"github.com/bnema/batchdl/internal/infrastructure/terminal"
	"github.com/bnema/batchdl/internal/logging"
)

// Mode selects a renderer implementation.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeANSI Mode = "ansi"
	ModeLog  Mode = "log"
	ModeTUI  Mode = "tui"
)

// ErrUnknownMode is returned for an unrecognized display mode.
var ErrUnknownMode = errors.New("unknown display mode")

// Modes lists the accepted mode names.
func Modes() []string {
	return []string{string(ModeAuto), string(ModeANSI), string(ModeLog), string(ModeTUI)}
}

// ParseMode validates a mode name. An empty name is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeANSI, ModeLog, ModeTUI:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownMode, s, strings.Join(Modes(), ", "))
	}
}

// Display is a renderer that may hold resources until the batch ends.
type Display interface {
	port.Renderer
	io.Closer
}

// Options configures New.
type Options struct {
	BarWidth int
	// LogFormat is "console" or "json", for ModeLog.
	LogFormat string
}

// Resolve turns ModeAuto into ModeANSI when w is a terminal and ModeLog
// otherwise. Other modes are returned as is.
func Resolve(mode Mode, w io.Writer) Mode {
	if mode != ModeAuto {
		return mode
	}
	if terminal.IsTerminal(w) {
		return ModeANSI
	}
	return ModeLog
}

// Live reports whether mode redraws a region of the terminal, which other
// output to the same terminal would corrupt.
func (m Mode) Live() bool {
	return m == ModeANSI || m == ModeTUI
}

// New creates the renderer for mode writing to w. ModeAuto is resolved
// with Resolve.
func New(mode Mode, w io.Writer, opts Options) (Display, error) {
	switch mode = Resolve(mode, w); mode {
	case ModeANSI:
		formatter := NewFormatter(opts.BarWidth, func() int { return terminal.Width(w) })
		return NewANSIRenderer(w, formatter), nil
	case ModeLog:
		logger := logging.New(logging.Config{
			Level:      zerolog.InfoLevel,
			Format:     opts.LogFormat,
			TimeFormat: time.TimeOnly,
		}, w)
		return NewLogRenderer(logger), nil
	case ModeTUI:
		return NewTeaRenderer(w, opts.BarWidth, terminal.Width(w)), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
}
