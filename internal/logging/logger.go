package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
}

// DefaultConfig returns sensible defaults. Warn keeps the live progress
// display free of interleaved log lines.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.WarnLevel,
		Format:     "console",
		TimeFormat: time.TimeOnly,
	}
}

// FileConfig controls the optional persistent log file. The file always
// receives JSON lines.
type FileConfig struct {
	Enabled    bool
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New creates a new zerolog logger writing to w (stderr when nil).
func New(cfg Config, w io.Writer) zerolog.Logger {
	return newLogger(cfg, formatWriter(cfg, w))
}

// NewWithFile creates a logger writing to w and, when enabled, to a rotating
// file. Console output goes through the returned gate so a live display can
// mute it; the file always gets every line. The returned cleanup closes the file.
func NewWithFile(cfg Config, fileCfg FileConfig, w io.Writer) (zerolog.Logger, *ConsoleGate, func(), error) {
	gate := NewConsoleGate(formatWriter(cfg, w), zerolog.ErrorLevel)
	if !fileCfg.Enabled {
		return newLogger(cfg, gate), gate, func() {}, nil
	}

	file, err := NewRotatingFile(fileCfg)
	if err != nil {
		return newLogger(cfg, gate), gate, func() {}, err
	}

	output := zerolog.MultiLevelWriter(gate, file)
	cleanup := func() {
		_ = file.Close()
	}
	return newLogger(cfg, output), gate, cleanup, nil
}

func formatWriter(cfg Config, w io.Writer) io.Writer {
	if w == nil {
		w = os.Stderr
	}
	if cfg.Format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: cfg.TimeFormat,
	}
}

func newLogger(cfg Config, output io.Writer) zerolog.Logger {
	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to warn.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.WarnLevel
	}
}
