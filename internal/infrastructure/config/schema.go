package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Config represents the complete configuration for batchdl.
type Config struct {
	Download DownloadConfig `mapstructure:"download" toml:"download" json:"download"`
	Display  DisplayConfig  `mapstructure:"display" toml:"display" json:"display"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging" json:"logging"`
}

// DownloadConfig controls the worker pool and file naming.
type DownloadConfig struct {
	// Workers is the number of concurrent downloads.
	Workers int `mapstructure:"workers" toml:"workers" json:"workers" jsonschema:"minimum=1,maximum=1024,default=4"`
	// PlaceholderName is used when a URL has no usable last path segment.
	PlaceholderName string `mapstructure:"placeholder_name" toml:"placeholder_name" json:"placeholder_name" jsonschema:"default=image"`
	// UserAgent is sent with every request. Empty uses batchdl/<version>.
	UserAgent string `mapstructure:"user_agent" toml:"user_agent" json:"user_agent"`
	// MinFreeSpace warns before a batch when the destination has less room,
	// e.g. "500MB" or "2GiB". "0" disables the check.
	MinFreeSpace string `mapstructure:"min_free_space" toml:"min_free_space" json:"min_free_space" jsonschema:"default=0"`
}

// MinFreeSpaceBytes parses MinFreeSpace.
func (d DownloadConfig) MinFreeSpaceBytes() (uint64, error) {
	if d.MinFreeSpace == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(d.MinFreeSpace)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", d.MinFreeSpace, err)
	}
	return n, nil
}

// DisplayMode selects how progress is drawn.
type DisplayMode string

const (
	DisplayModeAuto DisplayMode = "auto"
	DisplayModeANSI DisplayMode = "ansi"
	DisplayModeLog  DisplayMode = "log"
	DisplayModeTUI  DisplayMode = "tui"
)

// DisplayConfig controls the progress display.
type DisplayConfig struct {
	Mode     DisplayMode `mapstructure:"mode" toml:"mode" json:"mode" jsonschema:"enum=auto,enum=ansi,enum=log,enum=tui,default=auto"`
	BarWidth int         `mapstructure:"bar_width" toml:"bar_width" json:"bar_width" jsonschema:"minimum=5,maximum=200,default=30"`
}

// LoggingConfig controls diagnostic logs written to stderr and, optionally,
// to a rotating file.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,enum=fatal,default=warn"`
	Format string `mapstructure:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json,default=console"`

	EnableFileLog bool `mapstructure:"enable_file_log" toml:"enable_file_log" json:"enable_file_log"`
	// LogDir defaults to $XDG_STATE_HOME/batchdl/logs.
	LogDir     string `mapstructure:"log_dir" toml:"log_dir" json:"log_dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb" json:"max_size_mb" jsonschema:"minimum=1,default=10"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups" json:"max_backups" jsonschema:"minimum=0,default=3"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days" json:"max_age_days" jsonschema:"minimum=0,default=7"`
	Compress   bool   `mapstructure:"compress" toml:"compress" json:"compress"`
}
