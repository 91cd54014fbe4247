package config

import (
	"fmt"
	"strings"
)

const (
	maxWorkers  = 1024
	minBarWidth = 5
	maxBarWidth = 200
)

// validateConfig collects every invalid value into one error.
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateDownload(config)...)
	validationErrors = append(validationErrors, validateDisplay(config)...)
	validationErrors = append(validationErrors, validateLogging(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateDownload(config *Config) []string {
	var validationErrors []string
	d := config.Download

	if d.Workers < 1 || d.Workers > maxWorkers {
		validationErrors = append(validationErrors, fmt.Sprintf("download.workers must be between 1 and %d", maxWorkers))
	}

	switch {
	case d.PlaceholderName == "", d.PlaceholderName == ".", d.PlaceholderName == "..":
		validationErrors = append(validationErrors, "download.placeholder_name must be a usable file name")
	case strings.ContainsAny(d.PlaceholderName, `/\`):
		validationErrors = append(validationErrors, "download.placeholder_name must not contain path separators")
	}

	if _, err := d.MinFreeSpaceBytes(); err != nil {
		validationErrors = append(validationErrors, "download.min_free_space: "+err.Error())
	}

	return validationErrors
}

func validateDisplay(config *Config) []string {
	var validationErrors []string

	switch config.Display.Mode {
	case DisplayModeAuto, DisplayModeANSI, DisplayModeLog, DisplayModeTUI:
	default:
		validationErrors = append(validationErrors, "display.mode must be one of: auto, ansi, log, tui")
	}

	if config.Display.BarWidth < minBarWidth || config.Display.BarWidth > maxBarWidth {
		validationErrors = append(validationErrors, fmt.Sprintf("display.bar_width must be between %d and %d", minBarWidth, maxBarWidth))
	}

	return validationErrors
}

func validateLogging(config *Config) []string {
	var validationErrors []string

	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		validationErrors = append(validationErrors, "logging.level must be one of: trace, debug, info, warn, error, fatal")
	}

	switch config.Logging.Format {
	case "console", "json":
	default:
		validationErrors = append(validationErrors, "logging.format must be one of: console, json")
	}

	if config.Logging.MaxSizeMB < 1 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be at least 1")
	}
	if config.Logging.MaxBackups < 0 {
		validationErrors = append(validationErrors, "logging.max_backups must be non-negative")
	}
	if config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_age_days must be non-negative")
	}

	return validationErrors
}
