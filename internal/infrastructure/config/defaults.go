package config

const (
	defaultWorkers     = 4
	defaultBarWidth    = 30
	defaultPlaceholder = "image"

	dirPerm  = 0o755
	filePerm = 0o644
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{
			Workers:         defaultWorkers,
			PlaceholderName: defaultPlaceholder,
			MinFreeSpace:    "0",
		},
		Display: DisplayConfig{
			Mode:     DisplayModeAuto,
			BarWidth: defaultBarWidth,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
