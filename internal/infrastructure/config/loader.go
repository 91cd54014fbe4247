// Package config loads batchdl settings from defaults, a TOML file,
// BATCHDL_* environment variables and command flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager handles configuration loading.
type Manager struct {
	config     *Config
	viper      *viper.Viper
	configFile string
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager. configFile overrides the
// XDG location; an explicit file must exist.
func NewManager(configFile string) (*Manager, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
		}
		v.SetConfigName("config")
		v.AddConfigPath(configDir)
	}
	v.SetConfigType("toml")

	// e.g. BATCHDL_DOWNLOAD_WORKERS, BATCHDL_LOGGING_LEVEL
	v.SetEnvPrefix("BATCHDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "BATCHDL_LOG_LEVEL", "BATCHDL_LOGGING_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind BATCHDL_LOG_LEVEL: %w", err)
	}

	m := &Manager{viper: v, configFile: configFile}
	m.setDefaults()
	return m, nil
}

// Viper exposes the underlying instance so commands can bind flags.
func (m *Manager) Viper() *viper.Viper {
	return m.viper
}

// Load reads the config file if present and resolves the final configuration.
// A missing file in the default location is not an error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}

	configFile := m.viper.ConfigFileUsed()
	if configFile == "" {
		configFile = m.configFile
	}
	return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", configFile, err)
}

func normalizeConfig(config *Config) {
	config.Display.Mode = DisplayMode(strings.ToLower(strings.TrimSpace(string(config.Display.Mode))))
	if config.Display.Mode == "" {
		config.Display.Mode = DisplayModeAuto
	}

	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	if config.Logging.Level == "warning" {
		config.Logging.Level = "warn"
	}
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))

	config.Download.PlaceholderName = strings.TrimSpace(config.Download.PlaceholderName)
	config.Download.MinFreeSpace = strings.TrimSpace(config.Download.MinFreeSpace)
}

// Get returns a copy of the loaded configuration, or the defaults before Load.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	configCopy := *m.config
	return &configCopy
}

// ConfigFileUsed returns the path of the file that was read, if any.
func (m *Manager) ConfigFileUsed() string {
	return m.viper.ConfigFileUsed()
}

func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("download.workers", defaults.Download.Workers)
	m.viper.SetDefault("download.placeholder_name", defaults.Download.PlaceholderName)
	m.viper.SetDefault("download.user_agent", defaults.Download.UserAgent)
	m.viper.SetDefault("download.min_free_space", defaults.Download.MinFreeSpace)

	m.viper.SetDefault("display.mode", string(defaults.Display.Mode))
	m.viper.SetDefault("display.bar_width", defaults.Display.BarWidth)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.enable_file_log", defaults.Logging.EnableFileLog)
	m.viper.SetDefault("logging.log_dir", defaults.Logging.LogDir)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
}
