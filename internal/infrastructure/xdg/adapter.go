package xdg

import (
	"os"
	"path/filepath"

	"github.com/bnema/batchdl/internal/application/port"
	"github.com/bnema/batchdl/internal/infrastructure/config"
)

// Adapter implements port.XDGPaths.
type Adapter struct{}

// New creates a new XDG paths adapter.
func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) ConfigDir() (string, error) {
	return config.GetConfigDir()
}

// DownloadDir returns $XDG_DOWNLOAD_DIR, defaulting to ~/Downloads.
func (a *Adapter) DownloadDir() (string, error) {
	if dir := os.Getenv("XDG_DOWNLOAD_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads"), nil
}

// ManDir returns $XDG_DATA_HOME/man/man1 so 'man batchdl' works without
// extending MANPATH.
func (a *Adapter) ManDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "man", "man1"), nil
}

var _ port.XDGPaths = (*Adapter)(nil)
