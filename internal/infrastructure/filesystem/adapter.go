package filesystem

import (
	"context"
	"io"
	"os"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Adapter implements port.FileSystem using the OS filesystem.
type Adapter struct{}

// New creates a new filesystem adapter.
func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (a *Adapter) MkdirAll(_ context.Context, path string) error {
	return os.MkdirAll(path, dirPerm)
}

// Create opens path for writing, truncating any previous content.
func (a *Adapter) Create(_ context.Context, path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
}
