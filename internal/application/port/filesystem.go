package port

import (
	"context"
	"io"
)

// FileSystem provides file system operations for the application layer.
type FileSystem interface {
	Exists(ctx context.Context, path string) (bool, error)
	MkdirAll(ctx context.Context, path string) error
	Create(ctx context.Context, path string) (io.WriteCloser, error)
}

// DiskSpaceProbe reports the free bytes available to the filesystem holding path.
type DiskSpaceProbe interface {
	FreeBytes(ctx context.Context, path string) (uint64, error)
}
