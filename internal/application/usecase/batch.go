package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/bnema/batchdl/internal/application/port"
	"github.com/bnema/batchdl/internal/domain/download"
)

// Batch is the shared state of one batch run. A single mutex guards the
// progress table, the completion counter and every call into the renderer,
// so each frame is a consistent snapshot and frames never interleave.
type Batch struct {
	mu          sync.Mutex
	table       *download.ProgressTable
	completed   int
	total       int
	dir         string
	placeholder string
	fs          port.FileSystem
	renderer    port.Renderer
}

// NewBatch creates the shared state for total tasks writing into dir.
func NewBatch(total int, dir string, fs port.FileSystem, renderer port.Renderer, placeholder string) *Batch {
	if renderer == nil {
		renderer = port.RendererFunc(func(download.Frame) {})
	}
	return &Batch{
		table:       download.NewProgressTable(),
		total:       total,
		dir:         dir,
		placeholder: placeholder,
		fs:          fs,
		renderer:    renderer,
	}
}

// Start draws the initial empty frame.
func (b *Batch) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.renderLocked()
}

// Claim reserves a filename for url that is neither active in the table
// nor present on disk, and registers it with the declared total.
// The check and the registration happen under the same lock.
func (b *Batch) Claim(ctx context.Context, url string, total int64) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	candidate := download.ExtractFilenameFromURL(url, b.placeholder)
	name, err := download.MakeUniqueFilename(candidate, func(name string) (bool, error) {
		if b.table.Has(name) {
			return true, nil
		}
		return b.fs.Exists(ctx, filepath.Join(b.dir, name))
	})
	if err != nil {
		if errors.Is(err, download.ErrResolutionExhausted) {
			return "", &download.DownloadError{URL: url, Kind: download.KindResolutionExhausted, Err: err}
		}
		return "", download.NewFilesystemError(url, err)
	}

	b.table.Claim(name, total)
	b.renderLocked()

	return name, nil
}

// Advance records n more bytes written for name.
func (b *Batch) Advance(name string, n int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.table.Advance(name, n)
	b.renderLocked()

	return err
}

// Finish marks one task as terminated and drops its entry. name may be
// empty when the task failed before claiming a filename.
func (b *Batch) Finish(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.completed < b.total {
		b.completed++
	}
	if name != "" {
		b.table.Remove(name)
	}
	b.renderLocked()
}

// Snapshot returns the current frame.
func (b *Batch) Snapshot() download.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.frameLocked()
}

func (b *Batch) frameLocked() download.Frame {
	return download.Frame{
		Completed: b.completed,
		Total:     b.total,
		Entries:   b.table.Views(),
	}
}

func (b *Batch) renderLocked() {
	b.renderer.Render(b.frameLocked())
}
