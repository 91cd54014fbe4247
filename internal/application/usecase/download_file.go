package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bnema/batchdl/internal/application/port"
	"github.com/bnema/batchdl/internal/domain/download"
	"github.com/bnema/batchdl/internal/logging"
)

// ChunkSize is the read and write unit of a download.
const ChunkSize = 8 * 1024

// TaskResult is the outcome of one task.
type TaskResult struct {
	URL      string
	Filename string
	Bytes    int64
	Err      error
}

// DownloadFileUseCase streams one URL to disk, reporting progress to a Batch.
type DownloadFileUseCase struct {
	fetcher port.Fetcher
	fs      port.FileSystem
	events  port.DownloadEventHandler
}

// NewDownloadFileUseCase creates a new DownloadFileUseCase.
// events may be nil.
func NewDownloadFileUseCase(fetcher port.Fetcher, fs port.FileSystem, events port.DownloadEventHandler) *DownloadFileUseCase {
	return &DownloadFileUseCase{fetcher: fetcher, fs: fs, events: events}
}

// Execute downloads task.URL into task.DestinationDir. Whatever happens,
// the task is counted as terminated in batch and its entry is released.
// Errors are always *download.DownloadError.
func (uc *DownloadFileUseCase) Execute(ctx context.Context, batch *Batch, task download.Task) (result TaskResult, err error) {
	ctx = logging.WithURL(ctx, task.URL)
	log := logging.FromContext(ctx)

	result.URL = task.URL

	defer func() {
		batch.Finish(result.Filename)

		result.Err = err
		if err != nil {
			log.Warn().Err(err).Str("file", result.Filename).Str("kind", download.KindOf(err).String()).Msg("download failed")
			uc.emit(ctx, port.DownloadEventFailed, task, result)
			return
		}
		log.Debug().Str("file", result.Filename).Int64("bytes", result.Bytes).Msg("download complete")
		uc.emit(ctx, port.DownloadEventFinished, task, result)
	}()

	if err := uc.fs.MkdirAll(ctx, task.DestinationDir); err != nil {
		return result, download.NewFilesystemError(task.URL, fmt.Errorf("create destination: %w", err))
	}

	body, total, err := uc.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		return result, download.NewNetworkError(task.URL, err)
	}
	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("failed to close response body")
		}
	}()

	name, err := batch.Claim(ctx, task.URL, total)
	if err != nil {
		return result, err
	}
	result.Filename = name

	dest := filepath.Join(task.DestinationDir, name)
	log.Debug().Str("file", name).Int64("total", total).Msg("claimed filename")
	uc.emit(ctx, port.DownloadEventStarted, task, result)

	f, err := uc.fs.Create(ctx, dest)
	if err != nil {
		return result, download.NewFilesystemError(task.URL, fmt.Errorf("create file: %w", err))
	}

	written, copyErr := uc.stream(batch, task.URL, name, f, body)
	result.Bytes = written

	if closeErr := f.Close(); closeErr != nil && copyErr == nil {
		copyErr = download.NewFilesystemError(task.URL, fmt.Errorf("close file: %w", closeErr))
	}
	if copyErr != nil {
		return result, copyErr
	}

	if total > 0 && written < total {
		return result, download.NewNetworkError(task.URL, fmt.Errorf("got %d of %d bytes: %w", written, total, io.ErrUnexpectedEOF))
	}

	return result, nil
}

// stream copies body to w in ChunkSize reads, recording every chunk in batch
// once it is on disk.
func (*DownloadFileUseCase) stream(batch *Batch, url, name string, w io.Writer, body io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)

	var written int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, download.NewFilesystemError(url, fmt.Errorf("write file: %w", err))
			}
			written += int64(n)

			if err := batch.Advance(name, int64(n)); err != nil {
				return written, download.NewNetworkError(url, err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, download.NewNetworkError(url, fmt.Errorf("read body: %w", readErr))
		}
	}
}

func (uc *DownloadFileUseCase) emit(ctx context.Context, eventType port.DownloadEventType, task download.Task, result TaskResult) {
	if uc.events == nil {
		return
	}

	dest := ""
	if result.Filename != "" {
		dest = filepath.Join(task.DestinationDir, result.Filename)
	}

	uc.events.OnDownloadEvent(ctx, port.DownloadEvent{
		Type:        eventType,
		URL:         task.URL,
		Filename:    result.Filename,
		Destination: dest,
		Bytes:       result.Bytes,
		Error:       result.Err,
	})
}
