package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/batchdl/internal/application/port"
	"github.com/bnema/batchdl/internal/domain/download"
	"github.com/bnema/batchdl/internal/logging"
)

// DefaultWorkers is the concurrency bound used when none is given.
const DefaultWorkers = 4

var (
	// ErrInvalidWorkers is returned for a negative worker count.
	ErrInvalidWorkers = errors.New("worker count must be positive")
	// ErrEmptyURL is returned when the batch contains a blank URL.
	ErrEmptyURL = errors.New("empty url")
)

// RunBatchInput describes one batch run.
type RunBatchInput struct {
	URLs           []string
	DestinationDir string
	// Workers bounds concurrency; zero means DefaultWorkers.
	Workers int
	// Renderer receives every frame; nil disables display.
	Renderer port.Renderer
}

// RunBatchOutput summarizes a finished batch.
type RunBatchOutput struct {
	BatchID   string
	Results   []TaskResult // in input order
	Succeeded int
	Failed    int
	Final     download.Frame
}

// RunBatchOptions configures a RunBatchUseCase.
type RunBatchOptions struct {
	// Placeholder replaces empty URL path segments. Defaults to "image".
	Placeholder string
	// MinFreeSpace triggers a warning when the destination has less free space.
	MinFreeSpace uint64
	// DiskSpace probes free space; nil skips the check.
	DiskSpace port.DiskSpaceProbe
}

// RunBatchUseCase downloads a list of URLs with a bounded worker pool.
type RunBatchUseCase struct {
	downloader *DownloadFileUseCase
	fs         port.FileSystem
	opts       RunBatchOptions
}

// NewRunBatchUseCase creates a new RunBatchUseCase.
func NewRunBatchUseCase(downloader *DownloadFileUseCase, fs port.FileSystem, opts RunBatchOptions) *RunBatchUseCase {
	if opts.Placeholder == "" {
		opts.Placeholder = download.DefaultPlaceholder
	}
	return &RunBatchUseCase{downloader: downloader, fs: fs, opts: opts}
}

// Execute runs every URL to completion. Failed tasks do not cancel their
// siblings; once all tasks have terminated the first failure is returned
// alongside the full output.
func (uc *RunBatchUseCase) Execute(ctx context.Context, input RunBatchInput) (*RunBatchOutput, error) {
	workers := input.Workers
	switch {
	case workers < 0:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	case workers == 0:
		workers = DefaultWorkers
	}

	urls := make([]string, len(input.URLs))
	for i, raw := range input.URLs {
		urls[i] = strings.TrimSpace(raw)
		if urls[i] == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyURL, i+1)
		}
	}

	batchID := uuid.NewString()
	ctx = logging.WithBatchID(ctx, batchID)
	log := logging.FromContext(ctx)

	log.Info().
		Int("urls", len(urls)).
		Int("workers", workers).
		Str("destination", input.DestinationDir).
		Msg("starting batch")

	uc.checkDiskSpace(ctx, input.DestinationDir)

	batch := NewBatch(len(urls), input.DestinationDir, uc.fs, input.Renderer, uc.opts.Placeholder)
	batch.Start()

	results := make([]TaskResult, len(urls))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, url := range urls {
		task := download.Task{URL: url, DestinationDir: input.DestinationDir}
		g.Go(func() error {
			result, err := uc.downloader.Execute(ctx, batch, task)
			results[i] = result
			return err
		})
	}
	firstErr := g.Wait()

	output := &RunBatchOutput{
		BatchID: batchID,
		Results: results,
		Final:   batch.Snapshot(),
	}
	for _, r := range results {
		if r.Err != nil {
			output.Failed++
		} else {
			output.Succeeded++
		}
	}

	log.Info().
		Int("succeeded", output.Succeeded).
		Int("failed", output.Failed).
		Msg("batch finished")

	return output, firstErr
}

// checkDiskSpace warns when the filesystem that will hold dir is low on space.
func (uc *RunBatchUseCase) checkDiskSpace(ctx context.Context, dir string) {
	if uc.opts.DiskSpace == nil || uc.opts.MinFreeSpace == 0 {
		return
	}
	log := logging.FromContext(ctx)

	probe := uc.nearestExisting(ctx, dir)
	free, err := uc.opts.DiskSpace.FreeBytes(ctx, probe)
	if err != nil {
		log.Debug().Err(err).Str("path", probe).Msg("disk space check failed")
		return
	}

	if free < uc.opts.MinFreeSpace {
		log.Warn().
			Str("path", probe).
			Str("free", humanize.Bytes(free)).
			Str("required", humanize.Bytes(uc.opts.MinFreeSpace)).
			Msg("low disk space at destination")
	}
}

func (uc *RunBatchUseCase) nearestExisting(ctx context.Context, dir string) string {
	current := filepath.Clean(dir)
	for {
		if ok, err := uc.fs.Exists(ctx, current); err == nil && ok {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
