package render

import (
	"github.com/rs/zerolog"

	"github.com/bnema/batchdl/internal/domain/download"
)

// LogRenderer writes frames as append-only structured events. Frames that
// only move byte counts are logged at debug level; frames that change the
// set of active files or the completion count are logged at info.
type LogRenderer struct {
	logger    zerolog.Logger
	completed int
	names     []string
}

// NewLogRenderer creates a LogRenderer.
func NewLogRenderer(logger zerolog.Logger) *LogRenderer {
	return &LogRenderer{logger: logger, completed: -1}
}

// Render implements port.Renderer.
func (r *LogRenderer) Render(frame download.Frame) {
	level := zerolog.DebugLevel
	if r.changed(frame) {
		level = zerolog.InfoLevel
	}

	active := zerolog.Arr()
	for _, e := range frame.Entries {
		entry := zerolog.Dict().Str("file", e.Name).Int64("done", e.Done)
		if e.Known() {
			entry = entry.Int64("total", e.Total)
		} else {
			entry = entry.Str("total", UnknownSize)
		}
		active = active.Dict(entry)
	}

	r.logger.WithLevel(level).
		Int("completed", frame.Completed).
		Int("total", frame.Total).
		Array("active", active).
		Msg("progress")

	if frame.Finished() {
		r.logger.Info().Int("total", frame.Total).Msg("batch complete")
	}
}

func (r *LogRenderer) changed(frame download.Frame) bool {
	changed := frame.Completed != r.completed || len(frame.Entries) != len(r.names)
	if !changed {
		for i, e := range frame.Entries {
			if e.Name != r.names[i] {
				changed = true
				break
			}
		}
	}

	if changed {
		r.completed = frame.Completed
		r.names = r.names[:0]
		for _, e := range frame.Entries {
			r.names = append(r.names, e.Name)
		}
	}
	return changed
}

// Close implements io.Closer.
func (*LogRenderer) Close() error {
	return nil
}
