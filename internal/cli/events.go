package cli

import (
	"context"

	"github.com/bnema/batchdl/internal/application/port"
	"github.com/bnema/batchdl/internal/logging"
)

// EventLogger records download lifecycle events in the debug log.
type EventLogger struct{}

// NewEventLogger creates an EventLogger.
func NewEventLogger() *EventLogger {
	return &EventLogger{}
}

// OnDownloadEvent implements port.DownloadEventHandler.
func (*EventLogger) OnDownloadEvent(ctx context.Context, event port.DownloadEvent) {
	log := logging.FromContext(ctx)

	e := log.Debug().
		Str("event", event.Type.String()).
		Str("file", event.Filename)
	if event.Destination != "" {
		e = e.Str("path", event.Destination)
	}
	if event.Type != port.DownloadEventStarted {
		e = e.Int64("bytes", event.Bytes)
	}
	if event.Error != nil {
		e = e.Err(event.Error)
	}
	e.Msg("download event")
}

var _ port.DownloadEventHandler = (*EventLogger)(nil)
