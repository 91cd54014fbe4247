package port

import (
	"context"
	"io"
)

// DownloadEventType represents the type of download event.
type DownloadEventType int

const (
	// DownloadEventStarted indicates a download has claimed its filename.
	DownloadEventStarted DownloadEventType = iota
	// DownloadEventFinished indicates a download completed successfully.
	DownloadEventFinished
	// DownloadEventFailed indicates a download failed.
	DownloadEventFailed
)

func (t DownloadEventType) String() string {
	switch t {
	case DownloadEventStarted:
		return "started"
	case DownloadEventFinished:
		return "finished"
	case DownloadEventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DownloadEvent contains information about a download event.
type DownloadEvent struct {
	Type        DownloadEventType
	URL         string
	Filename    string // Empty if the task failed before claiming a name
	Destination string
	Bytes       int64
	Error       error // Set when Type is DownloadEventFailed
}

// DownloadEventHandler receives download event notifications.
// Handlers are called outside the progress lock and may be called concurrently.
type DownloadEventHandler interface {
	OnDownloadEvent(ctx context.Context, event DownloadEvent)
}

// Fetcher opens a streaming read of a remote resource.
type Fetcher interface {
	// Fetch returns the response body and the declared length, or 0 when
	// the length is unknown. The caller closes the body.
	Fetch(ctx context.Context, url string) (body io.ReadCloser, total int64, err error)
}
