package download

import (
	"errors"
	"fmt"
)

var (
	// ErrResolutionExhausted is returned when no free filename can be found.
	ErrResolutionExhausted = errors.New("no free filename available")
	// ErrLengthExceeded is returned when a body is longer than its declared length.
	ErrLengthExceeded = errors.New("body exceeds declared length")
	// ErrUnknownEntry is returned when progress is reported for an unclaimed filename.
	ErrUnknownEntry = errors.New("filename is not claimed")
)

// ErrorKind classifies why a download task failed.
type ErrorKind int

const (
	// KindUnknown is the zero value, used for errors that are not DownloadErrors.
	KindUnknown ErrorKind = iota
	// KindNetwork covers connection, status and read failures.
	KindNetwork
	// KindFilesystem covers directory and file create or write failures.
	KindFilesystem
	// KindResolutionExhausted means no unique filename could be claimed.
	KindResolutionExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindFilesystem:
		return "filesystem"
	case KindResolutionExhausted:
		return "resolution-exhausted"
	default:
		return "unknown"
	}
}

// DownloadError reports the failure of a single task.
type DownloadError struct {
	URL  string
	Kind ErrorKind
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %s error: %v", e.URL, e.Kind, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps err as a network failure of url.
func NewNetworkError(url string, err error) *DownloadError {
	return &DownloadError{URL: url, Kind: KindNetwork, Err: err}
}

// NewFilesystemError wraps err as a filesystem failure of url.
func NewFilesystemError(url string, err error) *DownloadError {
	return &DownloadError{URL: url, Kind: KindFilesystem, Err: err}
}

// KindOf returns the ErrorKind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		return dlErr.Kind
	}
	return KindUnknown
}
