// Package httpfetch implements port.Fetcher over net/http.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnexpectedStatus is returned for responses outside the 2xx range.
var ErrUnexpectedStatus = errors.New("unexpected http status")

// Fetcher streams GET responses.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New creates a Fetcher. A nil client uses a clone of the default transport
// with compression disabled, so Content-Length matches the bytes on disk.
// No client timeout is set: a slow body only holds its own worker.
func New(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DisableCompression = true
		client = &http.Client{Transport: transport}
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch issues a GET for url. total is the declared Content-Length, or 0.
func (f *Fetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("%w: returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	return resp.Body, total, nil
}
