package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	tempFilePattern = ".download-*"
	retryBaseDelay  = 500 * time.Millisecond
)

var ErrorURLNotFound = errors.New("URL not found")

// Downloader fetches remote content with retries.
type Downloader struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewDownloader creates a downloader with the given per-request timeout
// and number of retries after the first attempt.
func NewDownloader(timeout time.Duration, maxRetries int) (*Downloader, error) {
	c, err := GetHTTPClient(timeout)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP client: %w", err)
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Downloader{client: c, maxRetries: maxRetries, baseDelay: retryBaseDelay}, nil
}

// Fetch returns the body of url. Not-found responses are not retried.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying download", "url", url, "attempt", attempt)
			if err := Backoff(ctx, d.baseDelay, attempt); err != nil {
				return nil, err
			}
		}

		b, err := d.fetchOnce(ctx, url)
		if err == nil {
			return b, nil
		}
		if errors.Is(err, ErrorURLNotFound) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("download failed after %d attempts: %w", d.maxRetries+1, lastErr)
}

// Backoff waits base doubled for every attempt after the first, or until
// ctx is done.
func Backoff(ctx context.Context, base time.Duration, attempt int) error {
	if attempt < 1 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(base * time.Duration(1<<(attempt-1))):
		return nil
	}
}

// Download saves the body of url to path. The file is written to a
// temporary name first so a failed download never leaves a partial file.
func (d *Downloader) Download(ctx context.Context, url, path string) error {
	b, err := d.Fetch(ctx, url)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, b)
}

func (d *Downloader) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}
	req.Header.Set("User-Agent", clientAgent)

	resp, err := d.client.Do(req) //nolint:gosec // URLs come from scraper output
	if err != nil {
		return nil, fmt.Errorf("error executing HTTP Get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return b, nil
}

// WriteFileAtomic writes b to a temp file in the target dir and renames it.
func WriteFileAtomic(path string, b []byte) (retErr error) {
	out, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if retErr != nil {
			os.Remove(out.Name())
		}
	}()

	if _, err := out.Write(b); err != nil {
		out.Close()
		return fmt.Errorf("error saving downloaded content to file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(out.Name(), path); err != nil {
		return fmt.Errorf("moving file into place: %w", err)
	}
	return nil
}
