// Package fetch downloads file bytes for a URL, dispatching on its scheme.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/port"
)

// HTTPFetcher downloads http and https URLs.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	maxSize   int64
	logger    *slog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher from download settings.
func NewHTTPFetcher(cfg config.DownloadConfig, logger *slog.Logger) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
		maxSize:   cfg.MaxSizeBytes(),
		logger:    logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*port.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", domain.ErrFetchFailed, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d %s", domain.ErrFetchFailed, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if f.maxSize > 0 && resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, resp.ContentLength, f.maxSize)
	}

	var body io.Reader = resp.Body
	if f.maxSize > 0 {
		body = io.LimitReader(resp.Body, f.maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrFetchFailed, err)
	}
	if f.maxSize > 0 && int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", domain.ErrFileTooLarge, f.maxSize)
	}

	f.logger.Debug("fetch.http.done",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &port.FetchResult{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}
