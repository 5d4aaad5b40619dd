package vision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxImageBytes bounds images re-downloaded for inline embedding.
const maxImageBytes = 20 << 20

// FetchImage downloads an image for vendors that need it inline and returns
// its bytes and MIME type. The MIME type comes from Content-Type with any
// parameters removed, or image/jpeg when the header is absent.
func FetchImage(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("creating image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetching image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, MimeType(resp.Header.Get("Content-Type")), nil
}

// MimeType strips parameters from a Content-Type value.
func MimeType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	mt = strings.TrimSpace(mt)
	if mt == "" {
		return "image/jpeg"
	}
	return mt
}
