package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"filegate/internal/domain"
	"filegate/internal/port"
)

// Router dispatches fetches by URL scheme. s3 support is optional.
type Router struct {
	http port.ByteFetcher
	s3   *S3Fetcher
}

// NewRouter creates a Router. s3 may be nil when object storage is disabled.
func NewRouter(httpFetcher port.ByteFetcher, s3 *S3Fetcher) *Router {
	return &Router{http: httpFetcher, s3: s3}
}

func (r *Router) Fetch(ctx context.Context, raw string) (*port.FetchResult, error) {
	switch scheme(raw) {
	case "http", "https":
		return r.http.Fetch(ctx, raw)
	case "s3":
		if r.s3 == nil {
			return nil, fmt.Errorf("%w: s3 storage is not configured", domain.ErrUnsupportedScheme)
		}
		return r.s3.Fetch(ctx, raw)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, scheme(raw))
	}
}

// PublicURL returns a URL reachable by external services. http(s) URLs are
// returned unchanged.
func (r *Router) PublicURL(ctx context.Context, raw string) (string, error) {
	switch scheme(raw) {
	case "http", "https":
		return raw, nil
	case "s3":
		if r.s3 == nil {
			return "", fmt.Errorf("%w: s3 storage is not configured", domain.ErrUnsupportedScheme)
		}
		return r.s3.PublicURL(ctx, raw)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, scheme(raw))
	}
}

func scheme(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
