package port

import "context"

// FetchResult holds downloaded bytes and the content type reported by the source.
type FetchResult struct {
	Data        []byte
	ContentType string
}

// ByteFetcher downloads the full contents of a URL into memory.
type ByteFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// URLResolver turns a URL into one an external service can fetch on its own,
// for example by presigning an object-storage location.
type URLResolver interface {
	PublicURL(ctx context.Context, url string) (string, error)
}
