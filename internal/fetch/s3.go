package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"filegate/internal/domain"
	"filegate/internal/port"
)

// S3Fetcher downloads s3://bucket/key URLs through object storage.
type S3Fetcher struct {
	storage       port.ObjectStorage
	maxSize       int64
	presignExpiry int64
}

// NewS3Fetcher wraps storage. presignExpiry is in seconds.
func NewS3Fetcher(storage port.ObjectStorage, maxSize, presignExpiry int64) *S3Fetcher {
	if presignExpiry <= 0 {
		presignExpiry = 3600
	}
	return &S3Fetcher{storage: storage, maxSize: maxSize, presignExpiry: presignExpiry}
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 url must be s3://bucket/key", domain.ErrFetchFailed)
	}
	return u.Host, key, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, raw string) (*port.FetchResult, error) {
	bucket, key, err := ParseS3URL(raw)
	if err != nil {
		return nil, err
	}
	out, err := f.storage.Download(ctx, bucket, key, f.maxSize)
	if err != nil {
		if errors.Is(err, domain.ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	return &port.FetchResult{Data: out.Data, ContentType: out.ContentType}, nil
}

// PublicURL presigns the object so a vision provider can fetch it directly.
func (f *S3Fetcher) PublicURL(ctx context.Context, raw string) (string, error) {
	bucket, key, err := ParseS3URL(raw)
	if err != nil {
		return "", err
	}
	return f.storage.GetPresignedURL(ctx, bucket, key, f.presignExpiry)
}
