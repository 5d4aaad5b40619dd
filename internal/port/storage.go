package port

import "context"

// DownloadOutput contains an object's bytes and stored content type.
type DownloadOutput struct {
	Data        []byte
	ContentType string
}

// ObjectStorage abstracts cloud object storage reads.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, key string, maxSize int64) (*DownloadOutput, error)
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
