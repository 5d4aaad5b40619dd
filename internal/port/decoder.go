package port

import (
	"context"

	"filegate/internal/domain"
)

// DecodeOutput is what a format decoder extracted from a file.
type DecodeOutput struct {
	Content  string
	Table    *domain.StructuredTable
	Metadata *domain.RecordMetadata
}

// Decoder converts file bytes of one format into text.
type Decoder interface {
	Decode(ctx context.Context, data []byte, filename string) (*DecodeOutput, error)
}
