package port

import (
	"context"

	"filegate/internal/domain"
)

// RecordParser turns one URL into a ParsedRecord. Implementations report
// failures inside the record rather than returning errors.
type RecordParser interface {
	ParseOne(ctx context.Context, url string) *domain.ParsedRecord
}
