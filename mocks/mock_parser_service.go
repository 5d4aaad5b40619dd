package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filegate/internal/domain"
)

// MockParserService is a mock implementation of service.ParserService.
type MockParserService struct {
	mock.Mock
}

func (m *MockParserService) ParseOne(ctx context.Context, url string) *domain.ParsedRecord {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.ParsedRecord)
}

// ParseMany replays any records passed through the BatchOptions progress
// callback before returning, so handlers that stream progress can be tested.
func (m *MockParserService) ParseMany(ctx context.Context, urls []string, opts domain.BatchOptions) ([]*domain.ParsedRecord, error) {
	args := m.Called(ctx, urls, opts)
	var recs []*domain.ParsedRecord
	if args.Get(0) != nil {
		recs = args.Get(0).([]*domain.ParsedRecord)
	}
	if opts.OnProgress != nil {
		for i, rec := range recs {
			opts.OnProgress(domain.BatchProgress{Completed: i + 1, Total: len(urls), Record: rec})
		}
	}
	return recs, args.Error(1)
}

func (m *MockParserService) SupportedFormats() []domain.SupportedFormat {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.SupportedFormat)
}

func (m *MockParserService) AIEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}
