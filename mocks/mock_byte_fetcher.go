package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filegate/internal/port"
)

// MockByteFetcher is a mock implementation of port.ByteFetcher.
type MockByteFetcher struct {
	mock.Mock
}

func (m *MockByteFetcher) Fetch(ctx context.Context, url string) (*port.FetchResult, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.FetchResult), args.Error(1)
}

// MockURLResolver is a mock implementation of port.URLResolver.
type MockURLResolver struct {
	mock.Mock
}

func (m *MockURLResolver) PublicURL(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}
