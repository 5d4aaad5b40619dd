package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filegate/internal/port"
)

// MockDecoder is a mock implementation of port.Decoder.
type MockDecoder struct {
	mock.Mock
}

func (m *MockDecoder) Decode(ctx context.Context, data []byte, filename string) (*port.DecodeOutput, error) {
	args := m.Called(ctx, data, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.DecodeOutput), args.Error(1)
}
