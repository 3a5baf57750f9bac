package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/port"
)

// MockDocumentDecoder is a mock implementation of port.DocumentDecoder.
type MockDocumentDecoder struct {
	mock.Mock
}

func (m *MockDocumentDecoder) Decode(ctx context.Context, input port.DecodeInput) (*domain.DecodedDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DecodedDocument), args.Error(1)
}
