package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"budgetgrader/internal/domain"
)

// MockExtractor is a mock implementation of port.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, doc *domain.DecodedDocument) (*domain.CanonicalRecord, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CanonicalRecord), args.Error(1)
}

// MockGrader is a mock implementation of port.Grader.
type MockGrader struct {
	mock.Mock
}

func (m *MockGrader) Grade(ctx context.Context, rec *domain.CanonicalRecord, opts domain.GradingOptions) (*domain.ScoreReport, error) {
	args := m.Called(ctx, rec, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoreReport), args.Error(1)
}
