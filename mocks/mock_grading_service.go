package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/service"
)

// MockGradingService is a mock implementation of service.GradingService.
type MockGradingService struct {
	mock.Mock
}

func (m *MockGradingService) Extract(ctx context.Context, input service.ExtractInput) (*domain.CanonicalRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CanonicalRecord), args.Error(1)
}

func (m *MockGradingService) Grade(ctx context.Context, input service.GradeInput) (*service.GradeResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GradeResult), args.Error(1)
}

func (m *MockGradingService) DefaultOptions() domain.GradingOptions {
	args := m.Called()
	return args.Get(0).(domain.GradingOptions)
}
