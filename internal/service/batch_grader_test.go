package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/service"
	"budgetgrader/mocks"
)

func TestBatchGrader_PreservesOrderAndErrors(t *testing.T) {
	svc := new(mocks.MockGradingService)
	svc.On("Grade", mock.Anything, mock.MatchedBy(func(in service.GradeInput) bool { return in.FileName == "a.docx" })).
		Return(&service.GradeResult{FileName: "a.docx"}, nil)
	svc.On("Grade", mock.Anything, mock.MatchedBy(func(in service.GradeInput) bool { return in.FileName == "b.txt" })).
		Return(nil, domain.ErrUnsupportedFileType)
	svc.On("Grade", mock.Anything, mock.MatchedBy(func(in service.GradeInput) bool { return in.FileName == "c.xlsx" })).
		Return(&service.GradeResult{FileName: "c.xlsx"}, nil)

	items := service.NewBatchGrader(svc, 2).GradeAll(context.Background(), []service.GradeInput{
		{FileName: "a.docx"}, {FileName: "b.txt"}, {FileName: "c.xlsx"},
	})

	require.Len(t, items, 3)
	assert.Equal(t, "a.docx", items[0].Result.FileName)
	assert.Nil(t, items[0].Err)
	assert.Equal(t, "b.txt", items[1].FileName)
	assert.ErrorIs(t, items[1].Err, domain.ErrUnsupportedFileType)
	assert.Nil(t, items[1].Result)
	assert.Equal(t, "c.xlsx", items[2].Result.FileName)
}

func TestBatchGrader_BoundsConcurrency(t *testing.T) {
	svc := new(mocks.MockGradingService)
	var inFlight, peak int32
	svc.On("Grade", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}).Return(&service.GradeResult{}, nil)

	inputs := make([]service.GradeInput, 8)
	items := service.NewBatchGrader(svc, 3).GradeAll(context.Background(), inputs)

	assert.Len(t, items, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	svc.AssertNumberOfCalls(t, "Grade", 8)
}

func TestBatchGrader_CancelledContext(t *testing.T) {
	svc := new(mocks.MockGradingService)
	svc.On("Grade", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := service.NewBatchGrader(svc, 0).GradeAll(ctx, []service.GradeInput{{FileName: "a"}, {FileName: "b"}})

	for _, item := range items {
		assert.ErrorIs(t, item.Err, context.Canceled)
	}
}
