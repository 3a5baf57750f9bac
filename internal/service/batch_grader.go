package service

import (
	"context"
	"log"
	"sync"
)

// BatchItem is the outcome for one worksheet of a batch. Exactly one of
// Result and Err is set.
type BatchItem struct {
	FileName string
	Result   *GradeResult
	Err      error
}

// BatchGrader grades many worksheets with bounded concurrency.
type BatchGrader struct {
	svc         GradingService
	concurrency int
}

// NewBatchGrader creates a BatchGrader. Concurrency below 1 is treated as 1.
func NewBatchGrader(svc GradingService, concurrency int) *BatchGrader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchGrader{svc: svc, concurrency: concurrency}
}

// GradeAll grades every input and returns the outcomes in input order.
// Inputs not yet started when ctx is canceled fail with ctx.Err().
func (b *BatchGrader) GradeAll(ctx context.Context, inputs []GradeInput) []BatchItem {
	items := make([]BatchItem, len(inputs))
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	log.Printf("batchGrader: grading %d worksheets (concurrency=%d)", len(inputs), b.concurrency)

	for i := range inputs {
		items[i].FileName = inputs[i].FileName

		select {
		case <-ctx.Done():
			items[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := b.svc.Grade(ctx, inputs[i])
			if err != nil {
				log.Printf("batchGrader: %s failed: %v", inputs[i].FileName, err)
				items[i].Err = err
				return
			}
			items[i].Result = res
		}(i)
	}

	wg.Wait()
	return items
}
