package port

import (
	"context"

	"budgetgrader/internal/domain"
)

// Extractor builds a CanonicalRecord from a decoded document.
type Extractor interface {
	Extract(ctx context.Context, doc *domain.DecodedDocument) (*domain.CanonicalRecord, error)
}

// Grader validates a CanonicalRecord and produces a ScoreReport.
// The rule-based validator and the remote grading service both implement it.
type Grader interface {
	Grade(ctx context.Context, record *domain.CanonicalRecord, opts domain.GradingOptions) (*domain.ScoreReport, error)
}
