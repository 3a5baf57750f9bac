package port

import (
	"context"

	"budgetgrader/internal/domain"
)

// DecodeInput carries an uploaded worksheet.
type DecodeInput struct {
	FileName string
	Content  []byte
}

// DocumentDecoder turns an uploaded file into tables and free text.
type DocumentDecoder interface {
	Decode(ctx context.Context, input DecodeInput) (*domain.DecodedDocument, error)
}
