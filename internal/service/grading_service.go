package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"budgetgrader/internal/config"
	"budgetgrader/internal/domain"
	"budgetgrader/internal/port"
)

// ExtractInput is the DTO for extraction requests.
type ExtractInput struct {
	FileName string
	Content  []byte
}

// GradeInput is the DTO for grading requests. A nil Options uses the configured defaults.
type GradeInput struct {
	FileName string
	Content  []byte
	Options  *domain.GradingOptions
}

// GradeResult is one graded worksheet.
type GradeResult struct {
	ID       uuid.UUID               `json:"id"`
	FileName string                  `json:"file_name"`
	GradedAt time.Time               `json:"graded_at"`
	Mode     domain.GradingMode      `json:"mode"`
	Options  domain.GradingOptions   `json:"options"`
	Record   *domain.CanonicalRecord `json:"record"`
	Report   *domain.ScoreReport     `json:"report"`
}

// GradingService defines the worksheet grading contract.
type GradingService interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.CanonicalRecord, error)
	Grade(ctx context.Context, input GradeInput) (*GradeResult, error)
	DefaultOptions() domain.GradingOptions
}

type gradingService struct {
	decoder         port.DocumentDecoder
	extractor       port.Extractor
	remoteExtractor port.Extractor
	grader          port.Grader
	gradingCfg      *config.GradingConfig
	uploadCfg       *config.UploadConfig
}

// NewGradingService creates a new GradingService implementation.
// remoteExtractor may be nil, in which case text-only documents fail with
// domain.ErrExternalExtractionRequired.
func NewGradingService(
	decoder port.DocumentDecoder,
	extractor port.Extractor,
	remoteExtractor port.Extractor,
	grader port.Grader,
	gradingCfg *config.GradingConfig,
	uploadCfg *config.UploadConfig,
) GradingService {
	return &gradingService{
		decoder:         decoder,
		extractor:       extractor,
		remoteExtractor: remoteExtractor,
		grader:          grader,
		gradingCfg:      gradingCfg,
		uploadCfg:       uploadCfg,
	}
}

func (s *gradingService) DefaultOptions() domain.GradingOptions {
	return s.gradingCfg.Options()
}

func (s *gradingService) Extract(ctx context.Context, input ExtractInput) (*domain.CanonicalRecord, error) {
	if maxBytes := s.uploadCfg.MaxBytes(); maxBytes > 0 && int64(len(input.Content)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	doc, err := s.decoder.Decode(ctx, port.DecodeInput{FileName: input.FileName, Content: input.Content})
	if err != nil {
		return nil, err
	}

	rec, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", input.FileName, err)
	}
	if !rec.NeedsExternalExtraction {
		return rec, nil
	}

	if s.remoteExtractor == nil {
		return nil, domain.ErrExternalExtractionRequired
	}
	log.Printf("gradingService: %s has no tables, using remote extraction", input.FileName)
	return s.remoteExtractor.Extract(ctx, doc)
}

func (s *gradingService) Grade(ctx context.Context, input GradeInput) (*GradeResult, error) {
	opts := s.DefaultOptions()
	if input.Options != nil {
		opts = *input.Options
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.Extract(ctx, ExtractInput{FileName: input.FileName, Content: input.Content})
	if err != nil {
		return nil, err
	}
	if !rec.HasGradableData() {
		return nil, domain.ErrNoGradableData
	}

	report, err := s.grader.Grade(ctx, rec, opts)
	if err != nil {
		return nil, fmt.Errorf("grading %s: %w", input.FileName, err)
	}

	result := &GradeResult{
		ID:       uuid.New(),
		FileName: input.FileName,
		GradedAt: time.Now().UTC(),
		Mode:     s.gradingCfg.Mode,
		Options:  opts,
		Record:   rec,
		Report:   report,
	}
	log.Printf("gradingService: graded %s (id=%s, mode=%s): %d/%d",
		input.FileName, result.ID, result.Mode, report.CorrectCount, report.TotalCalculations)
	return result, nil
}
