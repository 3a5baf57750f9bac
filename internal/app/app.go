// Package app wires the grading pipeline from configuration. Both the HTTP
// server and the command-line grader build their service through it.
package app

import (
	"fmt"
	"log"

	"budgetgrader/internal/config"
	"budgetgrader/internal/decoder"
	"budgetgrader/internal/domain"
	"budgetgrader/internal/extractor"
	"budgetgrader/internal/llm/providers"
	"budgetgrader/internal/port"
	"budgetgrader/internal/remote"
	"budgetgrader/internal/service"
	"budgetgrader/internal/validator"
)

// Pipeline is the assembled grading service plus what the health checks report.
type Pipeline struct {
	Service       service.GradingService
	Batch         *service.BatchGrader
	Mode          domain.GradingMode
	RemoteEnabled bool
}

// Build assembles decoder, extractors and grader according to cfg.
// A remote extractor is attached whenever a provider is configured; the
// remote grader replaces the rule engine only in remote mode.
func Build(cfg *config.Config) (*Pipeline, error) {
	completer, err := providers.Build(&cfg.Parser)
	if err != nil {
		return nil, fmt.Errorf("building remote provider chain: %w", err)
	}

	var remoteExtractor port.Extractor
	if completer != nil {
		remoteExtractor = remote.NewExtractor(completer, cfg.Parser.MaxTokens)
	}

	var grader port.Grader
	switch cfg.Grading.Mode {
	case domain.GradingModeRemote:
		if completer == nil {
			return nil, fmt.Errorf("grading mode %q requires a configured provider", cfg.Grading.Mode)
		}
		grader = remote.NewGrader(completer, cfg.Parser.MaxTokens)
	default:
		grader = validator.NewEngine()
	}

	log.Printf("app.Build: mode=%s remote_extraction=%t", cfg.Grading.Mode, completer != nil)

	svc := service.NewGradingService(
		decoder.New(),
		extractor.New(),
		remoteExtractor,
		grader,
		&cfg.Grading,
		&cfg.Upload,
	)
	return &Pipeline{
		Service:       svc,
		Batch:         service.NewBatchGrader(svc, cfg.Grading.BatchConcurrency),
		Mode:          cfg.Grading.Mode,
		RemoteEnabled: completer != nil,
	}, nil
}
