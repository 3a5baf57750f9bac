// Package providers registers the built-in TextCompleter implementations
// with the llm factory.
package providers

import (
	"sync"

	"budgetgrader/internal/config"
	"budgetgrader/internal/llm"
	"budgetgrader/internal/llm/claude"
	"budgetgrader/internal/llm/gemini"
	"budgetgrader/internal/llm/ollama"
	"budgetgrader/internal/llm/openai"
	"budgetgrader/internal/port"
)

var once sync.Once

// RegisterAll registers claude, openai, gemini and ollama. Safe to call repeatedly.
func RegisterAll() {
	once.Do(func() {
		llm.RegisterProvider("claude", func(cfg *config.ParserProviderConfig) (port.TextCompleter, error) {
			return claude.NewCompleter(cfg), nil
		})
		llm.RegisterProvider("anthropic", func(cfg *config.ParserProviderConfig) (port.TextCompleter, error) {
			return claude.NewCompleter(cfg), nil
		})
		llm.RegisterProvider("openai", func(cfg *config.ParserProviderConfig) (port.TextCompleter, error) {
			return openai.NewCompleter(cfg), nil
		})
		llm.RegisterProvider("gemini", func(cfg *config.ParserProviderConfig) (port.TextCompleter, error) {
			return gemini.NewCompleter(cfg), nil
		})
		llm.RegisterProvider("ollama", func(cfg *config.ParserProviderConfig) (port.TextCompleter, error) {
			return ollama.NewCompleter(cfg), nil
		})
		llm.RegisterProvider("local", func(cfg *config.ParserProviderConfig) (port.TextCompleter, error) {
			return ollama.NewCompleter(cfg), nil
		})
	})
}

// Build registers the built-in providers and assembles the configured chain.
// It returns nil, nil when no provider is configured.
func Build(cfg *config.ParserConfig) (port.TextCompleter, error) {
	RegisterAll()
	return llm.Build(cfg)
}
