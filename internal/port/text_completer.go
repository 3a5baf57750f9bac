package port

import "context"

// CompletionInput carries one prompt for a text-generation provider.
type CompletionInput struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// CompletionOutput contains the raw text returned by a provider.
type CompletionOutput struct {
	Text      string
	ModelUsed string
}

// TextCompleter abstracts a remote text-generation service.
// Implementations return either a complete response or an error, never partial text.
type TextCompleter interface {
	Complete(ctx context.Context, input CompletionInput) (*CompletionOutput, error)
}
