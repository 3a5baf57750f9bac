// Package claude implements port.TextCompleter on the Anthropic Messages API.
package claude

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"budgetgrader/internal/config"
	"budgetgrader/internal/llm"
	"budgetgrader/internal/port"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 4000
)

// Completer implements port.TextCompleter using the Anthropic SDK.
type Completer struct {
	client anthropic.Client
	model  string
}

// NewCompleter creates a Claude-based completer from a provider config.
// A non-empty BaseURL redirects requests, which tests use to point at httptest servers.
func NewCompleter(cfg *config.ParserProviderConfig) *Completer {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Completer{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (c *Completer) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(0.1),
		System: []anthropic.TextBlockParam{
			{Text: input.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input.UserPrompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			var retryAfter time.Duration
			if apiErr.Response != nil {
				retryAfter = llm.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"), time.Now())
			}
			return nil, llm.NewRateLimitError("claude", err, retryAfter)
		}
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	if string(message.StopReason) == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded %d output tokens", maxTokens)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("claude.Completer: response size=%d tokens_in=%d tokens_out=%d",
				len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return &port.CompletionOutput{Text: block.Text, ModelUsed: c.model}, nil
		}
	}
	return nil, fmt.Errorf("no text content in anthropic response")
}
