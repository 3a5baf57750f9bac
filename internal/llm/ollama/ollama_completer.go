// Package ollama implements port.TextCompleter on a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"budgetgrader/internal/config"
	"budgetgrader/internal/llm"
	"budgetgrader/internal/port"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3"
)

// Completer implements port.TextCompleter using Ollama's /api/generate endpoint.
type Completer struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewCompleter creates an Ollama completer. BaseURL is the server root.
func NewCompleter(cfg *config.ParserProviderConfig) *Completer {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Completer{
		endpoint: strings.TrimRight(base, "/") + "/api/generate",
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response   string `json:"response"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
	Error      string `json:"error"`
}

func (c *Completer) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	options := map[string]any{"temperature": 0.1}
	if input.MaxTokens > 0 {
		options["num_predict"] = input.MaxTokens
	}
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		System:  input.SystemPrompt,
		Prompt:  input.UserPrompt,
		Stream:  false,
		Format:  "json",
		Options: options,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP POST %s: %w", c.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, c.endpoint, llm.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, llm.NewRateLimitError("ollama", baseErr, llm.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
		}
		return nil, baseErr
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", parsed.Error)
	}
	if parsed.DoneReason == "length" {
		return nil, fmt.Errorf("output truncated (done_reason: length)")
	}

	return &port.CompletionOutput{Text: parsed.Response, ModelUsed: c.model}, nil
}
