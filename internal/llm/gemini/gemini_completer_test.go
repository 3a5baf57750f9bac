package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetgrader/internal/config"
	"budgetgrader/internal/llm"
	"budgetgrader/internal/llm/gemini"
	"budgetgrader/internal/port"
)

func newTestCompleter(serverURL string) *gemini.Completer {
	return gemini.NewCompleter(&config.ParserProviderConfig{
		Provider:    "gemini",
		APIKey:      "g-key",
		BaseURL:     serverURL,
		TimeoutSecs: 5,
	})
}

func TestGeminiCompleter_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		genCfg := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genCfg["responseMimeType"])
		system := reqBody["systemInstruction"].(map[string]interface{})
		assert.Equal(t, "sys", system["parts"].([]interface{})[0].(map[string]interface{})["text"])

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	out, err := newTestCompleter(server.URL).Complete(context.Background(), port.CompletionInput{
		SystemPrompt: "sys", UserPrompt: "usr",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out.Text)
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
}

func TestGeminiCompleter_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), port.CompletionInput{})

	assert.ErrorContains(t, err, "no candidates")
}

func TestGeminiCompleter_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), port.CompletionInput{})

	var rlErr *llm.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "gemini", rlErr.Provider)
}
