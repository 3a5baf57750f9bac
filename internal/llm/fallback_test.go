package llm_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"budgetgrader/internal/llm"
	"budgetgrader/internal/port"
	"budgetgrader/mocks"
)

var testInput = port.CompletionInput{SystemPrompt: "system", UserPrompt: "user", MaxTokens: 100}

func completion(model string) *port.CompletionOutput {
	return &port.CompletionOutput{Text: `{"ok":true}`, ModelUsed: model}
}

func TestFallbackCompleter_FirstSucceeds(t *testing.T) {
	c1 := new(mocks.MockTextCompleter)
	c2 := new(mocks.MockTextCompleter)
	c1.On("Complete", mock.Anything, testInput).Return(completion("claude"), nil)

	fc := llm.NewFallbackCompleter([]port.TextCompleter{c1, c2}, []string{"claude", "openai"})

	out, err := fc.Complete(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "claude", out.ModelUsed)
	c2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackCompleter_FirstFails_SecondSucceeds(t *testing.T) {
	c1 := new(mocks.MockTextCompleter)
	c2 := new(mocks.MockTextCompleter)
	c1.On("Complete", mock.Anything, testInput).Return(nil, errors.New("generic error"))
	c2.On("Complete", mock.Anything, testInput).Return(completion("openai"), nil)

	fc := llm.NewFallbackCompleter([]port.TextCompleter{c1, c2}, []string{"claude", "openai"})

	out, err := fc.Complete(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "openai", out.ModelUsed)
}

func TestFallbackCompleter_RateLimitedCircuitSkipsProvider(t *testing.T) {
	c1 := new(mocks.MockTextCompleter)
	c2 := new(mocks.MockTextCompleter)
	c1.On("Complete", mock.Anything, testInput).Return(nil, llm.NewRateLimitError("claude", errors.New("429"), time.Minute)).Once()
	c2.On("Complete", mock.Anything, testInput).Return(completion("gemini"), nil)

	fc := llm.NewFallbackCompleter([]port.TextCompleter{c1, c2}, []string{"claude", "gemini"})

	_, err := fc.Complete(context.Background(), testInput)
	require.NoError(t, err)

	// Second call: claude's circuit is open and must not be tried.
	out, err := fc.Complete(context.Background(), testInput)
	require.NoError(t, err)
	assert.Equal(t, "gemini", out.ModelUsed)
	c1.AssertNumberOfCalls(t, "Complete", 1)
	c2.AssertNumberOfCalls(t, "Complete", 2)
}

func TestFallbackCompleter_AllRateLimited(t *testing.T) {
	c1 := new(mocks.MockTextCompleter)
	c2 := new(mocks.MockTextCompleter)
	c1.On("Complete", mock.Anything, testInput).Return(nil, llm.NewRateLimitError("claude", errors.New("429"), time.Minute))
	c2.On("Complete", mock.Anything, testInput).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 30*time.Second))

	fc := llm.NewFallbackCompleter([]port.TextCompleter{c1, c2}, []string{"claude", "gemini"})

	out, err := fc.Complete(context.Background(), testInput)

	assert.Nil(t, out)
	var rlErr *llm.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
	assert.LessOrEqual(t, rlErr.RetryAfter, 30*time.Second)

	// Both circuits open: nothing is called again.
	_, err = fc.Complete(context.Background(), testInput)
	require.ErrorAs(t, err, &rlErr)
	c1.AssertNumberOfCalls(t, "Complete", 1)
	c2.AssertNumberOfCalls(t, "Complete", 1)
}

func TestFallbackCompleter_MixedFailuresReturnsLastError(t *testing.T) {
	c1 := new(mocks.MockTextCompleter)
	c2 := new(mocks.MockTextCompleter)
	c1.On("Complete", mock.Anything, testInput).Return(nil, llm.NewRateLimitError("claude", errors.New("429"), time.Minute))
	c2.On("Complete", mock.Anything, testInput).Return(nil, errors.New("bad gateway"))

	fc := llm.NewFallbackCompleter([]port.TextCompleter{c1, c2}, []string{"claude", "gemini"})

	_, err := fc.Complete(context.Background(), testInput)

	require.Error(t, err)
	var rlErr *llm.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestFallbackCompleter_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c1 := new(mocks.MockTextCompleter)
	c2 := new(mocks.MockTextCompleter)
	c1.On("Complete", mock.Anything, testInput).Return(nil, context.Canceled)

	fc := llm.NewFallbackCompleter([]port.TextCompleter{c1, c2}, []string{"claude", "gemini"})

	_, err := fc.Complete(ctx, testInput)

	assert.ErrorIs(t, err, context.Canceled)
	c2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackCompleter_ConcurrentUse(t *testing.T) {
	c1 := new(mocks.MockTextCompleter)
	c2 := new(mocks.MockTextCompleter)
	c1.On("Complete", mock.Anything, testInput).Return(nil, llm.NewRateLimitError("claude", errors.New("429"), time.Minute))
	c2.On("Complete", mock.Anything, testInput).Return(completion("openai"), nil)

	fc := llm.NewFallbackCompleter([]port.TextCompleter{c1, c2}, []string{"claude", "openai"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := fc.Complete(context.Background(), testInput)
			assert.NoError(t, err)
			assert.Equal(t, "openai", out.ModelUsed)
		}()
	}
	wg.Wait()
}
