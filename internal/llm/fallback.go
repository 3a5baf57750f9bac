package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"budgetgrader/internal/port"
)

// breaker remembers until when a provider is rate limited.
type breaker struct {
	mu           sync.Mutex
	blockedUntil time.Time
}

func (b *breaker) blocked(now time.Time) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.blockedUntil, now.Before(b.blockedUntil)
}

func (b *breaker) trip(until time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if until.After(b.blockedUntil) {
		b.blockedUntil = until
	}
}

type tier struct {
	name      string
	completer port.TextCompleter
	breaker   breaker
}

// FallbackCompleter asks each configured provider in order until one answers.
// A provider that returns a RateLimitError is skipped until its Retry-After
// elapses. Safe for concurrent use.
type FallbackCompleter struct {
	tiers []*tier
}

// NewFallbackCompleter pairs completers with their names, in priority order.
func NewFallbackCompleter(completers []port.TextCompleter, names []string) *FallbackCompleter {
	tiers := make([]*tier, len(completers))
	for i, c := range completers {
		name := fmt.Sprintf("provider-%d", i)
		if i < len(names) {
			name = names[i]
		}
		tiers[i] = &tier{name: name, completer: c}
	}
	return &FallbackCompleter{tiers: tiers}
}

func (f *FallbackCompleter) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	now := time.Now()
	var (
		lastErr     error
		onlyLimited = true
		nextWindow  time.Time
	)
	noteWindow := func(t time.Time) {
		if nextWindow.IsZero() || t.Before(nextWindow) {
			nextWindow = t
		}
	}

	for _, t := range f.tiers {
		if until, blocked := t.breaker.blocked(now); blocked {
			log.Printf("llm.FallbackCompleter: skipping %s until %s", t.name, until.Format(time.RFC3339))
			noteWindow(until)
			continue
		}

		out, err := t.completer.Complete(ctx, input)
		if err == nil {
			return out, nil
		}
		log.Printf("llm.FallbackCompleter: %s failed: %v", t.name, err)
		lastErr = err

		// The remaining providers share ctx.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if rl, ok := AsRateLimit(err); ok {
			until := now.Add(rl.RetryAfter)
			t.breaker.trip(until)
			noteWindow(until)
			continue
		}
		onlyLimited = false
	}

	if lastErr != nil && !onlyLimited {
		return nil, fmt.Errorf("all providers failed: %w", lastErr)
	}

	wait := time.Until(nextWindow)
	if wait < time.Second {
		wait = time.Second
	}
	return nil, NewRateLimitError("all", errors.New("every provider is rate limited"), wait)
}
