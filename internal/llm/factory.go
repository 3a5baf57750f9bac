package llm

import (
	"fmt"
	"log"

	"budgetgrader/internal/config"
	"budgetgrader/internal/port"
)

// ProviderFactory creates a TextCompleter from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.TextCompleter, error)

// registry of provider factories, populated via RegisterProvider
// (see the providers package for the built-in set).
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewCompleter creates a TextCompleter from a provider config using the registered factory.
func NewCompleter(cfg *config.ParserProviderConfig) (port.TextCompleter, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Build assembles the configured providers into a single TextCompleter.
// It returns nil, nil when no provider is configured. With more than one tier
// configured the result is a FallbackCompleter in primary, secondary, tertiary order.
func Build(cfg *config.ParserConfig) (port.TextCompleter, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	tiers := []*config.ParserProviderConfig{cfg.PrimaryConfig()}
	if s := cfg.SecondaryConfig(); s != nil {
		tiers = append(tiers, s)
	}
	if t := cfg.TertiaryConfig(); t != nil {
		tiers = append(tiers, t)
	}

	completers := make([]port.TextCompleter, 0, len(tiers))
	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		c, err := NewCompleter(tier)
		if err != nil {
			return nil, fmt.Errorf("creating %s completer: %w", tier.Provider, err)
		}
		completers = append(completers, c)
		names = append(names, tier.Provider)
	}

	if len(completers) == 1 {
		log.Printf("llm.Build: using %s", names[0])
		return completers[0], nil
	}
	log.Printf("llm.Build: fallback chain %v", names)
	return NewFallbackCompleter(completers, names), nil
}
