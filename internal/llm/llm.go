package llm

import (
	"context"
	"fmt"
)

// Provider selects one of the supported model backends.
type Provider string

const (
	ProviderGemini    Provider = "google-gemini"
	ProviderAnthropic Provider = "anthropic-claude"
	ProviderOpenAI    Provider = "openai-gpt"
)

// ParseProvider validates a provider name coming from flags or config.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
		return Provider(s), nil
	}
	return "", fmt.Errorf("llm: unknown provider %q (want %s, %s or %s)",
		s, ProviderGemini, ProviderAnthropic, ProviderOpenAI)
}

// Client is the single synchronous call surface for all providers.
// Implementations normalize provider responses to plain text and perform
// no retries; retry policy belongs to the pipeline runner.
type Client interface {
	Name() string
	Close() error
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and tunes a provider once at startup.
type Config struct {
	Provider Provider
	APIKey   string // falls back to the provider's env var
	Model    string // falls back to the provider's env var, then a default
}

// New constructs the provider-specific client for cfg.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.Model)
	}
	return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
}
