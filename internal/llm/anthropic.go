package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// AnthropicClient calls the Anthropic messages API through langchaingo.
type AnthropicClient struct {
	llm   *anthropic.LLM
	model string
}

func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, &AuthError{Provider: "anthropic", Err: errors.New("ANTHROPIC_API_KEY is not set")}
	}
	if model == "" {
		model = os.Getenv("ANTHROPIC_MODEL")
	}
	if model == "" {
		model = "claude-3-7-sonnet-latest"
	}
	cli, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(model))
	if err != nil {
		return nil, &AuthError{Provider: "anthropic", Err: err}
	}
	return &AnthropicClient{llm: cli, model: model}, nil
}

func (a *AnthropicClient) Name() string { return "Claude:" + a.model }
func (a *AnthropicClient) Close() error { return nil }

func (a *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, a.llm, prompt)
	if err != nil {
		return "", classifyMessage("anthropic", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", &MalformedError{Provider: "anthropic", Reason: "empty completion"}
	}
	return out, nil
}
