package llm

import (
	"context"
	"sync"
)

// FakeClient returns scripted responses for offline runs and tests,
// recording every prompt it sees.
type FakeClient struct {
	// Respond maps a prompt to its response. Nil means "{}" for everything.
	Respond func(prompt string) (string, error)

	mu      sync.Mutex
	calls   int
	prompts []string
}

func NewFakeClient(respond func(prompt string) (string, error)) *FakeClient {
	return &FakeClient{Respond: respond}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Calls reports how many times Generate reached this client.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Prompts returns a copy of every prompt seen so far, in call order.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *FakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	fn := f.Respond
	f.mu.Unlock()
	if fn == nil {
		return "{}", nil
	}
	return fn(prompt)
}
