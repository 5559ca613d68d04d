package llm

import (
	"context"
	"log"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (caching, logging).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Response cache --------

// ResponseCache is consulted before any provider dispatch. Keys are the
// exact prompt text, values the exact response text previously returned.
type ResponseCache interface {
	Get(prompt string) (string, bool)
	Put(prompt, response string) error
}

// WithCache returns the stored response on an exact prompt match (no
// normalization; prompts differing by one byte are cache-distinct) and
// persists new pairs after a miss. A failed save never fails the call.
func WithCache(store ResponseCache) Middleware {
	return func(next Client) Client { return &cached{next: next, store: store} }
}

type cached struct {
	next  Client
	store ResponseCache
}

func (c *cached) Name() string { return c.next.Name() }
func (c *cached) Close() error { return c.next.Close() }

func (c *cached) Generate(ctx context.Context, prompt string) (string, error) {
	if resp, ok := c.store.Get(prompt); ok {
		return resp, nil
	}
	resp, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.store.Put(prompt, resp); err != nil {
		log.Printf("llm: cache save failed: %v", err)
	}
	return resp, nil
}

// -------- Audit logging --------

// WithLogging writes every prompt and the eventual response text to logger.
// Stack it outside WithCache so cache hits are logged too. Provide nil to
// use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client { return &logging{next: next, log: logger} }
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, prompt string) (string, error) {
	l.log.Printf("PROMPT (%s): %s", l.next.Name(), prompt)
	resp, err := l.next.Generate(ctx, prompt)
	if err != nil {
		l.log.Printf("ERROR (%s): %v", l.next.Name(), err)
		return "", err
	}
	l.log.Printf("RESPONSE (%s): %s", l.next.Name(), resp)
	return resp, nil
}
