package flow

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchStage runs its execute step once per prepared item, with per-item
// retry and failure isolation.
type BatchStage interface {
	Name() string
	PrepareItems(rc *Context) ([]any, error)
	ExecuteItem(ctx context.Context, item any) (any, error)
	FinalizeItems(results []ItemResult, rc *Context) error
}

// ItemResult pairs an item's output (or terminal error) with its original
// position, so outputs can be re-sequenced after concurrent completion.
type ItemResult struct {
	Position int
	Out      any
	Err      error
}

// Batch adapts a BatchStage to the Stage contract. Items run concurrently
// up to Workers, each with its own retry budget; one item exhausting its
// retries never aborts its siblings, it surfaces after Finalize as a
// PartialBatchError.
type Batch struct {
	Inner       BatchStage
	Workers     int
	MaxAttempts int
	Wait        time.Duration
}

func (b *Batch) Name() string { return b.Inner.Name() }

func (b *Batch) Prepare(rc *Context) (any, error) {
	items, err := b.Inner.PrepareItems(rc)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (b *Batch) Execute(ctx context.Context, in any) (any, error) {
	items, ok := in.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: batch input must be []any, got %T", b.Name(), in)
	}
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]ItemResult, len(items))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			out, err := b.runItem(ctx, item)
			results[i] = ItemResult{Position: i, Out: out, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (b *Batch) runItem(ctx context.Context, item any) (any, error) {
	attempts := b.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			// Run deadline hit: the item is abandoned, not retried.
			return nil, err
		}
		out, err := b.Inner.ExecuteItem(ctx, item)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if fatal(err) {
			break
		}
		if attempt < attempts {
			time.Sleep(b.Wait)
		}
	}
	return nil, lastErr
}

func (b *Batch) Finalize(out any, rc *Context) error {
	results, ok := out.([]ItemResult)
	if !ok {
		return fmt.Errorf("%s: batch output must be []ItemResult, got %T", b.Name(), out)
	}
	if err := b.Inner.FinalizeItems(results, rc); err != nil {
		return err
	}
	var failed []int
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Position)
			errs = append(errs, r.Err)
		}
	}
	if len(failed) > 0 {
		return &PartialBatchError{Stage: b.Name(), Failed: failed, Errs: errs}
	}
	return nil
}
