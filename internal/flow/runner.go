package flow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Spec pairs a stage with its retry budget and optional fallback successor.
// Only Execute is retried; Prepare and Finalize run once.
type Spec struct {
	Stage       Stage
	Fallback    *Spec
	MaxAttempts int           // attempts for Execute; < 1 means 1
	Wait        time.Duration // fixed inter-attempt delay
}

// Runner drives an ordered sequence of stages to completion or fatal
// failure. Stage N+1 never starts before stage N's Finalize returns, since
// each Prepare depends on context fields the previous stage wrote.
type Runner struct {
	Stages []Spec
	Log    *log.Logger // nil uses log.Default()
}

func (r *Runner) logf(format string, args ...any) {
	if r.Log != nil {
		r.Log.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Run executes every stage in order. A PartialBatchError is remembered and
// returned after the remaining stages complete; any other error aborts the
// run immediately.
func (r *Runner) Run(ctx context.Context, rc *Context) error {
	var partial *PartialBatchError
	for _, spec := range r.Stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.runStage(ctx, spec, rc)
		if err == nil {
			continue
		}
		var pbe *PartialBatchError
		if errors.As(err, &pbe) {
			r.logf("stage %s: %v (run continues)", spec.Stage.Name(), err)
			partial = pbe
			continue
		}
		return fmt.Errorf("stage %s: %w", spec.Stage.Name(), err)
	}
	if partial != nil {
		return partial
	}
	return nil
}

func (r *Runner) runStage(ctx context.Context, spec Spec, rc *Context) error {
	st := spec.Stage
	in, err := st.Prepare(rc)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	attempts := spec.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	state := StateRunning
	used := 0
	var out any
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		used = attempt
		out, lastErr = st.Execute(ctx, in)
		if lastErr == nil {
			state = StateSucceeded
			break
		}
		if fatal(lastErr) {
			state = StateFatal
			break
		}
		if attempt < attempts {
			state = StateRetrying
			r.logf("stage %s: attempt %d/%d failed: %v", st.Name(), attempt, attempts, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(spec.Wait):
			}
		}
	}
	if lastErr != nil {
		if state != StateFatal && spec.Fallback != nil {
			r.logf("stage %s: retries exhausted, failing over to %s", st.Name(), spec.Fallback.Stage.Name())
			state = StateFailedOver
			return r.runStage(ctx, *spec.Fallback, rc)
		}
		return fmt.Errorf("execute (%s after %d attempt(s)): %w", state, used, lastErr)
	}
	r.logf("stage %s: %s", st.Name(), state)
	return st.Finalize(out, rc)
}
