package flow

import "context"

// Stage is one step of the fixed pipeline.
//
// Prepare projects the run context into an input value; it must not mutate
// the context or perform I/O, and fails (fatally) when a field it needs has
// not been produced yet. Execute does the work, usually one or more LLM
// calls, and is the only part the runner retries, so it must be idempotent
// for identical input. Finalize validates the raw result against the
// stage's expected shape and writes derived fields into the context.
type Stage interface {
	Name() string
	Prepare(rc *Context) (any, error)
	Execute(ctx context.Context, in any) (any, error)
	Finalize(out any, rc *Context) error
}

// State tracks a stage through the runner.
type State int

const (
	StatePending State = iota
	StateRunning
	StateRetrying
	StateFailedOver
	StateSucceeded
	StateFatal
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateRetrying:
		return "retrying"
	case StateFailedOver:
		return "failed-over"
	case StateSucceeded:
		return "succeeded"
	case StateFatal:
		return "fatal"
	}
	return "unknown"
}
