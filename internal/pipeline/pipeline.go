package pipeline

import (
	"log"
	"time"

	"codetutor/internal/flow"
	"codetutor/internal/llm"
)

// Options tunes a tutorial run. Zero values fall back to the defaults
// below.
type Options struct {
	OutputDir       string
	MaxAbstractions int
	Workers         int // concurrent chapter drafts; 1 keeps full continuity
	MaxAttempts     int
	Wait            time.Duration
	Log             *log.Logger
}

const (
	defaultMaxAttempts = 3
	defaultWait        = 10 * time.Second
)

// NewRunner wires the five stages into a runner. The first four stages talk
// to the model and get the retry budget; the final assembly stage is pure
// and runs once.
func NewRunner(cli llm.Client, opts Options) *flow.Runner {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = defaultMaxAttempts
	}
	wait := opts.Wait
	if wait <= 0 {
		wait = defaultWait
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "output"
	}

	return &flow.Runner{
		Log: opts.Log,
		Stages: []flow.Spec{
			{Stage: &IdentifyAbstractions{LLM: cli, MaxAbstractions: opts.MaxAbstractions}, MaxAttempts: attempts, Wait: wait},
			{Stage: &AnalyzeRelationships{LLM: cli}, MaxAttempts: attempts, Wait: wait},
			{Stage: &OrderChapters{LLM: cli}, MaxAttempts: attempts, Wait: wait},
			{Stage: &flow.Batch{
				Inner:       &WriteChapters{LLM: cli},
				Workers:     workers,
				MaxAttempts: attempts,
				Wait:        wait,
			}},
			{Stage: &CombineTutorial{OutputDir: outputDir}},
		},
	}
}
