package flow

import (
	"errors"
	"fmt"

	"codetutor/internal/llm"
)

// ValidationError reports stage output that does not match the expected
// schema. Always fatal to the current run, never silently coerced.
type ValidationError struct {
	Stage  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid output: %s", e.Stage, e.Reason)
}

// PartialBatchError reports batch items that exhausted their retries. The
// run still completes with placeholder output for the failed items;
// callers decide how loudly to flag it.
type PartialBatchError struct {
	Stage  string
	Failed []int // item positions in prepare order
	Errs   []error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("%s: %d batch item(s) failed at positions %v", e.Stage, len(e.Failed), e.Failed)
}

// fatal reports whether err must abort immediately instead of retrying.
// Validation failures and rejected credentials never resolve on retry.
func fatal(err error) bool {
	var ve *ValidationError
	var ae *llm.AuthError
	return errors.As(err, &ve) || errors.As(err, &ae)
}
