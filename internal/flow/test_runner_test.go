package flow

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"codetutor/internal/llm"
)

// stubStage is a scriptable Stage for runner tests.
type stubStage struct {
	name        string
	prepareErr  error
	execErrs    []error // consumed one per attempt; exhausted means success
	finalizeErr error

	executes  int
	finalized bool
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Prepare(rc *Context) (any, error) {
	if s.prepareErr != nil {
		return nil, s.prepareErr
	}
	return "in", nil
}

func (s *stubStage) Execute(ctx context.Context, in any) (any, error) {
	s.executes++
	if len(s.execErrs) > 0 {
		err := s.execErrs[0]
		s.execErrs = s.execErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return "out", nil
}

func (s *stubStage) Finalize(out any, rc *Context) error {
	s.finalized = true
	return s.finalizeErr
}

func quietRunner(stages ...Spec) *Runner {
	return &Runner{Stages: stages, Log: log.New(io.Discard, "", 0)}
}

func transient() error {
	return &llm.TransientError{Provider: "fake", Err: errors.New("overloaded")}
}

func TestRunnerRetriesTransientThenSucceeds(t *testing.T) {
	st := &stubStage{name: "s", execErrs: []error{transient(), transient(), nil}}
	r := quietRunner(Spec{Stage: st, MaxAttempts: 3})

	if err := r.Run(context.Background(), &Context{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.executes != 3 {
		t.Fatalf("executes: got %d want 3", st.executes)
	}
	if !st.finalized {
		t.Fatalf("finalize must run after success")
	}
}

func TestRunnerAuthErrorIsFatalImmediately(t *testing.T) {
	authErr := &llm.AuthError{Provider: "fake", Err: errors.New("bad key")}
	st := &stubStage{name: "s", execErrs: []error{authErr, nil, nil}}
	r := quietRunner(Spec{Stage: st, MaxAttempts: 3})

	err := r.Run(context.Background(), &Context{})
	if err == nil {
		t.Fatalf("expected error")
	}
	var ae *llm.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if st.executes != 1 {
		t.Fatalf("executes: got %d want 1 (no retry on auth)", st.executes)
	}
}

func TestRunnerRetriesExhaustedAborts(t *testing.T) {
	st := &stubStage{name: "s", execErrs: []error{transient(), transient()}}
	r := quietRunner(Spec{Stage: st, MaxAttempts: 2})

	err := r.Run(context.Background(), &Context{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if st.executes != 2 {
		t.Fatalf("executes: got %d want 2", st.executes)
	}
	if st.finalized {
		t.Fatalf("finalize must not run after failure")
	}
}

func TestRunnerFallbackAfterRetriesExhausted(t *testing.T) {
	primary := &stubStage{name: "primary", execErrs: []error{transient(), transient()}}
	backup := &stubStage{name: "backup"}
	r := quietRunner(Spec{
		Stage:       primary,
		MaxAttempts: 2,
		Fallback:    &Spec{Stage: backup, MaxAttempts: 1},
	})

	if err := r.Run(context.Background(), &Context{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if primary.executes != 2 {
		t.Fatalf("primary executes: got %d want 2", primary.executes)
	}
	if backup.executes != 1 || !backup.finalized {
		t.Fatalf("backup must run and finalize")
	}
}

func TestRunnerNoFallbackOnFatal(t *testing.T) {
	primary := &stubStage{name: "primary", execErrs: []error{
		&llm.AuthError{Provider: "fake", Err: errors.New("bad key")},
	}}
	backup := &stubStage{name: "backup"}
	r := quietRunner(Spec{
		Stage:       primary,
		MaxAttempts: 2,
		Fallback:    &Spec{Stage: backup, MaxAttempts: 1},
	})

	if err := r.Run(context.Background(), &Context{}); err == nil {
		t.Fatalf("expected error")
	}
	if backup.executes != 0 {
		t.Fatalf("fallback must not run on fatal errors")
	}
}

func TestRunnerValidationErrorAbortsRun(t *testing.T) {
	first := &stubStage{name: "first", finalizeErr: &ValidationError{Stage: "first", Reason: "bad schema"}}
	second := &stubStage{name: "second"}
	r := quietRunner(Spec{Stage: first, MaxAttempts: 1}, Spec{Stage: second, MaxAttempts: 1})

	err := r.Run(context.Background(), &Context{})
	if err == nil {
		t.Fatalf("expected error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if second.executes != 0 {
		t.Fatalf("later stage must not start after a fatal stage")
	}
}

func TestRunnerPrepareErrorIsNotRetried(t *testing.T) {
	st := &stubStage{name: "s", prepareErr: errors.New("missing input")}
	r := quietRunner(Spec{Stage: st, MaxAttempts: 3})

	if err := r.Run(context.Background(), &Context{}); err == nil {
		t.Fatalf("expected error")
	}
	if st.executes != 0 {
		t.Fatalf("execute must not run when prepare fails")
	}
}

func TestRunnerContinuesAfterPartialBatch(t *testing.T) {
	first := &stubStage{name: "first", finalizeErr: &PartialBatchError{Stage: "first", Failed: []int{1}}}
	second := &stubStage{name: "second"}
	r := quietRunner(Spec{Stage: first, MaxAttempts: 1}, Spec{Stage: second, MaxAttempts: 1})

	err := r.Run(context.Background(), &Context{})
	var pbe *PartialBatchError
	if !errors.As(err, &pbe) {
		t.Fatalf("expected PartialBatchError, got %v", err)
	}
	if !second.finalized {
		t.Fatalf("run must complete the remaining stages")
	}
}
