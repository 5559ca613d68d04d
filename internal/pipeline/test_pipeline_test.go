package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codetutor/internal/cache"
	"codetutor/internal/flow"
	"codetutor/internal/llm"
)

// scriptedLLM routes prompts to canned responses by stage-specific markers.
func scriptedLLM() *llm.FakeClient {
	return llm.NewFakeClient(func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Identify at most"):
			return `{"abstractions": [
				{"name": "Server", "description": "handles requests", "file_indices": [1]},
				{"name": "Store", "description": "persists state", "file_indices": [2]}
			]}`, nil
		case strings.Contains(prompt, "abstractions interact"):
			return `{"summary": "A tiny demo service.", "relationships": [
				{"from_abstraction": 0, "to_abstraction": 1, "label": "writes to"}
			]}`, nil
		case strings.Contains(prompt, "best order"):
			return `{"order": [1, 0]}`, nil
		case strings.Contains(prompt, "Write chapter"):
			return "chapter body", nil
		}
		return "", fmt.Errorf("unexpected prompt: %.60s", prompt)
	})
}

func runPipeline(t *testing.T, cli llm.Client, outDir string) *flow.Context {
	t.Helper()
	rc := &flow.Context{
		ProjectName: "demo",
		OutputDir:   outDir,
		Files:       threeFiles(),
	}
	r := NewRunner(cli, Options{OutputDir: outDir, Workers: 1, MaxAttempts: 1, Wait: 1})
	if err := r.Run(context.Background(), rc); err != nil {
		t.Fatalf("run: %v", err)
	}
	return rc
}

func TestPipelineEndToEnd(t *testing.T) {
	outDir := t.TempDir()
	rc := runPipeline(t, scriptedLLM(), outDir)

	if rc.FinalOutputDir != filepath.Join(outDir, "demo") {
		t.Fatalf("output dir: %q", rc.FinalOutputDir)
	}
	index, err := os.ReadFile(filepath.Join(rc.FinalOutputDir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	for _, want := range []string{
		"# Tutorial: demo",
		"A tiny demo service.",
		"flowchart TD",
		`A0 -- "writes to" --> A1`,
		"[Store](01_store.md)",
		"[Server](02_server.md)",
	} {
		if !strings.Contains(string(index), want) {
			t.Fatalf("index missing %q:\n%s", want, index)
		}
	}
	for _, name := range []string{"01_store.md", "02_server.md"} {
		if _, err := os.Stat(filepath.Join(rc.FinalOutputDir, name)); err != nil {
			t.Fatalf("chapter %s: %v", name, err)
		}
	}
}

func TestPipelineRerunWithCacheIsIdempotent(t *testing.T) {
	tmp := t.TempDir()
	cachePath := filepath.Join(tmp, "cache.json")

	store1, err := cache.Open(cachePath)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	first := scriptedLLM()
	out1 := filepath.Join(tmp, "run1")
	rc1 := runPipeline(t, llm.Wrap(first, llm.WithCache(store1)), out1)
	if first.Calls() == 0 {
		t.Fatalf("first run must reach the provider")
	}

	// Second run: a fresh store over the same file, and a provider that
	// must never be reached.
	store2, err := cache.Open(cachePath)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	second := llm.NewFakeClient(func(string) (string, error) {
		return "", fmt.Errorf("provider must not be called on a warm cache")
	})
	out2 := filepath.Join(tmp, "run2")
	rc2 := runPipeline(t, llm.Wrap(second, llm.WithCache(store2)), out2)

	if second.Calls() != 0 {
		t.Fatalf("provider calls on warm cache: got %d want 0", second.Calls())
	}

	// Byte-identical artifacts.
	idx1, err := os.ReadFile(filepath.Join(rc1.FinalOutputDir, "index.md"))
	if err != nil {
		t.Fatalf("read run1 index: %v", err)
	}
	idx2, err := os.ReadFile(filepath.Join(rc2.FinalOutputDir, "index.md"))
	if err != nil {
		t.Fatalf("read run2 index: %v", err)
	}
	if string(idx1) != string(idx2) {
		t.Fatalf("index differs between runs")
	}
	ch1, _ := os.ReadFile(filepath.Join(rc1.FinalOutputDir, "01_store.md"))
	ch2, _ := os.ReadFile(filepath.Join(rc2.FinalOutputDir, "01_store.md"))
	if string(ch1) != string(ch2) {
		t.Fatalf("chapter differs between runs")
	}
}
