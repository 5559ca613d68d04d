package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, ok := s.Get("prompt-a"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	if err := s.Put("prompt-a", "response-a"); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := s.Get("prompt-a")
	if !ok || got != "response-a" {
		t.Fatalf("get: got %q ok=%v", got, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("len: got %d want 1", s.Len())
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s1.Put("p", "r"); err != nil {
		t.Fatalf("put: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := s2.Get("p")
	if !ok || got != "r" {
		t.Fatalf("after reopen: got %q ok=%v", got, ok)
	}
}

func TestStoreExactPromptMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put("prompt", "r"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := s.Get("prompt "); ok {
		t.Fatalf("one-byte variant must be cache-distinct")
	}
}

func TestStoreCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := s.Get("anything"); ok {
		t.Fatalf("corrupt file must read as empty")
	}
	// Writes still work and replace the corrupt file.
	if err := s.Put("p", "r"); err != nil {
		t.Fatalf("put over corrupt file: %v", err)
	}
	if got, ok := s.Get("p"); !ok || got != "r" {
		t.Fatalf("get after recovery: got %q ok=%v", got, ok)
	}
}

func TestStoreMergesConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("open s1: %v", err)
	}
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("open s2: %v", err)
	}

	if err := s1.Put("a", "1"); err != nil {
		t.Fatalf("s1 put: %v", err)
	}
	if err := s2.Put("b", "2"); err != nil {
		t.Fatalf("s2 put: %v", err)
	}

	// s2's read-merge-write must have kept s1's entry.
	if got, ok := s1.Get("b"); !ok || got != "2" {
		t.Fatalf("s1 sees b: got %q ok=%v", got, ok)
	}
	if got, ok := s2.Get("a"); !ok || got != "1" {
		t.Fatalf("s2 sees a: got %q ok=%v", got, ok)
	}
}
