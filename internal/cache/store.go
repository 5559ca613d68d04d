package cache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// hotEntries bounds the in-memory layer; the file itself is unbounded.
const hotEntries = 512

// Store is a durable prompt-to-response map persisted as a single JSON
// file, fronted by an in-memory LRU. Writes reload the file and merge the
// new entry into the latest contents, so concurrent runs converge instead
// of clobbering each other; entries are content-addressed by exact prompt
// text, which makes last-writer-wins races harmless.
type Store struct {
	mu   sync.Mutex
	path string
	hot  *lru.Cache[string, string]
}

// Open prepares a store over path. The file is loaded lazily; a missing
// file is an empty cache, never an error.
func Open(path string) (*Store, error) {
	hot, err := lru.New[string, string](hotEntries)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, hot: hot}, nil
}

// Get looks up the exact prompt text. An unreadable or corrupt cache file
// counts as a miss.
func (s *Store) Get(prompt string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.hot.Get(prompt); ok {
		return v, true
	}
	v, ok := s.loadLocked()[prompt]
	if ok {
		s.hot.Add(prompt, v)
	}
	return v, ok
}

// Put merges one new pair into the on-disk map (read-merge-write) and
// flushes immediately, so a crash never loses more than the in-flight pair.
func (s *Store) Put(prompt, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hot.Add(prompt, response)
	entries := s.loadLocked()
	entries[prompt] = response
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Len reports the number of persisted entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loadLocked())
}

func (s *Store) loadLocked() map[string]string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cache: read %s: %v, starting empty", s.path, err)
		}
		return map[string]string{}
	}
	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Printf("cache: %s is corrupt, starting empty: %v", s.path, err)
		return map[string]string{}
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries
}
