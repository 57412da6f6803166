package cursor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cursor is the per-source harvest watermark.
type Cursor struct {
	LastFullname  string    `json:"last_post_id"`
	LastTimestamp float64   `json:"last_post_timestamp"`
	TotalFetched  int       `json:"total_posts_fetched"`
	LastFetchTime time.Time `json:"last_fetch_time"`
}

// Store persists one cursor per source in a single JSON document, read and
// rewritten whole on every Put. Sources are harvested sequentially in one
// process, so the read-modify-write needs no cross-source transaction.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the cursor for a source, or nil when none has been recorded.
// A source with no cursor is never auto-initialized; the caller skips it.
func (s *Store) Get(source string) (*Cursor, error) {
	state, err := s.load()
	if err != nil {
		return nil, err
	}

	cur, ok := state[source]
	if !ok {
		return nil, nil
	}
	return &cur, nil
}

func (s *Store) Put(source string, cur Cursor) error {
	state, err := s.load()
	if err != nil {
		return err
	}

	state[source] = cur

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cursor state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cursor state directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cursor state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cursor state: %w", err)
	}

	return nil
}

func (s *Store) load() (map[string]Cursor, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]Cursor), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cursor state: %w", err)
	}

	state := make(map[string]Cursor)
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse cursor state: %w", err)
	}

	return state, nil
}
