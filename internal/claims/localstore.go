package claims

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is the local fallback store: a single JSON file holding the
// whole collection in the same record shape the primary backend uses. It is
// consulted when the primary is unreachable at startup and written by the
// create fallback path.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ FallbackStore = (*FileStore)(nil)

// NewFileStore builds a fallback store at the given path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		panic("claims: fallback store path cannot be empty")
	}
	return &FileStore{path: path}
}

// LoadAll reads the stored collection. A missing file is an empty
// collection, not an error.
func (s *FileStore) LoadAll() ([]Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Claim{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claims: failed to read fallback store: %w", err)
	}

	var recs []claimRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("claims: failed to decode fallback store: %w", err)
	}
	out := make([]Claim, 0, len(recs))
	for _, rec := range recs {
		c, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// SaveAll writes the collection atomically via a temp-file rename.
func (s *FileStore) SaveAll(claims []Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]claimRecord, 0, len(claims))
	for _, c := range claims {
		recs = append(recs, toRecord(c))
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("claims: failed to encode fallback store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("claims: failed to create fallback store dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("claims: failed to write fallback store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("claims: failed to replace fallback store: %w", err)
	}
	return nil
}
