package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"axis/internal/model"
)

// Snapshot is the persisted outcome of the most recent import. Re-importing
// overwrites the whole snapshot; results are never merged with prior state.
type Snapshot struct {
	FeedID     string       `json:"feed_id,omitempty"`
	ImportedAt time.Time    `json:"imported_at"`
	Result     model.Result `json:"result"`
}

// Store persists the snapshot as a single JSON document on disk.
type Store struct {
	mu   sync.Mutex
	dir  string
	path string
}

// New creates a Store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{
		dir:  dir,
		path: filepath.Join(dir, "timetable.json"),
	}
}

// Load reads the last saved snapshot. It returns (nil, nil) when no
// snapshot has been saved yet.
func (s *Store) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save replaces the stored snapshot atomically (temp file + rename).
func (s *Store) Save(snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".timetable-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}
