package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"engagerag/internal/domain"
)

// Store keeps the snapshot as a JSON file.
type Store struct {
	path string
}

func NewStore(path string) *Store { return &Store{path: path} }

func (s *Store) Path() string { return s.path }

// Load reads the persisted snapshot. A missing file yields
// ErrSnapshotUnavailable; a file that cannot be decoded or fails validation
// yields a wrapped error and should be regenerated by the caller.
func (s *Store) Load() (domain.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Snapshot{}, domain.ErrSnapshotUnavailable
		}
		return domain.Snapshot{}, err
	}
	snap := domain.NewSnapshot()
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if err := snap.Validate(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("invalid snapshot %s: %w", s.path, err)
	}
	return snap, nil
}

// Save writes the snapshot through a temp file so readers never see a partial file.
func (s *Store) Save(snap domain.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
