package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrStale is returned by Store.Save when the on-disk share map has a
// newer version than the one the caller loaded. The caller must reload
// and reapply its change.
var ErrStale = errors.New("share map changed since load")

// Store persists the whole share map together with a version counter.
// The counter turns the whole-map read-modify-write into a
// compare-and-swap so that two triggers firing close together cannot
// silently drop each other's update.
type Store interface {
	// Load returns the share map keyed by folder ID and its version.
	// A missing file yields an empty map at version 0.
	Load() (map[string]FolderShare, int64, error)
	// Save writes the map if the on-disk version still equals
	// fromVersion, bumping it by one. Returns ErrStale otherwise.
	Save(shares map[string]FolderShare, fromVersion int64) error
}

// shareFile is the on-disk shape of the share map.
type shareFile struct {
	Version int64                  `json:"version"`
	Shares  map[string]FolderShare `json:"shares"`
}

// JSONStore implements Store using a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSONStore with the given file path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the storage file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the share map from the JSON file.
// Returns an empty map at version 0 if the file doesn't exist.
func (s *JSONStore) Load() (map[string]FolderShare, int64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]FolderShare{}, 0, nil
		}
		return nil, 0, err
	}

	var file shareFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, 0, fmt.Errorf("parse share map: %w", err)
	}
	if file.Shares == nil {
		file.Shares = map[string]FolderShare{}
	}
	return file.Shares, file.Version, nil
}

// Save writes the share map if fromVersion matches the current file.
func (s *JSONStore) Save(shares map[string]FolderShare, fromVersion int64) error {
	_, current, err := s.Load()
	if err != nil {
		return err
	}
	if current != fromVersion {
		return ErrStale
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(shareFile{
		Version: fromVersion + 1,
		Shares:  shares,
	}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}
