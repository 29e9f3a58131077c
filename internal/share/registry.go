package share

import (
	"fmt"
	"sync"
	"time"
)

// RenameResult reports the file paths affected by a folder rename so
// the caller can schedule cleanup of the stale one.
type RenameResult struct {
	OldFilePath string
	NewFilePath string
}

// Registry is the source of truth for which folders are linked to
// which remote locations. All mutation goes through one mutex, and
// every mutation persists the whole map through the versioned Store;
// a concurrent writer surfaces as ErrStale and the mutation is
// replayed against the fresh map.
type Registry struct {
	mu     sync.Mutex
	store  Store
	shares map[string]FolderShare
	// version of the map as loaded from the store.
	version int64
}

// NewRegistry loads the share map and returns a ready Registry.
func NewRegistry(store Store) (*Registry, error) {
	shares, version, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load share map: %w", err)
	}
	return &Registry{
		store:   store,
		shares:  shares,
		version: version,
	}, nil
}

// Get returns the share for a folder, or nil if the folder is not linked.
func (r *Registry) Get(folderID string) *FolderShare {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.shares[folderID]; ok {
		copied := s
		return &copied
	}
	return nil
}

// All returns every share, in unspecified order.
func (r *Registry) All() []FolderShare {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]FolderShare, 0, len(r.shares))
	for _, s := range r.shares {
		result = append(result, s)
	}
	return result
}

// ForCollection returns the shares linked into the given remote
// collection.
func (r *Registry) ForCollection(resourceID string) []FolderShare {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []FolderShare
	for _, s := range r.shares {
		if s.ResourceID == resourceID {
			result = append(result, s)
		}
	}
	return result
}

// ReferencedPaths returns the set of repository file paths currently
// claimed by shares in the given collection.
func (r *Registry) ReferencedPaths(resourceID string) map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make(map[string]bool)
	for _, s := range r.shares {
		if s.ResourceID == resourceID && s.FilePath != "" {
			paths[s.FilePath] = true
		}
	}
	return paths
}

// Link upserts a share for the folder. There is at most one share per
// folder; linking an already linked folder replaces its share.
func (r *Registry) Link(s FolderShare) error {
	return r.mutate(func(shares map[string]FolderShare) {
		shares[s.FolderID] = s
	})
}

// Unlink removes the folder's share. The remote file is left alone.
// Unlinking a folder that is not linked is a no-op.
func (r *Registry) Unlink(folderID string) error {
	return r.mutate(func(shares map[string]FolderShare) {
		delete(shares, folderID)
	})
}

// Rename recomputes the share's file path for the folder's new display
// name and returns both paths. For gist shares only the display name
// changes and both paths are empty.
func (r *Registry) Rename(folderID, newName string) (RenameResult, error) {
	var result RenameResult
	err := r.mutate(func(shares map[string]FolderShare) {
		s, ok := shares[folderID]
		if !ok {
			return
		}
		s.DisplayName = newName
		if s.ResourceType == ResourceRepo {
			result.OldFilePath = s.FilePath
			s.FilePath = FilePathFor(newName)
			result.NewFilePath = s.FilePath
		}
		shares[folderID] = s
	})
	return result, err
}

// Touch records a successful sync time for the folder's share.
func (r *Registry) Touch(folderID string, at time.Time) error {
	return r.mutate(func(shares map[string]FolderShare) {
		s, ok := shares[folderID]
		if !ok {
			return
		}
		s.LastSyncedAt = &at
		shares[folderID] = s
	})
}

// mutate applies fn to the share map and persists it. On a stale save
// the map is reloaded and fn replayed once, so a concurrent writer's
// update is never silently dropped.
func (r *Registry) mutate(fn func(map[string]FolderShare)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn(r.shares)
	err := r.store.Save(r.shares, r.version)
	if err == nil {
		r.version++
		return nil
	}
	if err != ErrStale {
		return fmt.Errorf("persist share map: %w", err)
	}

	fresh, version, loadErr := r.store.Load()
	if loadErr != nil {
		return fmt.Errorf("reload share map: %w", loadErr)
	}
	fn(fresh)
	if err := r.store.Save(fresh, version); err != nil {
		return fmt.Errorf("persist share map: %w", err)
	}
	r.shares = fresh
	r.version = version + 1
	return nil
}
