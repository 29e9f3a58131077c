package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gitmarks/gitmarks/internal/model"
)

// ValidationError reports a snapshot document that failed the import
// validity check.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot document: %s", e.Reason)
}

// Parse decodes and validates a snapshot document. A document is
// accepted only if version, metadata, and bookmarks are present and
// non-empty; folders may be absent or empty.
func Parse(data []byte) (*Collection, error) {
	var col Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if col.Version == "" {
		return nil, &ValidationError{Reason: "missing version"}
	}
	if col.Metadata.Name == "" {
		return nil, &ValidationError{Reason: "missing metadata"}
	}
	if len(col.Bookmarks) == 0 {
		return nil, &ValidationError{Reason: "no bookmarks"}
	}
	return &col, nil
}

// ImportOptions controls how a parsed document is applied to the
// local tree.
type ImportOptions struct {
	// TargetFolderID receives the document's top-level bookmarks and
	// folder hierarchy. Nil imports at the root level.
	TargetFolderID *string
	// SkipDuplicates skips bookmarks whose URL already exists in the
	// destination folder.
	SkipDuplicates bool
}

// Apply merges the document into the store and returns the number of
// bookmarks imported. Folder entries are materialized along their
// slash-joined paths, reusing existing folders by name at each level.
func Apply(store *model.Store, col *Collection, opts ImportOptions) int {
	imported := 0
	imported += applyEntries(store, col.Bookmarks, opts.TargetFolderID, opts.SkipDuplicates)

	for _, fe := range col.Folders {
		folderID := ensureFolderPath(store, opts.TargetFolderID, fe.Path)
		imported += applyEntries(store, fe.Bookmarks, folderID, opts.SkipDuplicates)
	}
	return imported
}

// applyEntries adds entries as bookmarks in the given folder.
func applyEntries(store *model.Store, entries []Entry, folderID *string, skipDuplicates bool) int {
	added := 0
	for _, e := range entries {
		if skipDuplicates && store.HasBookmarkURL(folderID, e.URL) {
			continue
		}

		b := model.NewBookmark(model.NewBookmarkParams{
			Title:    e.Title,
			URL:      e.URL,
			FolderID: folderID,
			Tags:     e.Tags,
			Notes:    e.Notes,
		})
		if e.DateAdded != "" {
			if t, err := time.Parse(time.RFC3339, e.DateAdded); err == nil {
				b.CreatedAt = t
			}
		}
		store.AddBookmark(b)
		added++
	}
	return added
}

// ensureFolderPath walks the slash-joined path below the target,
// creating missing folders, and returns the final folder's ID.
func ensureFolderPath(store *model.Store, targetID *string, path string) *string {
	parentID := targetID
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}

		var existing *model.Folder
		for i := range store.Folders {
			f := &store.Folders[i]
			if f.Name == name && ptrEq(f.ParentID, parentID) {
				existing = f
				break
			}
		}

		if existing == nil {
			folder := model.NewFolder(model.NewFolderParams{
				Name:     name,
				ParentID: parentID,
			})
			store.AddFolder(folder)
			id := folder.ID
			parentID = &id
			continue
		}
		id := existing.ID
		parentID = &id
	}
	return parentID
}

// ptrEq compares two string pointers for equality.
func ptrEq(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
