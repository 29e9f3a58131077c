package snapshot

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gitmarks/gitmarks/internal/model"
)

// Options controls how a subtree is exported.
type Options struct {
	Name         string
	Description  string
	Author       string
	Tags         []string
	IsPublic     bool
	Source       string // SourceGist or SourceRepo
	IncludeTags  bool
	IncludeNotes bool
	// Created and Updated default to the current time when zero.
	Created time.Time
	Updated time.Time
}

// Export builds the snapshot document for the subtree rooted at
// rootID (nil exports the whole tree). It is a pure function: no I/O,
// deterministic, children kept in store order.
func Export(store *model.Store, rootID *string, opts Options) *Collection {
	now := time.Now().UTC()
	created := opts.Created
	if created.IsZero() {
		created = now
	}
	updated := opts.Updated
	if updated.IsZero() {
		updated = now
	}

	tags := opts.Tags
	if tags == nil {
		tags = []string{}
	}

	col := &Collection{
		Version: Version,
		Metadata: Metadata{
			Name:        opts.Name,
			Description: opts.Description,
			Author:      opts.Author,
			Created:     created.Format(time.RFC3339),
			Updated:     updated.Format(time.RFC3339),
			Tags:        tags,
			IsPublic:    opts.IsPublic,
			Source:      opts.Source,
		},
		Bookmarks: exportLeaves(store, rootID, opts),
		Folders:   []FolderEntry{},
	}

	collectFolders(store, rootID, nil, opts, &col.Folders)
	return col
}

// collectFolders walks the subtree depth-first and appends one flat
// FolderEntry per folder, path segments accumulated along the way.
func collectFolders(store *model.Store, parentID *string, path []string, opts Options, out *[]FolderEntry) {
	for _, f := range store.GetFoldersInFolder(parentID) {
		folderPath := append(append([]string{}, path...), f.Name)
		id := f.ID
		*out = append(*out, FolderEntry{
			Name:      f.Name,
			Path:      strings.Join(folderPath, "/"),
			Bookmarks: exportLeaves(store, &id, opts),
		})
		collectFolders(store, &id, folderPath, opts, out)
	}
}

// exportLeaves converts a folder's direct bookmarks, in store order.
func exportLeaves(store *model.Store, folderID *string, opts Options) []Entry {
	bookmarks := store.GetBookmarksInFolder(folderID)
	entries := make([]Entry, 0, len(bookmarks))
	for _, b := range bookmarks {
		entry := Entry{
			Title: b.Title,
			URL:   b.URL,
		}
		if !b.CreatedAt.IsZero() {
			entry.DateAdded = b.CreatedAt.UTC().Format(time.RFC3339)
		}
		if opts.IncludeTags && len(b.Tags) > 0 {
			entry.Tags = b.Tags
		}
		if opts.IncludeNotes && b.Notes != "" {
			entry.Notes = b.Notes
		}
		entries = append(entries, entry)
	}
	return entries
}

// Render serializes the collection as indented JSON.
func (c *Collection) Render() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// BookmarkCount returns the total number of bookmarks in the document,
// top level and folders combined.
func (c *Collection) BookmarkCount() int {
	count := len(c.Bookmarks)
	for _, f := range c.Folders {
		count += len(f.Bookmarks)
	}
	return count
}

// AllTags returns the distinct tags used by the document's bookmarks,
// in first-seen order.
func (c *Collection) AllTags() []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(entries []Entry) {
		for _, e := range entries {
			for _, t := range e.Tags {
				if !seen[t] {
					seen[t] = true
					tags = append(tags, t)
				}
			}
		}
	}
	add(c.Bookmarks)
	for _, f := range c.Folders {
		add(f.Bookmarks)
	}
	return tags
}
