// Package snapshot builds, renders, and parses the JSON snapshot
// documents that represent a folder's bookmarks at a point in time.
// A snapshot is never mutated in place, only regenerated wholesale.
package snapshot

// Version is the snapshot document format version.
const Version = "1.0"

// Source values for Metadata.Source.
const (
	SourceGist = "gist"
	SourceRepo = "repo"
)

// Collection is the exported snapshot document. Field names are part
// of the wire format and must stay stable.
type Collection struct {
	Version   string        `json:"version"`
	Metadata  Metadata      `json:"metadata"`
	Bookmarks []Entry       `json:"bookmarks"`
	Folders   []FolderEntry `json:"folders"`
}

// Metadata describes the exported collection.
type Metadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Created     string   `json:"created"`
	Updated     string   `json:"updated"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"isPublic"`
	Source      string   `json:"source"`
}

// Entry is one exported bookmark. Optional fields are omitted rather
// than emitted as empty placeholders.
type Entry struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	DateAdded string   `json:"dateAdded,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// FolderEntry is one exported folder. Path is the slash-joined chain
// of folder names from the export root down to this folder; Bookmarks
// holds only the folder's direct leaf children. Nested folders become
// their own FolderEntry with a longer path, never a nested structure.
type FolderEntry struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	Bookmarks []Entry `json:"bookmarks"`
}
