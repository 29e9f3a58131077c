package model

import "time"

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	FolderID  *string    `json:"folderId"` // nil = root level
	Tags      []string   `json:"tags"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	VisitedAt *time.Time `json:"visitedAt"` // nil = never visited
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title    string
	URL      string
	FolderID *string
	Tags     []string
	Notes    string
}

// NewBookmark creates a Bookmark with generated UUID and timestamps.
func NewBookmark(params NewBookmarkParams) Bookmark {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	return Bookmark{
		ID:        GenerateUUID(),
		Title:     params.Title,
		URL:       params.URL,
		FolderID:  params.FolderID,
		Tags:      tags,
		Notes:     params.Notes,
		CreatedAt: time.Now(),
		VisitedAt: nil,
	}
}

// Equal reports whether two bookmarks carry the same content.
// ID and VisitedAt are ignored; a visit alone should not trigger a re-sync.
func (b Bookmark) Equal(other Bookmark) bool {
	if b.Title != other.Title || b.URL != other.URL || b.Notes != other.Notes {
		return false
	}
	if !ptrEqual(b.FolderID, other.FolderID) {
		return false
	}
	if len(b.Tags) != len(other.Tags) {
		return false
	}
	for i := range b.Tags {
		if b.Tags[i] != other.Tags[i] {
			return false
		}
	}
	return true
}
