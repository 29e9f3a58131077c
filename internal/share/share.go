// Package share tracks which local folders are linked to remote
// snapshot locations and owns the durable share map.
package share

import "time"

// ResourceType identifies the kind of remote location a folder is
// linked to.
type ResourceType string

const (
	// ResourceGist is a single-file collection (gist-style).
	ResourceGist ResourceType = "gist"
	// ResourceRepo is a path inside a source-control repository.
	ResourceRepo ResourceType = "repo"
)

// FolderShare is a durable link between a local folder and one remote
// snapshot location. At most one share exists per folder.
type FolderShare struct {
	FolderID     string       `json:"folderId"`
	ResourceType ResourceType `json:"resourceType"`
	// ResourceID is the opaque remote collection identifier: a gist ID
	// or an "owner/repo" slug.
	ResourceID  string `json:"resourceId"`
	URL         string `json:"url"`
	DisplayName string `json:"displayName"`
	// FilePath is the repository path of the snapshot file. Only set
	// for repo shares.
	FilePath     string     `json:"filePath,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt"`
}
